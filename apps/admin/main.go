package main

import (
	"log"
	"os"

	"github.com/jounabs52/datesheet/core"
	logsvc "github.com/jounabs52/datesheet/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// start CLI
	cli := newCommandLine(conf, logger)
	err := cli.run(os.Args)
	if cli.db != nil {
		_ = cli.db.Close()
	}
	if err != nil {
		if err != errHelp {
			cli.printErr(err)
		}
		os.Exit(1)
	}
}
