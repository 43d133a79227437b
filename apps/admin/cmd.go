package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
	"github.com/jounabs52/datesheet/storage/database"
	sqlxrepos "github.com/jounabs52/datesheet/storage/database/sqlx"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	db      *sqlx.DB
	examSvc *exam.Service

	in         io.Reader
	out        io.Writer
	isTerminal func() bool // whether `in` is an interactive terminal
}

func newCommandLine(conf *core.Config, logger core.Logger) *commandLine {
	return &commandLine{
		conf:       conf,
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// connect opens the configured database on first use.
func (cli *commandLine) connect() error {
	if cli.db == nil {
		if cli.conf.Database.Engine == core.EngineDummy {
			return fmt.Errorf("the %q database engine cannot be administered", core.EngineDummy)
		}
		db, err := database.Open(cli.conf)
		if err != nil {
			return err
		}
		cli.db = db
	}
	if cli.examSvc == nil {
		cli.examSvc = exam.NewService(
			sqlxrepos.NewExamRepository(cli.db),
			sqlxrepos.NewSlotRepository(cli.db),
			cli.logger,
			cli.conf,
		)
	}
	return nil
}

func (cli *commandLine) printErr(err error) {
	_, _ = color.New(color.FgRed).Fprintf(cli.out, "\nerror: %s\n", err)
}

func (cli *commandLine) warn(format string, args ...interface{}) {
	_, _ = color.New(color.FgYellow).Fprintf(cli.out, format+"\n", args...)
}

// confirm asks a yes/no question on `in`. Any answer but y|yes is a no.
func (cli *commandLine) confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Datesheet administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.SetIn(cli.in)

	root.AddCommand(cli.migrateCmd(), cli.datesheetCmd(), cli.examCmd())
	return root
}

// run executes args; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.Execute()
}
