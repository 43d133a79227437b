package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
	EngineDummy    = "dummy"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Exam     ExamConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		DisableRequestLogs bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string // sqlite: path to the database file
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// ExamConfig holds the defaults applied when an exam grid is generated.
	ExamConfig struct {
		BatchSize           int
		DefaultStartTime    string
		DefaultEndTime      string
		DefaultRoom         string
		DefaultTotalMarks   float64
		DefaultPassingMarks float64
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, strconv.Itoa(dbc.Port))
}

// NewConfig loads the configuration of the current environment (ENV).
// Values come from, by priority: environment variables prefixed with the env name
// (e.g. DEV_DATABASE_HOST), config/.env.<env> and the defaults below.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Datesheet")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)

	v.SetDefault("database.engine", EnginePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "datesheet")
	v.SetDefault("database.user", "datesheet")
	v.SetDefault("database.password", "datesheet")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("exam.batchSize", 50)
	v.SetDefault("exam.defaultStartTime", "09:00")
	v.SetDefault("exam.defaultEndTime", "12:00")
	v.SetDefault("exam.defaultRoom", "")
	v.SetDefault("exam.defaultTotalMarks", 100.0)
	v.SetDefault("exam.defaultPassingMarks", 40.0)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			DisableRequestLogs: v.GetBool("server.disableRequestLogs"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Exam: ExamConfig{
			BatchSize:           v.GetInt("exam.batchSize"),
			DefaultStartTime:    v.GetString("exam.defaultStartTime"),
			DefaultEndTime:      v.GetString("exam.defaultEndTime"),
			DefaultRoom:         v.GetString("exam.defaultRoom"),
			DefaultTotalMarks:   v.GetFloat64("exam.defaultTotalMarks"),
			DefaultPassingMarks: v.GetFloat64("exam.defaultPassingMarks"),
		},
	}
}

// NewTestConfig returns the defaults of the TEST environment without reading the process env.
func NewTestConfig() *Config {
	conf := &Config{
		AppName:  "Datesheet",
		Env:      "TEST",
		Build:    "test",
		Debug:    true,
		TestMode: true,
	}
	conf.Server = ServerConfig{Host: "localhost", ShutdownTimeout: time.Second, DisableRequestLogs: true}
	conf.Database = DatabaseConfig{Engine: EngineSQLite, Name: ":memory:"}
	conf.Exam = ExamConfig{
		BatchSize:           50,
		DefaultStartTime:    "09:00",
		DefaultEndTime:      "12:00",
		DefaultTotalMarks:   100,
		DefaultPassingMarks: 40,
	}
	return conf
}
