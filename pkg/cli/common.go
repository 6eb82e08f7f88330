package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/config"
	"github.com/platinummonkey/zombograph/pkg/observability"
)

// Version is set at link time
var Version = "dev"

// commonFlags are accepted by every command that talks to the database
type commonFlags struct {
	configPath  string
	databaseURL string
	logLevel    string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", os.Getenv("ZOMBOGRAPH_CONFIG"), "Path to the YAML config file")
	fs.StringVar(&f.databaseURL, "db", "", "Database URL, overriding the config")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error), overriding the config")
}

// load reads the configuration and creates the logger, which writes to
// stderr so command output stays clean
func (f *commonFlags) load(stderr io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(f.configPath, func(c *config.Config) {
		if f.databaseURL != "" {
			c.Database.URL = f.databaseURL
		}
		if f.logLevel != "" {
			c.Observability.LogLevel = observability.ParseLogLevel(f.logLevel)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, stderr)
	return cfg, logger, nil
}

func connectDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
