package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sirupsen/logrus"
)

// Config can come from a YAML file; environment variables always win.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:":8000"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	// Driver is a database/sql driver name: sqlite3 or postgres.
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite3"`
	// Path is the sqlite database file, ignored when DSN is set.
	Path string `yaml:"path" env:"DB_PATH" env-default:"project.db"`
	DSN  string `yaml:"-" env:"DB_DSN"`
	// Echo logs every statement at debug level.
	Echo bool `yaml:"echo" env:"DB_ECHO" env-default:"false"`
}

// Load reads path if it exists and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.DSN == "" && c.Database.Path == "" {
			return errors.New("sqlite3 needs a database path")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("postgres needs DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}

// DataSourceName returns the DSN handed to the database driver. SQLite files
// are opened with foreign key enforcement and a busy timeout.
func (c DatabaseConfig) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}

	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")

	return "file:" + c.Path + "?" + q.Encode()
}

// SetupLogging applies the configured level to the standard logrus logger.
func (c *Config) SetupLogging() {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
