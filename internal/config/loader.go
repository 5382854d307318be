package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"app.name":             "courtside",
	"app.version":          "0.1.0",
	"app.env":              "dev",
	"app.port":             8080,
	"app.shutdown_timeout": "10s",

	"storage.driver": "postgres",

	"postgres.host":                "localhost",
	"postgres.port":                5432,
	"postgres.user":                "",
	"postgres.password":            "",
	"postgres.db":                  "",
	"postgres.sslmode":             "disable",
	"postgres.max_conns":           10,
	"postgres.min_conns":           1,
	"postgres.max_conn_lifetime":   3600,
	"postgres.max_conn_idle_time":  300,
	"postgres.health_check_period": 30,

	"sqlite.path": "data/courtside.db",

	"clock.tick_interval": "1s",
	"clock.persist_every": 5,
}

// Load reads the YAML file at path, applies APP_* env overrides and validates the result.
// Every key carries a default so that env overrides reach keys missing from the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks struct tags plus the cross-section rules tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.App); err != nil {
		return fmt.Errorf("app config validation error: %w", err)
	}
	if err := v.Struct(c.Storage); err != nil {
		return fmt.Errorf("storage config validation error: %w", err)
	}
	if err := v.Struct(c.Clock); err != nil {
		return fmt.Errorf("clock config validation error: %w", err)
	}

	switch c.Storage.Driver {
	case "postgres":
		if err := v.Struct(c.Postgres); err != nil {
			return fmt.Errorf("postgres config validation error: %w", err)
		}
		var missing []string
		if c.Postgres.User == "" {
			missing = append(missing, "APP_POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "APP_POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "APP_POSTGRES_DB")
		}
		if len(missing) > 0 {
			return fmt.Errorf("postgres credentials missing: %s", strings.Join(missing, ", "))
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite driver")
		}
	}
	return nil
}
