// Package config provides a reusable loader for the weigh and billing
// services' configuration files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"weighstation/pkg/utils"
)

// Config is the unified configuration shape for either the weigh or the
// billing binary. Each binary only reads the sub-section it needs.
type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr" json:"addr"`
	} `mapstructure:"http" json:"http"`

	DB struct {
		Host     string `mapstructure:"host" json:"host"`
		Port     int    `mapstructure:"port" json:"port"`
		User     string `mapstructure:"user" json:"user"`
		Password string `mapstructure:"password" json:"password"`
		Name     string `mapstructure:"name" json:"name"`
		Schema   string `mapstructure:"schema" json:"schema"`
	} `mapstructure:"db" json:"db"`

	Weigh struct {
		BatchDir string `mapstructure:"batch_dir" json:"batch_dir"`
	} `mapstructure:"weigh" json:"weigh"`

	Billing struct {
		RatesPath    string        `mapstructure:"rates_path" json:"rates_path"`
		WeighURL     string        `mapstructure:"weigh_url" json:"weigh_url"`
		WeighTimeout time.Duration `mapstructure:"weigh_timeout" json:"weigh_timeout"`
	} `mapstructure:"billing" json:"billing"`
}

var envReplacer = strings.NewReplacer(".", "_")

// Load reads defaults, merges an optional `config.yaml`, then applies
// WEIGHSTATION_-prefixed environment overrides (nested fields joined with
// underscores, e.g. WEIGHSTATION_DB_HOST), and returns the unmarshaled
// Config.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "weighstation")
	v.SetDefault("db.schema", "public")
	v.SetDefault("weigh.batch_dir", "./data/batch")
	v.SetDefault("billing.rates_path", "./data/rates.xlsx")
	v.SetDefault("billing.weigh_url", "http://localhost:8080")
	v.SetDefault("billing.weigh_timeout", 5*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, utils.Wrap(err, "read config file")
		}
	}

	v.SetEnvPrefix("WEIGHSTATION")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// DSN builds a pgx connection string from the DB section.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s search_path=%s sslmode=disable",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Schema,
	)
}
