package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	Naver struct {
		BaseURL      string `mapstructure:"base_url"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"naver"`
	Scheduler struct {
		Interval   time.Duration `mapstructure:"interval"`
		RunTimeout time.Duration `mapstructure:"run_timeout"`
	} `mapstructure:"scheduler"`
}

// LoadConfig loads the configuration from an optional config file and the
// environment (STOCKFLOW_DB_DSN, STOCKFLOW_NAVER_CLIENT_ID, ...).
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("stockflow")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("naver.base_url", "https://api.commerce.naver.com")
	viper.SetDefault("scheduler.interval", time.Minute)
	viper.SetDefault("scheduler.run_timeout", 5*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No file is fine; the environment carries everything.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.DB.DSN == "" {
		return nil, errors.New("db.dsn is required (STOCKFLOW_DB_DSN)")
	}

	return &config, nil
}
