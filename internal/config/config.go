package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName         string `mapstructure:"app_name"`
	Env             string `mapstructure:"app_env"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	TargetsFile     string `mapstructure:"targets_file"`
	OutputDir       string `mapstructure:"output_dir"`
	PartisansSubdir string `mapstructure:"partisans_subdir"`
	PublishersFile  string `mapstructure:"publishers_file"`
	UserAgent       string `mapstructure:"user_agent"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`

	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
}

const defaultEnvFile = "configs/.env"

// Load reads configuration from environment variables and the optional .env file.
func Load() (*Config, error) {
	return load(defaultEnvFile)
}

func load(envFile string) (*Config, error) {
	_ = godotenv.Load(envFile)

	v := viper.New()

	v.SetDefault("app_name", "meta-scraper")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("targets_file", "websites.json")
	v.SetDefault("output_dir", "output")
	v.SetDefault("partisans_subdir", "partisans")
	v.SetDefault("publishers_file", "")
	v.SetDefault("user_agent", "meta-scraper/1.0 (+https://github.com/bozzhik/meta-scraper)")
	v.SetDefault("max_body_bytes", 5<<20)
	v.SetDefault("request_timeout_seconds", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.TargetsFile = strings.TrimSpace(cfg.TargetsFile)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	if cfg.TargetsFile == "" {
		return nil, fmt.Errorf("targets_file must not be empty")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output_dir must not be empty")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("invalid max_body_bytes (must be positive)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	return &cfg, nil
}
