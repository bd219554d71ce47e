// Package config handles loading and parsing application configuration.
// The YAML file path comes from (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Outside production a dotenv file (config.env by default) is loaded into
// the process environment first, so local overrides can live next to the
// YAML without being exported by hand. Production is decided the same way
// Config.Env is: the ENV variable if set, otherwise env: in the YAML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names accepted in Config.Env.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// DefaultEnvFile is the dotenv file read when CONFIG_ENV_FILE is unset.
const DefaultEnvFile = "config.env"

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format, verbosity and whether error details are
	// shown to the browser. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	Addr         string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd
}

// Load reads the config file at path, applying environment overrides.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	switch cfg.Env {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return nil, fmt.Errorf("invalid env %q: want %s, %s or %s", cfg.Env, EnvDev, EnvStaging, EnvProd)
	}

	return &cfg, nil
}

// LoadEnvFile loads a dotenv file into the process environment unless the
// effective env is prod. The ENV variable takes precedence over env: in the
// YAML file at configPath. Variables that are already set win over the
// dotenv file. A missing dotenv file is not an error.
func LoadEnvFile(configPath string) error {
	env := os.Getenv("ENV")
	if env == "" {
		env = fileEnv(configPath)
	}
	if env == EnvProd {
		return nil
	}

	path := os.Getenv("CONFIG_ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}
	return nil
}

// fileEnv returns env: from the YAML file, or "" if it cannot be read.
// Load reports unreadable files properly later.
func fileEnv(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var head struct {
		Env string `yaml:"env"`
	}
	if err := yaml.Unmarshal(b, &head); err != nil {
		return ""
	}
	return head.Env
}

// MustLoad reads, validates and returns the application config, exiting
// the process if anything is wrong.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if err := LoadEnvFile(configPath); err != nil {
		log.Fatal(err)
	}

	// The dotenv file may be what names the YAML file.
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
