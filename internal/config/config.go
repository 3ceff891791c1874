// Package config loads application configuration from a YAML file and
// environment variables, with the environment taking precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for configuration environment variables,
// e.g. PEROBATCH_SERVER_PORT.
const envPrefix = "PEROBATCH"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Ingest  IngestConfig  `yaml:"ingest" envconfig:"INGEST"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// IngestConfig tunes plan ingestion.
type IngestConfig struct {
	// Parallelism bounds how many plans the CLI ingests concurrently.
	Parallelism int `yaml:"parallelism" envconfig:"PARALLELISM"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the file system layout.
type PathsConfig struct {
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  32 << 20,
			RateLimitRPS:    20,
			RateLimitBurst:  10,
		},
		Ingest: IngestConfig{
			Parallelism: 4,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/perobatch.log",
		},
		Paths: PathsConfig{
			UploadsDir: "data/uploads",
			ArchiveDir: "data/archive",
			LogsDir:    "logs",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML config
// file, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// configFilePath returns the config file location, overridable through
// PEROBATCH_CONFIG.
func configFilePath() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return "perobatch.yaml"
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Ingest.Parallelism < 1 {
		return fmt.Errorf("ingest parallelism must be positive, got %d", c.Ingest.Parallelism)
	}
	return nil
}

// EnsureDirectories creates the configured data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadsDir, c.Paths.ArchiveDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
