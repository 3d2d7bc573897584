package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Source   SourceConfig   `yaml:"source" envconfig:"SOURCE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Calendar CalendarConfig `yaml:"calendar" envconfig:"CALENDAR"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// SourceConfig contains the upstream snapshot source configuration.
// The URL template is parameterized by the DDMMYYYY date string; the
// User-Agent and Referer headers are required or the archive rejects the
// request.
type SourceConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://nsearchives.nseindia.com/content/nsccl"`
	Referer        string        `yaml:"referer" envconfig:"REFERER" default:"https://www.nseindia.com"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" default:"5"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"2"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// RedisConfig configures the key-value store backing the option-chain diff.
// An empty address selects the in-memory fallback store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"ADDR" default:""`
	Password string `yaml:"password" envconfig:"PASSWORD" default:""`
	DB       int    `yaml:"db" envconfig:"DB" default:"0"`
}

// CalendarConfig points at the market holiday table. When the file is empty
// the embedded table for the covered year is used.
type CalendarConfig struct {
	HolidayFile string `yaml:"holiday_file" envconfig:"HOLIDAY_FILE" default:""`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FAOPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("path setup failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Source.BaseURL == "" {
		envConfig.Source.BaseURL = fileConfig.Source.BaseURL
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Redis.Addr == "" {
		envConfig.Redis.Addr = fileConfig.Redis.Addr
	}
	if envConfig.Calendar.HolidayFile == "" {
		envConfig.Calendar.HolidayFile = fileConfig.Calendar.HolidayFile
	}

	return envConfig
}

// ensureDirectories creates the data, reports and logs directories if absent.
func (c *Config) ensureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataDir returns the resolved snapshot cache directory path
func (c *Config) GetDataDir() string {
	if filepath.IsAbs(c.Paths.DataDir) {
		return c.Paths.DataDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return c.Paths.DataDir
	}
	return filepath.Join(wd, c.Paths.DataDir)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Source.BaseURL == "" {
		return fmt.Errorf("source base URL must be set")
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}

	if c.Source.MaxConcurrency <= 0 {
		return fmt.Errorf("source max concurrency must be positive")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "stdout" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Source: SourceConfig{
			BaseURL:        DefaultBaseURL,
			Referer:        DefaultReferer,
			UserAgent:      DefaultUserAgent,
			Timeout:        DefaultFetchTimeout,
			MaxConcurrency: DefaultFetchConcurrency,
			RateLimitRPS:   2,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
	}
}
