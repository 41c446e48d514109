package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config represents the entire application configuration.
type Config struct {
	DataFile      string        `yaml:"data_file"`
	LogLevel      string        `yaml:"log_level"`
	Pause         *bool         `yaml:"pause"`
	WatchDataFile bool          `yaml:"watch_data_file"`
	Archive       ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig holds settings for the optional sqlite snapshot archive.
type ArchiveConfig struct {
	DatabasePath string `yaml:"database_path"`
	OnExit       bool   `yaml:"on_exit"`
	// LogLevel limits the archive's sql logging. Empty follows log_level.
	LogLevel     string `yaml:"log_level"`
}

// Default settings, used for anything the configuration file leaves unset.
const (
	DefaultDataFile     = "employees.txt"
	DefaultLogLevel     = "warn"
	DefaultDatabasePath = "roster.db"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	// the zero Config always validates, taking every default
	_ = validateAndPrepare(c)
	return c
}

// Load loads and validates the configuration from the given file path.
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", filePath)
	}

	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.UnmarshalStrict(configFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateAndPrepare checks field values and fills in defaults.
func validateAndPrepare(c *Config) error {
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("log_level %q should be one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}

	if c.Pause == nil {
		pause := true
		c.Pause = &pause
	}

	// Archive
	if c.Archive.DatabasePath == "" {
		if c.Archive.OnExit {
			return errors.New("archive.database_path is required when archive.on_exit is set")
		}
		c.Archive.DatabasePath = DefaultDatabasePath
	}
	if strings.Contains(c.Archive.DatabasePath, ":memory:") {
		return errors.New("archive.database_path cannot be an in-memory database")
	}
	c.Archive.LogLevel = strings.ToLower(c.Archive.LogLevel)
	if c.Archive.LogLevel != "" && !validLogLevel(c.Archive.LogLevel) {
		return fmt.Errorf("archive.log_level %q should be one of %s", c.Archive.LogLevel, strings.Join(logLevels, ", "))
	}

	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// PauseAfterOperation reports whether the session waits for Enter after
// each menu operation.
func (c *Config) PauseAfterOperation() bool {
	return c.Pause == nil || *c.Pause
}

// ArchiveLogLevel returns the level for the archive's sql logging.
func (c *Config) ArchiveLogLevel() string {
	if c.Archive.LogLevel != "" {
		return c.Archive.LogLevel
	}
	return c.LogLevel
}

// Override replaces the data file, log level and archive database with
// command-line values when they are set, validating the result.
func (c *Config) Override(dataFile, logLevel, databasePath string) error {
	if dataFile != "" {
		c.DataFile = dataFile
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if databasePath != "" {
		c.Archive.DatabasePath = databasePath
	}
	return validateAndPrepare(c)
}
