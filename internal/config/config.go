package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habit/internal/constants"
)

// Config represents the application configuration
type Config struct {
	DBPath    string `yaml:"db_path"`
	StatsDays int    `yaml:"stats_days"`
	BarWidth  int    `yaml:"bar_width"`
	Debug     bool   `yaml:"debug"`
	LogDir    string `yaml:"log_dir"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file at path, or the default location when path is
// empty, then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		// No home directory means no config file, only env and defaults
		path, _ = DefaultPath()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save writes the config as YAML to path, creating parent directories
func (c *Config) Save(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// DefaultPath returns the path to the config file
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, constants.AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", constants.AppName), nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(constants.EnvStatsDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive integer", constants.EnvStatsDays, v)
		}
		c.StatsDays = days
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = constants.DefaultDBFileName
	}
	if c.StatsDays <= 0 {
		c.StatsDays = constants.DefaultStatsDays
	}
	if c.BarWidth <= 0 {
		c.BarWidth = constants.DefaultBarWidth
	}
	if c.LogDir == "" {
		if dir, err := configDir(); err == nil {
			c.LogDir = filepath.Join(dir, "logs")
		} else {
			c.LogDir = filepath.Join(os.TempDir(), constants.AppName, "logs")
		}
	}
	c.DBPath = ExpandPath(c.DBPath)
	c.LogDir = ExpandPath(c.LogDir)
}
