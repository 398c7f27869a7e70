// Package config loads coursely configuration. Sources are applied in order,
// later ones winning: built-in defaults, the YAML config file, a .env file,
// COURSELY_* environment variables and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/coursely/internal/backend"
	"github.com/abhisek/coursely/internal/selfupdate"
)

// Config holds all application configuration.
type Config struct {
	API  APIConfig  `yaml:"api"`
	User UserConfig `yaml:"user"`
	Log  LogConfig  `yaml:"log"`

	Update UpdateConfig `yaml:"update"`

	// DBPath is the local journal database. Empty means the default location.
	DBPath string `yaml:"db"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// UserConfig identifies the learner.
type UserConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LogConfig holds diagnostic log settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"` // Default: next to the database
}

// UpdateConfig locates coursely releases.
type UpdateConfig struct {
	Repo   string `yaml:"repo"`    // owner/name
	APIURL string `yaml:"api_url"` // Default: GitHub
	Check  bool   `yaml:"check"`   // Look for a newer release when the TUI starts
}

// LoadOptions points Load at non-default files.
type LoadOptions struct {
	// Path is the YAML config file. When set, the file must exist.
	Path string

	// EnvFile is the dotenv file. Default: ".env" in the working directory.
	EnvFile string
}

// Default returns a Config with built-in defaults.
func Default() Config {
	b := backend.DefaultConfig()
	return Config{
		API: APIConfig{
			Timeout:     b.Timeout,
			MaxAttempts: b.Retry.MaxAttempts,
		},
		Log:    LogConfig{Level: "info"},
		Update: UpdateConfig{Repo: selfupdate.DefaultRepo, Check: true},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/coursely/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "coursely", "config.yaml"), nil
}

// Load builds a Config from defaults, the config file, the dotenv file and
// the environment. Flags are applied by the caller.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.Path
	required := path != ""
	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, required); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.API.URL = envStr("COURSELY_API_URL", c.API.URL)
	c.API.Timeout = envDuration("COURSELY_TIMEOUT", c.API.Timeout)
	c.API.MaxAttempts = envInt("COURSELY_MAX_ATTEMPTS", c.API.MaxAttempts)
	c.User.ID = envStr("COURSELY_USER", c.User.ID)
	c.User.Name = envStr("COURSELY_USER_NAME", c.User.Name)
	c.DBPath = envStr("COURSELY_DB", c.DBPath)
	c.Log.Level = envStr("COURSELY_LOG_LEVEL", c.Log.Level)
	c.Log.Path = envStr("COURSELY_LOG", c.Log.Path)
	c.Update.Repo = envStr("COURSELY_UPDATE_REPO", c.Update.Repo)
	c.Update.APIURL = envStr("COURSELY_UPDATE_API_URL", c.Update.APIURL)
	c.Update.Check = envBool("COURSELY_UPDATE_CHECK", c.Update.Check)
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("backend URL is required (set COURSELY_API_URL, api.url or --api-url)")
	}
	u, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL must be http or https, got %q", c.API.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL has no host: %q", c.API.URL)
	}
	if strings.TrimSpace(c.User.ID) == "" {
		return fmt.Errorf("user id is required (set COURSELY_USER, user.id or --user)")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Backend returns the backend client configuration.
func (c *Config) Backend() backend.Config {
	b := backend.DefaultConfig()
	b.BaseURL = c.API.URL
	if c.API.Timeout > 0 {
		b.Timeout = c.API.Timeout
	}
	if c.API.MaxAttempts > 0 {
		b.Retry.MaxAttempts = c.API.MaxAttempts
	}
	return b
}

// Releases returns the release source for self update.
func (c *Config) Releases() selfupdate.Source {
	return selfupdate.Source{Repo: c.Update.Repo, APIURL: c.Update.APIURL}
}

// Save writes c as YAML to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
