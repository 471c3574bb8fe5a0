// Package config handles reading and writing ~/.askdocs/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIURL overrides api.base_url when set.
const EnvAPIURL = "ASKDOCS_API_URL"

// Config is the top-level structure for ~/.askdocs/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Documents DocumentsConfig `yaml:"documents"`
	Chat      ChatConfig      `yaml:"chat"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// DocumentsConfig controls which files may be uploaded.
type DocumentsConfig struct {
	Extension string `yaml:"extension"` // e.g. ".pdf"
}

// ChatConfig controls chat view timings.
type ChatConfig struct {
	CitationJumpDelayMs int `yaml:"citation_jump_delay_ms"`
	RegisterRedirectMs  int `yaml:"register_redirect_ms"`
}

// SessionConfig controls where the session token is persisted.
type SessionConfig struct {
	DBPath string `yaml:"db_path"` // empty = <config dir>/session.db
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	File  string `yaml:"file"`  // empty = <config dir>/askdocs.log
	Level string `yaml:"level"` // debug | info | warn | error
}

const configDir = ".askdocs"
const configFile = "config.yaml"

// Dir returns the configuration directory under home.
func Dir(home string) string {
	return filepath.Join(home, configDir)
}

// ReadConfig reads .askdocs/config.yaml from the given home directory.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(home string) (*Config, error) {
	return readFile(Path(home))
}

// Path returns the config file location under home.
func Path(home string) string {
	return filepath.Join(Dir(home), configFile)
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .askdocs/config.yaml in the given home directory.
// Creates the .askdocs/ directory if it does not exist.
func WriteConfig(home string, cfg *Config) error {
	dirPath := Dir(home)
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		Documents: DocumentsConfig{
			Extension: ".pdf",
		},
		Chat: ChatConfig{
			CitationJumpDelayMs: 1000,
			RegisterRedirectMs:  2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file under home, falling back to defaults when it
// does not exist, fills unset fields with defaults and applies environment
// overrides. A .env file in the working directory is honoured.
func Load(home string) (*Config, error) {
	return LoadFile(Path(home))
}

// LoadFile is Load for an explicit config file path.
func LoadFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	// Missing .env is the common case.
	_ = godotenv.Load()
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}

	return cfg, nil
}

// applyDefaults fills zero-valued fields from DefaultConfig so older or
// partial config files keep working.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.Documents.Extension == "" {
		c.Documents.Extension = def.Documents.Extension
	}
	if c.Chat.CitationJumpDelayMs <= 0 {
		c.Chat.CitationJumpDelayMs = def.Chat.CitationJumpDelayMs
	}
	if c.Chat.RegisterRedirectMs <= 0 {
		c.Chat.RegisterRedirectMs = def.Chat.RegisterRedirectMs
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// SessionPath resolves the session database path.
func (c *Config) SessionPath(home string) string {
	if c.Session.DBPath != "" {
		return c.Session.DBPath
	}
	return filepath.Join(Dir(home), "session.db")
}

// LogPath resolves the log file path.
func (c *Config) LogPath(home string) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(Dir(home), "askdocs.log")
}
