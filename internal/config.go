package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultEndpoint     = "http://127.0.0.1:8000"
	defaultAppName      = "ce_agent"
	defaultStorageKey   = "chat_sessions"
	defaultPollInterval = 5 * time.Second
	defaultTimeout      = 60 * time.Second
	defaultListen       = ":3000"
)

// AgentConfig describes the remote agent service
type AgentConfig struct {
	Endpoint string        `yaml:"endpoint"`
	AppName  string        `yaml:"app_name"`
	Author   string        `yaml:"author"` // event author whose text becomes the reply; defaults to AppName
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig describes the durable key-value area
type StorageConfig struct {
	Location     string        `yaml:"location"` // sqlite path, redis:// URL or "memory"
	Key          string        `yaml:"key"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// ServerConfig controls the local proxy
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the full agent-chat configuration
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

// DefaultDir returns ~/.agent-chat
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agent-chat"
	}
	return filepath.Join(home, ".agent-chat")
}

// DefaultConfigPath returns the config file used when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// LoadConfig reads .env, then the YAML file at path, then environment
// overrides, then fills defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogDebug("Ignoring .env: %v", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			LogDebug("No config file at %s, using defaults", path)
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADK_SERVER_ENDPOINT"); v != "" {
		c.Agent.Endpoint = v
	}
	if v := os.Getenv("ADK_APP_NAME"); v != "" {
		c.Agent.AppName = v
	}
	if v := os.Getenv("ADK_AGENT_NAME"); v != "" {
		c.Agent.Author = v
	}
	if v := os.Getenv("AGENT_CHAT_STORAGE"); v != "" {
		c.Storage.Location = v
	}
	if v := os.Getenv("AGENT_CHAT_REDIS_URL"); v != "" && c.Storage.Location == "" {
		c.Storage.Location = v
	}
}

func (c *Config) applyDefaults() {
	if c.Agent.Endpoint == "" {
		c.Agent.Endpoint = defaultEndpoint
	}
	if c.Agent.AppName == "" {
		c.Agent.AppName = defaultAppName
	}
	if c.Agent.Author == "" {
		c.Agent.Author = c.Agent.AppName
	}
	if c.Agent.Timeout <= 0 {
		c.Agent.Timeout = defaultTimeout
	}
	if c.Storage.Location == "" {
		c.Storage.Location = filepath.Join(DefaultDir(), "sessions.db")
	}
	if c.Storage.Key == "" {
		c.Storage.Key = defaultStorageKey
	}
	if c.Storage.PollInterval <= 0 {
		c.Storage.PollInterval = defaultPollInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
}

// LogLevelFromString maps a config level name to a LogLevel
func LogLevelFromString(level string) LogLevel {
	switch level {
	case "debug", "trace":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}
