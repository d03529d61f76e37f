package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ADK_SERVER_ENDPOINT", "ADK_APP_NAME", "ADK_AGENT_NAME", "AGENT_CHAT_STORAGE", "AGENT_CHAT_REDIS_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Agent.Endpoint != defaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Agent.Endpoint, defaultEndpoint)
	}
	if cfg.Agent.AppName != "ce_agent" {
		t.Errorf("AppName = %q, want ce_agent", cfg.Agent.AppName)
	}
	if cfg.Agent.Author != cfg.Agent.AppName {
		t.Errorf("Author = %q, want it to default to AppName", cfg.Agent.Author)
	}
	if cfg.Storage.Key != "chat_sessions" {
		t.Errorf("Storage.Key = %q, want chat_sessions", cfg.Storage.Key)
	}
	if cfg.Storage.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Storage.PollInterval)
	}
	if cfg.Storage.Location == "" {
		t.Error("Storage.Location should have a default")
	}
}

func TestLoadConfig_FileAndEnvPrecedence(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
agent:
  endpoint: http://agents.internal:9000
  app_name: support_agent
  timeout: 10s
storage:
  location: /tmp/chat.db
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ADK_APP_NAME", "env_agent")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Agent.Endpoint != "http://agents.internal:9000" {
		t.Errorf("Endpoint = %q, want file value", cfg.Agent.Endpoint)
	}
	if cfg.Agent.AppName != "env_agent" {
		t.Errorf("AppName = %q, want env override", cfg.Agent.AppName)
	}
	if cfg.Agent.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Agent.Timeout)
	}
	if cfg.Storage.Location != "/tmp/chat.db" {
		t.Errorf("Storage.Location = %q", cfg.Storage.Location)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADK_SERVER_ENDPOINT=http://from-dotenv:8000\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Agent.Endpoint != "http://from-dotenv:8000" {
		t.Errorf("Endpoint = %q, want value from .env", cfg.Agent.Endpoint)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agent: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail on invalid YAML")
	}
}
