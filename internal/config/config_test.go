package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Practice.Set != nil || cfg.AI.Provider != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[practice]
set = "10s"
level = 3
seed = 42

[ai]
provider = "ollama"
model = "llama3.2"
ollama-url = "http://127.0.0.1:11434"
timeout = "15s"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Practice.Set != "10s" || *cfg.Practice.Level != 3 || *cfg.Practice.Seed != 42 {
		t.Fatalf("unexpected practice section: %+v", cfg.Practice)
	}
	if *cfg.AI.Provider != "ollama" || *cfg.AI.Model != "llama3.2" || cfg.AI.Voice != nil {
		t.Fatalf("unexpected ai section: %+v", cfg.AI)
	}
	d, err := cfg.AI.TimeoutDuration()
	if err != nil || d != 15*time.Second {
		t.Fatalf("unexpected timeout %v err=%v", d, err)
	}
	if *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level %q", *cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[practice]\nlang = \"en\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.lang") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTimeoutDurationInvalid(t *testing.T) {
	bad := "soon"
	if _, err := (AIConfig{Timeout: &bad}).TimeoutDuration(); err == nil {
		t.Fatalf("expected parse error")
	}
	neg := "-1s"
	if _, err := (AIConfig{Timeout: &neg}).TimeoutDuration(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
	if d, err := (AIConfig{}).TimeoutDuration(); err != nil || d != 0 {
		t.Fatalf("expected zero for missing timeout")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	cases := map[string]string{
		DefaultDBPath():        filepath.Join(dir, "data", "habitdrill", "habitdrill.db"),
		DefaultConfigPath():    filepath.Join(dir, "config", "habitdrill", "config.toml"),
		DefaultLogPath():       filepath.Join(dir, "state", "habitdrill", "habitdrill.log"),
		DefaultAudioCacheDir(): filepath.Join(dir, "cache", "habitdrill", "audio"),
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
