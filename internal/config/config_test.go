package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LibraryDir != "routes_out" {
		t.Errorf("LibraryDir = %q, want %q", cfg.LibraryDir, "routes_out")
	}
	if cfg.Setup.Manifest != "requirements.txt" {
		t.Errorf("Setup.Manifest = %q, want %q", cfg.Setup.Manifest, "requirements.txt")
	}
	if cfg.Setup.Runtime != "python3" {
		t.Errorf("Setup.Runtime = %q, want %q", cfg.Setup.Runtime, "python3")
	}
	if cfg.Replay.Cooldown != 3*time.Second {
		t.Errorf("Replay.Cooldown = %v, want 3s", cfg.Replay.Cooldown)
	}
	if cfg.Replay.Sensitivity != 1.0 {
		t.Errorf("Replay.Sensitivity = %v, want 1.0", cfg.Replay.Sensitivity)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: debug
library_dir: /data/sessions
setup:
  manifest: deps.txt
  runtime: python3.12
  skip_upgrade: true
replay:
  cooldown: 5s
  sensitivity: 0.7
  injector: noop
history:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LibraryDir != "/data/sessions" {
		t.Errorf("LibraryDir = %q, want %q", cfg.LibraryDir, "/data/sessions")
	}
	if cfg.Setup.Manifest != "deps.txt" {
		t.Errorf("Setup.Manifest = %q, want %q", cfg.Setup.Manifest, "deps.txt")
	}
	if cfg.Setup.Runtime != "python3.12" {
		t.Errorf("Setup.Runtime = %q, want %q", cfg.Setup.Runtime, "python3.12")
	}
	if !cfg.Setup.SkipUpgrade {
		t.Error("Setup.SkipUpgrade = false, want true")
	}
	if cfg.Replay.Cooldown != 5*time.Second {
		t.Errorf("Replay.Cooldown = %v, want 5s", cfg.Replay.Cooldown)
	}
	if cfg.Replay.Sensitivity != 0.7 {
		t.Errorf("Replay.Sensitivity = %v, want 0.7", cfg.Replay.Sensitivity)
	}
	if cfg.Replay.Injector != "noop" {
		t.Errorf("Replay.Injector = %q, want %q", cfg.Replay.Injector, "noop")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.LibraryDir != "routes_out" {
		t.Errorf("LibraryDir = %q, want default %q", cfg.LibraryDir, "routes_out")
	}
}

// TestLoadConfigPartialFile verifies unset fields keep defaults
func TestLoadConfigPartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.Setup.Manifest != "requirements.txt" {
		t.Errorf("Setup.Manifest = %q, want default", cfg.Setup.Manifest)
	}
	if cfg.Replay.Cooldown != 3*time.Second {
		t.Errorf("Replay.Cooldown = %v, want default 3s", cfg.Replay.Cooldown)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep default true when section absent")
	}
}

// TestLoadConfigMalformedYAML verifies malformed files are rejected
func TestLoadConfigMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("log_level: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() should error on malformed YAML")
	}
}

// TestLoadConfigInvalidCooldown verifies bad duration strings are rejected
func TestLoadConfigInvalidCooldown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := "replay:\n  cooldown: nonsense\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() should error on invalid cooldown duration")
	}
}

// TestLoadConfigFromDir verifies the .replaykit/config.yaml convention
func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".replaykit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	content := "library_dir: my_routes\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.LibraryDir != "my_routes" {
		t.Errorf("LibraryDir = %q, want %q", cfg.LibraryDir, "my_routes")
	}
}

// TestMergeWithFlags verifies flag overrides
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	lib := "elsewhere"
	cooldown := 10 * time.Second
	sens := 0.5
	level := "trace"
	cfg.MergeWithFlags(&lib, &cooldown, &sens, &level)

	if cfg.LibraryDir != "elsewhere" {
		t.Errorf("LibraryDir = %q, want %q", cfg.LibraryDir, "elsewhere")
	}
	if cfg.Replay.Cooldown != 10*time.Second {
		t.Errorf("Replay.Cooldown = %v, want 10s", cfg.Replay.Cooldown)
	}
	if cfg.Replay.Sensitivity != 0.5 {
		t.Errorf("Replay.Sensitivity = %v, want 0.5", cfg.Replay.Sensitivity)
	}
	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "trace")
	}
}

// TestMergeWithFlagsNilKeepsConfig verifies nil flags leave values alone
func TestMergeWithFlagsNilKeepsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeWithFlags(nil, nil, nil, nil)

	if cfg.LibraryDir != "routes_out" {
		t.Errorf("LibraryDir = %q, want unchanged default", cfg.LibraryDir)
	}
	if cfg.Replay.Sensitivity != 1.0 {
		t.Errorf("Replay.Sensitivity = %v, want unchanged default", cfg.Replay.Sensitivity)
	}
}

// TestValidate verifies validation rules
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty library dir", func(c *Config) { c.LibraryDir = "" }, true},
		{"empty manifest", func(c *Config) { c.Setup.Manifest = "" }, true},
		{"empty runtime", func(c *Config) { c.Setup.Runtime = "" }, true},
		{"negative cooldown", func(c *Config) { c.Replay.Cooldown = -time.Second }, true},
		{"zero sensitivity", func(c *Config) { c.Replay.Sensitivity = 0 }, true},
		{"unknown injector", func(c *Config) { c.Replay.Injector = "winapi" }, true},
		{"history enabled without path", func(c *Config) { c.History.DBPath = "" }, true},
		{"negative keep days", func(c *Config) { c.History.KeepDays = -1 }, true},
		{"history disabled ignores path", func(c *Config) { c.History.Enabled = false; c.History.DBPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
