package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daangn/permalink/internal/version"
)

func writeConfig(t *testing.T, content string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return NewStore(path)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope", ConfigFileName))

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Batch.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Batch.Concurrency, DefaultConcurrency)
	}
	if store.Exists() {
		t.Error("Exists() should be false")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	store := writeConfig(t, `permalink_schema = "config/1"

[server]
port = 8080

[log]
level = "debug"
`)

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.ReadTimeout() != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout())
	}
	if cfg.Batch.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want default", cfg.Batch.Concurrency)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing schema", "[server]\nport = 8080\n"},
		{"wrong schema", "permalink_schema = \"global/1\"\n"},
		{"future schema", "permalink_schema = \"config/7\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeConfig(t, tt.content).Load()
			var sve *version.SchemaVersionError
			if !errors.As(err, &sve) {
				t.Fatalf("expected SchemaVersionError, got %v", err)
			}
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "permalink_schema = \"config/1\"\n[server]\nport = 70000\n"},
		{"zero timeout", "permalink_schema = \"config/1\"\n[server]\nread_timeout_seconds = 0\n"},
		{"bad level", "permalink_schema = \"config/1\"\n[log]\nlevel = \"loud\"\n"},
		{"bad origin", "permalink_schema = \"config/1\"\n[server]\nallowed_origin = \"not a url\"\n"},
		{"zero concurrency", "permalink_schema = \"config/1\"\n[batch]\nconcurrency = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := writeConfig(t, tt.content).Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	if _, err := writeConfig(t, "permalink_schema = \n").Load(); err == nil {
		t.Error("expected decode error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", ConfigFileName))

	cfg := Default()
	cfg.Server.Port = 9000
	cfg.Server.AllowedOrigin = "https://www.daangn.com"
	cfg.Log.Pretty = true
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if cfg.PermalinkSchema != version.CurrentConfigSchema() {
		t.Errorf("Save did not stamp schema: %q", cfg.PermalinkSchema)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ConfigFileName))

	if _, err := store.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !store.Exists() {
		t.Fatal("Init did not create the file")
	}

	if _, err := store.Init(false); !errors.Is(err, ErrExists) {
		t.Errorf("second Init error = %v, want ErrExists", err)
	}
	if _, err := store.Init(true); err != nil {
		t.Errorf("forced Init failed: %v", err)
	}
}

func TestSaveRaw(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ConfigFileName))

	raw := []byte("# my settings\npermalink_schema = \"" + version.CurrentConfigSchema() + "\"\n\n[server]\nport = 8080\n")
	cfg, err := store.SaveRaw(raw)
	if err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Batch.Concurrency != DefaultConcurrency {
		t.Errorf("cfg = %+v", cfg)
	}

	written, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(written) != string(raw) {
		t.Errorf("file was rewritten: %q", written)
	}
}

func TestSaveRaw_RejectsInvalid(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ConfigFileName))

	tests := []struct {
		name string
		raw  string
	}{
		{"no schema", "[server]\nport = 8080\n"},
		{"bad port", "permalink_schema = \"" + version.CurrentConfigSchema() + "\"\n[server]\nport = 0\n"},
		{"malformed", "permalink_schema = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.SaveRaw([]byte(tt.raw)); err == nil {
				t.Error("expected error")
			}
			if store.Exists() {
				t.Error("invalid config was written")
			}
		})
	}
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	if got := Path(); got != "/tmp/custom.toml" {
		t.Errorf("Path() = %q, want override", got)
	}
	if got := NewStore("").Path(); got != "/tmp/custom.toml" {
		t.Errorf("NewStore(\"\").Path() = %q, want override", got)
	}
}

func TestPath_Default(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", "/home/tester")
	want := filepath.Join("/home/tester", GlobalConfigDir, ConfigFileName)
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
