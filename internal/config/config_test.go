package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Asia/Kolkata" || cfg.PageSize != 10 || cfg.RefreshCron != "*/15 * * * *" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
timezone: UTC
feeds:
  - url: https://example.com/events.ics
    name: main
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("timezone = %q", cfg.Timezone)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.HorizonDays != 365 {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
	if got := cfg.Feeds[0].SourceID(); got != "main" {
		t.Fatalf("SourceID = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.EventsFile = "/srv/events.yaml"
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", Password: "secret"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.EventsFile != cfg.EventsFile || got.BasicAuth == nil || got.BasicAuth.Username != "admin" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad timezone", func(c *Config) { c.Timezone = "Nowhere/Special" }, true},
		{"bad cron", func(c *Config) { c.RefreshCron = "every minute" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"feed without url", func(c *Config) { c.Feeds = []FeedConfig{{Name: "x"}} }, true},
		{"feeds with distinct ids", func(c *Config) {
			c.Feeds = []FeedConfig{{ID: "a", URL: "https://a.example/a.ics"}, {Name: "b", URL: "https://b.example/b.ics"}}
		}, false},
		{"feed id reserved for events file", func(c *Config) {
			c.Feeds = []FeedConfig{{ID: "file", URL: "https://a.example/a.ics"}}
		}, true},
		{"feed name falls back to reserved id", func(c *Config) {
			c.Feeds = []FeedConfig{{Name: "file", URL: "https://a.example/a.ics"}}
		}, true},
		{"duplicate feed ids", func(c *Config) {
			c.Feeds = []FeedConfig{{ID: "a", URL: "https://a.example/1.ics"}, {Name: "a", URL: "https://a.example/2.ics"}}
		}, true},
		{"same url twice", func(c *Config) {
			c.Feeds = []FeedConfig{{URL: "https://a.example/a.ics"}, {URL: "https://a.example/a.ics"}}
		}, true},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	if err := Save("", DefaultConfig()); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
