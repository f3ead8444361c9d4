package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"eventdesk/internal/catalog"
	"eventdesk/internal/lifecycle"
	appLog "eventdesk/internal/log"
)

const (
	defaultListen       = "127.0.0.1:8080"
	defaultRefreshCron  = "*/15 * * * *"
	defaultCacheDir     = "/var/lib/eventdesk/feed-cache"
	defaultHorizonDays  = 365
	defaultBackfillDays = 365
	defaultPageSize     = 10
)

// FeedConfig describes a single ICS event feed.
type FeedConfig struct {
	// URL is the ICS endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is used for de-dup and logging. Defaults to Name, then URL.
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// SourceID returns the identifier used for events coming from this feed.
func (f FeedConfig) SourceID() string {
	switch {
	case f.ID != "":
		return f.ID
	case f.Name != "":
		return f.Name
	default:
		return f.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone in which event days and "today" are compared.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron spec (e.g. "*/15 * * * *") for reloading events.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// EventsFile is an optional YAML list of events maintained by hand.
	EventsFile string `yaml:"events_file" json:"events_file"`

	// CacheDir holds the HTTP cache for feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// HorizonDays and BackfillDays bound recurrence expansion around today.
	HorizonDays  int `yaml:"horizon_days" json:"horizon_days"`
	BackfillDays int `yaml:"backfill_days" json:"backfill_days"`

	// PageSize is the default listing page size.
	PageSize int `yaml:"page_size" json:"page_size"`

	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		Timezone:     lifecycle.DefaultTimezone,
		RefreshCron:  defaultRefreshCron,
		LogLevel:     "info",
		CacheDir:     defaultCacheDir,
		HorizonDays:  defaultHorizonDays,
		BackfillDays: defaultBackfillDays,
		PageSize:     defaultPageSize,
		Feeds:        []FeedConfig{},
	}
}

// Normalize fills in missing/zero values so partially-filled files behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = lifecycle.DefaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = defaultBackfillDays
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Validate reports settings that cannot be used at runtime.
func (c *Config) Validate() error {
	var errs []error
	if _, err := lifecycle.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		errs = append(errs, fmt.Errorf("refresh %q: %w", c.RefreshCron, err))
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	// Each feed owns a catalog source; a shared ID would let one source
	// overwrite another's events on every refresh.
	seen := make(map[string]int, len(c.Feeds))
	for i, f := range c.Feeds {
		if f.URL == "" {
			errs = append(errs, fmt.Errorf("feeds[%d]: url is empty", i))
		}
		id := f.SourceID()
		if id == catalog.FileSourceID {
			errs = append(errs, fmt.Errorf("feeds[%d]: id %q is reserved for the events file", i, id))
		}
		if j, dup := seen[id]; dup && id != "" {
			errs = append(errs, fmt.Errorf("feeds[%d]: id %q already used by feeds[%d]", i, id, j))
			continue
		}
		seen[id] = i
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return lifecycle.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there with 0600
// perms and returned. Otherwise the YAML is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			appLog.Info("wrote default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventdesk-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
