package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eventdesk/internal/ics"
	"eventdesk/internal/lifecycle"
	appLog "eventdesk/internal/log"
)

// refreshTimeout bounds a single scheduled refresh.
const refreshTimeout = 2 * time.Minute

// RefresherConfig wires a Refresher to its inputs.
type RefresherConfig struct {
	// EventsFile is optional.
	EventsFile string
	Feeds      []ics.Source
	Fetcher    *ics.Fetcher

	// Location is the reference zone; nil means lifecycle.DefaultTimezone.
	Location *time.Location
	Clock    lifecycle.Clock

	// HorizonDays / BackfillDays bound recurrence expansion around today.
	HorizonDays  int
	BackfillDays int
}

// Refresher rebuilds the catalog from the events file and the feeds.
// A source that fails keeps its previous events.
type Refresher struct {
	cat *Catalog
	cfg RefresherConfig

	runMu sync.Mutex

	hookMu sync.Mutex
	hooks  []func()
}

func NewRefresher(cat *Catalog, cfg RefresherConfig) *Refresher {
	if cfg.Location == nil {
		cfg.Location, _ = lifecycle.LoadLocation("")
	}
	if cfg.Clock == nil {
		cfg.Clock = lifecycle.SystemClock
	}
	if cfg.Fetcher == nil && len(cfg.Feeds) > 0 {
		cfg.Fetcher = ics.NewFetcher("", nil)
	}
	return &Refresher{cat: cat, cfg: cfg}
}

// OnRefresh registers fn to be called after every completed run.
func (r *Refresher) OnRefresh(fn func()) {
	r.hookMu.Lock()
	r.hooks = append(r.hooks, fn)
	r.hookMu.Unlock()
}

// Run performs one refresh. Runs never overlap. The returned error joins
// the per-source failures; successful sources are applied regardless.
func (r *Refresher) Run(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	started := time.Now()
	var errs []error

	if r.cfg.EventsFile != "" {
		year := r.cfg.Clock.Now().In(r.cfg.Location).Year()
		events, err := LoadFile(r.cfg.EventsFile, year)
		if err != nil {
			errs = append(errs, err)
		} else {
			r.cat.Replace(FileSourceID, events)
		}
	}

	if len(r.cfg.Feeds) > 0 {
		if err := r.refreshFeeds(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		appLog.Error("refresh finished with errors", err, "events", r.cat.Len(), "took", time.Since(started))
	} else {
		appLog.Info("refresh finished", "events", r.cat.Len(), "took", time.Since(started))
	}

	r.hookMu.Lock()
	hooks := append([]func(){}, r.hooks...)
	r.hookMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return err
}

func (r *Refresher) refreshFeeds(ctx context.Context) error {
	results, errs := r.cfg.Fetcher.FetchAll(ctx, r.cfg.Feeds)

	now := r.cfg.Clock.Now().In(r.cfg.Location)
	expandCfg := ics.ExpandConfig{
		Location:   r.cfg.Location,
		RangeStart: now.AddDate(0, 0, -r.cfg.BackfillDays),
		RangeEnd:   now.AddDate(0, 0, r.cfg.HorizonDays),
	}

	for _, res := range results {
		parsed, err := ics.ParseFeed(res.Source, res.Body, r.cfg.Location)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		expanded, err := ics.Expand(parsed, expandCfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", res.Source.ID, err))
			continue
		}
		r.cat.Replace(res.Source.ID, expanded.Events)
		appLog.Debug("feed applied", "id", res.Source.ID, "events", len(expanded.Events), "from_cache", res.FromCache)
	}
	return errors.Join(errs...)
}

// Schedule runs r on spec (standard 5-field cron, evaluated in the
// reference zone) until the returned scheduler is stopped.
func (r *Refresher) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(r.cfg.Location))
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		_ = r.Run(runCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("refresh scheduled", "cron", spec, "timezone", r.cfg.Location.String())
	return c, nil
}
