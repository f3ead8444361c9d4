package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"eventdesk/internal/catalog"
	"eventdesk/internal/config"
	"eventdesk/internal/ics"
	"eventdesk/internal/lifecycle"
	appLog "eventdesk/internal/log"
	"eventdesk/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	timezone   string
	once       bool
	classify   string
	draft      bool
	today      string
}

func main() {
	flags := parseFlags()

	if flags.classify != "" {
		if err := runClassify(os.Stdout, flags); err != nil {
			fmt.Fprintln(os.Stderr, "eventdesk:", err)
			os.Exit(2)
		}
		return
	}

	appLog.Info("eventdesk starting", "version", version)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.timezone != "" {
		conf.Timezone = flags.timezone
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	level, _ := appLog.ParseLevel(conf.LogLevel)
	appLog.SetLevel(level)

	loc, _ := conf.Location()
	clock, err := clockFor(flags.today, loc)
	if err != nil {
		appLog.Error("invalid -today", err, "today", flags.today)
		os.Exit(2)
	}
	classifier := lifecycle.NewClassifier(loc, clock)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"refresh", conf.RefreshCron,
		"events_file", conf.EventsFile,
		"feed_count", len(conf.Feeds),
		"today", classifier.Today().String(),
		"once", flags.once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat := catalog.New()
	refresher := catalog.NewRefresher(cat, catalog.RefresherConfig{
		EventsFile:   conf.EventsFile,
		Feeds:        feedSources(conf.Feeds),
		Fetcher:      ics.NewFetcher(conf.CacheDir, nil),
		Location:     loc,
		Clock:        clock,
		HorizonDays:  conf.HorizonDays,
		BackfillDays: conf.BackfillDays,
	})

	// A failed first refresh is not fatal; the next scheduled run retries.
	_ = refresher.Run(ctx)

	if flags.once {
		printListing(os.Stdout, cat, classifier)
		return
	}

	sched, err := refresher.Schedule(ctx, conf.RefreshCron)
	if err != nil {
		appLog.Error("failed to schedule refresh", err)
		os.Exit(1)
	}

	srv := web.NewServer(conf, cat, refresher, classifier)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
	}

	<-sched.Stop().Done()
	appLog.Info("eventdesk exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/eventdesk/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.timezone, "tz", "", "Reference timezone (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh once, print the classified events and exit")
	flag.StringVar(&cfg.classify, "classify", "", "Classify a START,END date pair and exit")
	flag.BoolVar(&cfg.draft, "draft", false, "Treat the -classify pair as a local draft")
	flag.StringVar(&cfg.today, "today", "", "Fix today's date (e.g. 16/08/2025) instead of using the clock")

	flag.Parse()
	return cfg
}

// runClassify handles -classify without touching the config file.
func runClassify(w io.Writer, flags flagConfig) error {
	start, end, ok := strings.Cut(flags.classify, ",")
	if !ok {
		return fmt.Errorf("-classify wants START,END, got %q", flags.classify)
	}
	loc, err := lifecycle.LoadLocation(flags.timezone)
	if err != nil {
		return err
	}
	clock, err := clockFor(flags.today, loc)
	if err != nil {
		return err
	}
	cl := lifecycle.NewClassifier(loc, clock)
	state := cl.Classify(strings.TrimSpace(start), strings.TrimSpace(end), flags.draft)
	_, err = fmt.Fprintln(w, state)
	return err
}

func clockFor(today string, loc *time.Location) (lifecycle.Clock, error) {
	if today == "" {
		return lifecycle.SystemClock, nil
	}
	p := lifecycle.ParseInputIn(today, loc)
	if !p.OK {
		return nil, fmt.Errorf("not a date: %q", today)
	}
	return lifecycle.FixedClock(p.Instant), nil
}

func feedSources(feeds []config.FeedConfig) []ics.Source {
	out := make([]ics.Source, 0, len(feeds))
	for _, f := range feeds {
		if f.URL == "" {
			continue
		}
		out = append(out, ics.Source{ID: f.SourceID(), URL: f.URL})
	}
	return out
}

func printListing(w io.Writer, cat *catalog.Catalog, cl lifecycle.Classifier) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSTART\tEND\tSHORT\tNAME")
	for _, tab := range []catalog.Tab{catalog.TabAll, catalog.TabTrash} {
		for n := 1; ; n++ {
			page := cat.List(catalog.Query{Tab: tab, Page: n, PageSize: 100}, cl)
			for _, ev := range page.Events {
				label := ev.Label
				if tab == catalog.TabTrash {
					label = string(catalog.TabTrash)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", label, ev.StartDate, ev.EndDate, ev.ShortName, ev.Name)
			}
			if n >= page.TotalPages {
				break
			}
		}
	}
	_ = tw.Flush()
}
