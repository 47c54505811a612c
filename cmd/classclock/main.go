package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"classclock/internal/capture"
	"classclock/internal/config"
	"classclock/internal/display"
	appLog "classclock/internal/log"
	"classclock/internal/source"
	"classclock/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	compact    bool
}

func main() {
	appLog.Info("classclock starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "timezone", conf.Timezone)
		loc = time.Local
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"schedule_dir", conf.ScheduleDir,
		"schedule_url", conf.ScheduleURL,
		"tick_millis", conf.TickMillis,
		"reload", conf.ReloadCron,
		"compact_default", conf.CompactDefault,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Schedule loading: HTTP with disk cache if a URL is configured,
	// otherwise the local directory.
	var provider source.Provider
	if conf.ScheduleURL != "" {
		provider = source.NewHTTPProvider(conf.ScheduleURL, conf.CacheDir)
	} else {
		provider = &source.DirProvider{Dir: conf.ScheduleDir}
	}

	resolver := source.NewResolver(provider)
	store := &source.Store{}

	reload := func(ctx context.Context) error {
		state, err := resolver.Resolve(ctx, time.Now().In(loc))
		if err != nil {
			return err
		}
		store.Set(state)
		return nil
	}

	// Initial load must complete (or fall through all tiers) before the
	// first tick produces meaningful output; a failure degrades, never
	// aborts.
	if err := reload(ctx); err != nil {
		appLog.Error("initial schedule load failed; running degraded", err)
	}

	prefs := display.NewPrefs(conf.CompactDefault || flags.compact)
	holder := &display.Holder{}
	ticker := display.NewTicker(store, holder, prefs, time.Duration(conf.TickMillis)*time.Millisecond)

	if flags.once {
		frame := ticker.Tick(time.Now().In(loc))
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frame); err != nil {
			appLog.Error("failed to encode frame", err)
			os.Exit(1)
		}
		return
	}

	// Cron-driven maintenance: the midnight reload picks up a new week
	// (or an override published overnight); the optional snapshot job
	// captures a PNG of the countdown page.
	cr := cron.New(cron.WithLocation(loc))
	if _, err := cr.AddFunc(conf.ReloadCron, func() {
		if err := reload(ctx); err != nil {
			appLog.Error("scheduled reload failed", err)
		}
	}); err != nil {
		appLog.Error("invalid reload cron expression", err, "reload", conf.ReloadCron)
		os.Exit(1)
	}
	if conf.SnapshotCron != "" {
		pageURL := "http://" + conf.Listen + "/"
		if _, err := cr.AddFunc(conf.SnapshotCron, func() {
			opts := capture.SnapshotOptions{URL: pageURL, OutputPath: conf.SnapshotPath}
			if err := capture.SnapshotCountdownPNG(ctx, opts); err != nil {
				appLog.Error("snapshot capture failed", err)
			}
		}); err != nil {
			appLog.Error("invalid snapshot cron expression", err, "snapshot", conf.SnapshotCron)
			os.Exit(1)
		}
	}
	cr.Start()
	defer cr.Stop()

	go ticker.Run(ctx)

	server := web.NewServer(conf, store, holder, prefs, loc, reload)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}

	appLog.Info("classclock exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Compute one display frame, print it as JSON, and exit")
	flag.BoolVar(&cfg.compact, "compact", false, "Start with the compact display preference enabled")

	flag.Parse()

	return cfg
}
