// boxsync mirrors a directory tree of experimental data between the local
// filesystem and Box's FTP gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kestrelbio/boxsync"
	"github.com/kestrelbio/boxsync/internal/config"
	"github.com/kestrelbio/boxsync/internal/logging"
)

// Version information - set at build time.
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  string
		direction   string
		dryRun      bool
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", config.DefaultConfigPath(), "Path to configuration file")
	flag.StringVar(&direction, "direction", "", "Sync direction: 'pull' or 'push' (overrides config)")
	flag.BoolVar(&dryRun, "dry-run", false, "Decide and log without copying anything")
	flag.BoolVar(&verbose, "verbose", false, "Log every copy and skip decision")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("boxsync version %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, direction, dryRun, verbose)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Sanitize)

	password, err := cfg.Password()
	if err != nil {
		slog.Error("cannot resolve password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("starting boxsync",
		slog.String("version", Version),
		slog.String("host", cfg.Remote.Host),
		slog.String("direction", cfg.Sync.Direction),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := dial(ctx, cfg, password)
	if err != nil {
		slog.Error("connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	// One-shot unless an interval is configured.
	if cfg.Sync.Interval == 0 {
		if err := runSync(client, cfg); err != nil {
			slog.Error("sync failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	// Interval mode: keep the latest config under hot reload and re-sync
	// on every tick. Command line overrides stick across reloads.
	var mu sync.Mutex
	current := cfg
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		applyOverrides(newCfg, direction, dryRun, verbose)
		mu.Lock()
		current = newCfg
		mu.Unlock()
	})
	if err != nil {
		slog.Warn("config hot-reload disabled", slog.String("error", err.Error()))
	} else {
		defer watcher.Close()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()

	for {
		mu.Lock()
		active := current
		mu.Unlock()

		if err := runSync(client, active); err != nil {
			slog.Error("sync failed", slog.String("error", err.Error()))
		}

		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", slog.String("signal", sig.String()))
			return
		case <-ticker.C:
		}
	}
}

func applyOverrides(cfg *config.Config, direction string, dryRun, verbose bool) {
	if direction != "" {
		cfg.Sync.Direction = direction
	}
	if dryRun {
		cfg.Sync.DryRun = true
	}
	if verbose {
		cfg.Sync.Verbose = true
	}
}

func dial(ctx context.Context, cfg *config.Config, password string) (*boxsync.Client, error) {
	opts := []boxsync.Option{
		boxsync.WithPort(cfg.Remote.Port),
		boxsync.WithTimeout(cfg.Remote.Timeout),
	}
	if cfg.Remote.InsecureSkipVerify {
		opts = append(opts, boxsync.WithInsecureTLS())
	}
	if cfg.Remote.DisableTLS {
		opts = append(opts, boxsync.WithoutTLS())
	}
	return boxsync.Dial(ctx, cfg.Remote.Host, cfg.Remote.User, password, opts...)
}

func runSync(client *boxsync.Client, cfg *config.Config) error {
	opts := boxsync.Options{
		Overwrite:  cfg.Sync.Overwrite,
		Verbose:    cfg.Sync.Verbose,
		DryRun:     cfg.Sync.DryRun,
		Filetypes:  cfg.Sync.Filetypes,
		Exclusions: cfg.Sync.Exclusions,
	}

	start := time.Now()
	var err error
	switch cfg.Sync.Direction {
	case "push":
		err = client.Push(cfg.Sync.RemoteRoot, cfg.Sync.LocalRoot, opts)
	default:
		err = client.Pull(cfg.Sync.LocalRoot, cfg.Sync.RemoteRoot, opts)
	}
	if err != nil {
		return err
	}

	slog.Info("sync finished",
		slog.String("direction", cfg.Sync.Direction),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
