package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/platform/tui"
	"github.com/vovakirdan/beatrate/internal/scan"
	"github.com/vovakirdan/beatrate/internal/storage"
)

var (
	flagTPS        int
	flagParallel   int
	flagLockFile   string
	flagHeadless   bool
	flagFlushEvery int
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Rate every chart under every combination",
	Long: `Rate every chart in the directory under every configured mode, speed and
modifier combination. Combinations already in the database are skipped, so
an interrupted scan picks up where it stopped.

While gameplay is active, in-flight ratings are cancelled and retried once
it ends. Gameplay is active while the lock file exists, or while toggled
with 'p' in the interactive view.

Controls:
  P/Space    - Toggle simulated gameplay
  Q/Ctrl+C   - Stop (pending results are stored)

Examples:
  beatrate scan
  beatrate scan ~/charts --parallel 4
  beatrate scan ~/charts --lock-file /tmp/playing --headless`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScan,
}

func init() {
	scanCmd.Flags().IntVar(&flagTPS, "tps", 0, "Scheduler ticks per second (default from config)")
	scanCmd.Flags().IntVar(&flagParallel, "parallel", 0, "Charts rated at once (default from config)")
	scanCmd.Flags().StringVar(&flagLockFile, "lock-file", "", "Pause while this file exists (default from config)")
	scanCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Log progress instead of showing the interactive view")
	scanCmd.Flags().IntVar(&flagFlushEvery, "flush-every", -1, "Store results every N ratings, 0 once per chart (default from config)")
}

func runScan(cmd *cobra.Command, args []string) {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("cannot load config", "err", err)
	}

	// Flags override the config file
	if flagTPS > 0 {
		cfg.Scan.TickRate = flagTPS
	}
	if flagParallel > 0 {
		cfg.Scan.Parallel = flagParallel
	}
	if flagLockFile != "" {
		cfg.Scan.LockFile = flagLockFile
	}
	if flagFlushEvery >= 0 {
		cfg.Scan.FlushEvery = flagFlushEvery
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	loader := chart.NewLoader(chartDir(args, cfg))
	loader.OnError = func(path string, err error) {
		logger.Warn("skipping chart", "path", path, "err", err)
	}
	charts, err := loader.LoadAll()
	if err != nil {
		logger.Fatal("cannot load charts", "err", err)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Fatal("cannot open ratings database", "err", err)
	}
	defer store.Close()

	tasks := scan.Tasks(charts, cfg.Modes)
	space := cfg.Space()
	logger.Info("starting scan",
		"charts", len(charts),
		"tasks", len(tasks),
		"combinations", space.Count(),
		"db", cfg.Database,
	)

	var gameplay scan.Flag
	sig := scan.AnyOf{&gameplay}
	if cfg.Scan.LockFile != "" {
		sig = append(sig, scan.LockFile(cfg.Scan.LockFile))
	}

	interactive := !flagHeadless && term.IsTerminal(int(os.Stdout.Fd()))

	runner, err := newRunner(store, scan.Config{
		Tasks:      tasks,
		Space:      space,
		Params:     cfg.Analysis,
		Signal:     sig,
		Logger:     scanLogger(logger, interactive),
		Parallel:   cfg.Scan.Parallel,
		FlushEvery: cfg.Scan.FlushEvery,
	})
	if err != nil {
		// Fatal skips deferred calls; newRunner already closed the store.
		logger.Fatal("cannot start scan", "err", err)
	}

	var snap scan.Snapshot
	if interactive {
		snap, err = tui.RunScan(runner, &gameplay, cfg.Scan.TickRate)
		if err != nil {
			logger.Error("scan view failed", "err", err)
		}
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runner.Run(ctx, cfg.TickInterval()); err != nil {
			logger.Error("scan failed", "err", err)
		}
		snap = runner.Snapshot()
	}

	fmt.Printf("Rated %d/%d combinations across %d/%d tasks (%d unratable).\n",
		snap.Done, snap.Total, snap.Finished, snap.Tasks, snap.Failed)
}

// newRunner creates a runner that stores into and warm starts from store.
// The store is closed if the runner cannot be created.
func newRunner(store *storage.Store, cfg scan.Config) (*scan.Runner, error) {
	cfg.Sink = store
	cfg.Loader = store
	r, err := scan.NewRunner(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return r, nil
}

// scanLogger returns the logger for the runner. The interactive view owns
// the terminal, so it only gets warnings and errors.
func scanLogger(logger *log.Logger, interactive bool) *log.Logger {
	if !interactive {
		return logger
	}
	quiet := logger.With()
	quiet.SetLevel(max(logger.GetLevel(), log.WarnLevel))
	return quiet
}
