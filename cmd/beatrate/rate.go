package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
	"github.com/vovakirdan/beatrate/internal/platform/tui"
	"github.com/vovakirdan/beatrate/internal/registry"
	"github.com/vovakirdan/beatrate/internal/scheduler"
	"github.com/vovakirdan/beatrate/internal/storage"
)

var (
	flagRateMode      string
	flagRateMods      []string
	flagRateSpeed     int
	flagRateSignature string
	flagRateSave      bool
	flagRateCached    bool
)

var rateCmd = &cobra.Command{
	Use:   "rate <chart>",
	Short: "Rate one chart under one combination",
	Long: `Rate a single chart in the foreground and print the score.

The chart is a file path, a path relative to the chart directory, or a
prefix of the chart hash. The combination is given either as --mods and
--speed or as a stored signature such as "HD+HR@150".

Examples:
  beatrate rate jumps.chart.yaml
  beatrate rate 3fa2c1 --mods HD,HR --speed 150
  beatrate rate jumps.chart.yaml --mode mania --signature EZ@75 --save
  beatrate rate jumps.chart.yaml --cached`,
	Args: cobra.ExactArgs(1),
	Run:  runRate,
}

func init() {
	rateCmd.Flags().StringVar(&flagRateMode, "mode", "", "Rating mode (default: the chart's own mode)")
	rateCmd.Flags().StringSliceVar(&flagRateMods, "mods", nil, "Modifiers, e.g. HD,HR")
	rateCmd.Flags().IntVar(&flagRateSpeed, "speed", 100, "Speed in hundredths (100 = 1.00x)")
	rateCmd.Flags().StringVar(&flagRateSignature, "signature", "", "Combination signature, e.g. HD+HR@150 (overrides --mods and --speed)")
	rateCmd.Flags().BoolVar(&flagRateSave, "save", false, "Store the result in the ratings database")
	rateCmd.Flags().BoolVar(&flagRateCached, "cached", false, "Print the stored rating instead of recomputing when there is one")
}

func runRate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c, err := rateCombination()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	b, err := chart.NewLoader(chartDir(nil, cfg)).Beatmap(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode := flagRateMode
	if mode == "" {
		mode = b.Mode
	}
	if !registry.Exists(mode) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", mode)
		fmt.Fprintln(os.Stderr, "Run 'beatrate modes' to see available modes.")
		os.Exit(1)
	}

	entry := scheduler.Entry{Mode: mode, ChartHash: b.Hash, Signature: c.Signature()}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		if flagRateSave {
			fmt.Fprintf(os.Stderr, "Error opening ratings database: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Warning: could not open ratings database: %v\n", err)
		// Continue without storage - rating still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	stored, haveStored := storedRating(store, entry)

	fmt.Printf("%s (%s)\n", b.Name(), b.ShortHash())
	fmt.Printf("  Mode:      %s\n", mode)
	fmt.Printf("  Combo:     %s\n", c)
	if haveStored {
		fmt.Printf("  Stored:    %s\n", tui.FormatScore(stored))
		if flagRateCached {
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	score, err := rate(ctx, mode, b, c, cfg.Analysis)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted.")
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "Cannot rate %s: %v\n", b.Name(), err)
		score = scheduler.Sentinel
	}

	fmt.Printf("  Rating:    %s\n", tui.FormatScore(score))
	fmt.Printf("  Took:      %s\n", time.Since(start).Round(time.Millisecond))

	if !flagRateSave {
		return
	}
	if err := store.StoreResults([]scheduler.Result{{Entry: entry, Score: score}}); err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  Saved.")
}

// storedRating returns the stored score of entry. A missing store or a
// failed lookup counts as not stored.
func storedRating(store *storage.Store, entry scheduler.Entry) (float32, bool) {
	if store == nil {
		return 0, false
	}
	score, ok, err := store.Lookup(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return 0, false
	}
	return score, ok
}

// rateCombination builds the combination from the rate flags.
func rateCombination() (combo.Combination, error) {
	if flagRateSignature != "" {
		return combo.ParseSignature(flagRateSignature)
	}
	if flagRateSpeed < 1 || flagRateSpeed > 65535 {
		return combo.Combination{}, fmt.Errorf("speed %d outside 1..65535", flagRateSpeed)
	}
	mods := combo.NewMods(flagRateMods...)
	for _, m := range mods {
		if !difficulty.Known(m) {
			return combo.Combination{}, fmt.Errorf("unknown modifier %q", m)
		}
	}
	return combo.Combination{Speed: uint16(flagRateSpeed), Mods: mods}, nil
}

// rate builds the analyzer and scores one combination.
func rate(ctx context.Context, mode string, b *chart.Beatmap, c combo.Combination, p difficulty.Params) (float32, error) {
	a, err := registry.Build(mode, b, p)
	if err != nil {
		return 0, err
	}
	return a.Score(ctx, c)
}
