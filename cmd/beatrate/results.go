package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/config"
	"github.com/vovakirdan/beatrate/internal/platform/tui"
	"github.com/vovakirdan/beatrate/internal/storage"
)

var (
	flagResultsClear bool
	flagResultsPlain bool
)

var resultsCmd = &cobra.Command{
	Use:   "results [chart-hash]",
	Short: "Browse stored ratings",
	Long: `Show stored ratings. Without arguments, lists a summary per chart and mode
(interactively on a terminal). With a chart hash prefix, prints every stored
combination of that chart.

Examples:
  beatrate results
  beatrate results 3fa2c1
  beatrate results 3fa2c1 --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().BoolVar(&flagResultsClear, "clear", false, "Delete the stored ratings of the chart")
	resultsCmd.Flags().BoolVar(&flagResultsPlain, "plain", false, "Print plain text even on a terminal")
}

func runResults(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ratings database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	summaries, err := store.Charts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving ratings: %v\n", err)
		os.Exit(1)
	}
	names := chartNames(cfg)

	if len(args) == 0 {
		if flagResultsClear {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a chart hash")
			os.Exit(1)
		}
		if !flagResultsPlain && term.IsTerminal(int(os.Stdout.Fd())) {
			width, height := 80, 24 // Defaults
			if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
				width = w
				height = h
			}
			if err := tui.RunResults(store, names, width, height); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		printSummaries(summaries, names)
		return
	}

	hash, err := resolveHash(args[0], summaries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagResultsClear {
		n, err := store.ClearChart(hash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d ratings of %s.\n", n, displayName(hash, names))
		return
	}

	ratings, err := store.ChartResults(hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving ratings: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ratings - %s\n", displayName(hash, names))
	fmt.Println()
	fmt.Printf("  %-8s  %-16s  %-8s  %s\n", "Mode", "Combination", "Rating", "Computed")
	fmt.Printf("  %-8s  %-16s  %-8s  %s\n", "----", "-----------", "------", "--------")
	for _, r := range ratings {
		fmt.Printf("  %-8s  %-16s  %-8s  %s\n",
			r.Mode, r.Signature, tui.FormatScore(r.Score), r.ComputedAt.Format("2006-01-02 15:04"))
	}
}

func printSummaries(summaries []storage.ChartSummary, names map[string]string) {
	if len(summaries) == 0 {
		fmt.Println("No ratings stored yet.")
		fmt.Println()
		fmt.Println("Run 'beatrate scan' to rate your charts!")
		return
	}

	fmt.Printf("  %-12s  %-8s  %6s  %8s  %8s  %s\n", "Hash", "Mode", "Count", "Nomod", "Max", "Chart")
	fmt.Printf("  %-12s  %-8s  %6s  %8s  %8s  %s\n", "----", "----", "-----", "-----", "---", "-----")
	for _, s := range summaries {
		fmt.Printf("  %-12s  %-8s  %6d  %8s  %8s  %s\n",
			shortHash(s.ChartHash), s.Mode, s.Count,
			tui.FormatScore(s.Nomod), tui.FormatScore(s.Max), names[s.ChartHash])
	}
}

// chartNames maps chart hashes to display names for the charts that are
// still in the chart directory.
func chartNames(cfg config.Config) map[string]string {
	names := make(map[string]string)
	charts, err := chart.NewLoader(config.ExpandHome(cfg.Charts)).LoadAll()
	if err != nil {
		return names
	}
	for _, b := range charts {
		names[b.Hash] = b.Name()
	}
	return names
}

// resolveHash expands a hash prefix against the stored charts.
func resolveHash(prefix string, summaries []storage.ChartSummary) (string, error) {
	var match string
	for _, s := range summaries {
		if !strings.HasPrefix(s.ChartHash, prefix) || s.ChartHash == match {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("chart hash prefix %q is ambiguous", prefix)
		}
		match = s.ChartHash
	}
	if match == "" {
		return "", fmt.Errorf("no ratings stored for chart %q", prefix)
	}
	return match, nil
}

func displayName(hash string, names map[string]string) string {
	if name := names[hash]; name != "" {
		return fmt.Sprintf("%s (%s)", name, shortHash(hash))
	}
	return shortHash(hash)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
