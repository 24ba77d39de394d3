package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatrate/internal/chart"
)

var chartsCmd = &cobra.Command{
	Use:   "charts [dir]",
	Short: "List charts in a directory",
	Long: `Recursively lists every *.chart.yaml file under the directory, or under
the configured chart directory when none is given. Files that fail to parse
are reported and skipped.

Examples:
  beatrate charts
  beatrate charts ./testdata`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCharts,
}

func runCharts(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loader := chart.NewLoader(chartDir(args, cfg))
	loader.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "Warning: skipping %v\n", err)
	}

	charts, err := loader.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(charts) == 0 {
		fmt.Printf("No charts found in %s.\n", loader.Root)
		return
	}

	maxNameLen := 4 // "Name" header
	for _, b := range charts {
		maxNameLen = max(maxNameLen, len(b.Name()))
	}

	fmt.Printf("  %-*s  %-12s  %-8s  %s\n", maxNameLen, "Name", "Hash", "Mode", "Objects")
	fmt.Printf("  %-*s  %-12s  %-8s  %s\n", maxNameLen, "----", "----", "----", "-------")
	for _, b := range charts {
		fmt.Printf("  %-*s  %-12s  %-8s  %d\n", maxNameLen, b.Name(), b.ShortHash(), b.Mode, len(b.Objects))
	}

	fmt.Println()
	fmt.Printf("%d charts. Run 'beatrate scan' to rate them.\n", len(charts))
}
