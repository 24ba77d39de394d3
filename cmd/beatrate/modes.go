package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatrate/internal/registry"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List all rating modes",
	Long:  `Shows every registered analyzer and the chart modes it can convert.`,
	Run:   runModes,
}

func runModes(cmd *cobra.Command, args []string) {
	modes := registry.List()

	if len(modes) == 0 {
		fmt.Println("No modes available.")
		return
	}

	fmt.Println("Available modes:")
	fmt.Println()

	// Calculate column widths
	maxModeLen := 4 // "Mode" header
	maxTitleLen := 5
	for _, m := range modes {
		maxModeLen = max(maxModeLen, len(m.Mode))
		maxTitleLen = max(maxTitleLen, len(m.Title))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxModeLen, "Mode", maxTitleLen, "Title", "Converts")
	fmt.Printf("  %-*s  %-*s  %s\n", maxModeLen, "----", maxTitleLen, "-----", "--------")

	for _, m := range modes {
		converts := "-"
		if len(m.Converts) > 0 {
			converts = strings.Join(m.Converts, ", ")
		}
		fmt.Printf("  %-*s  %-*s  %s\n", maxModeLen, m.Mode, maxTitleLen, m.Title, converts)
	}
}
