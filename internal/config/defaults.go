package config

import (
	_ "embed"

	"github.com/vovakirdan/beatrate/internal/difficulty"
)

//go:embed defaults/beatrate.yaml
var defaultYAML []byte

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Database: "~/.beatrate/ratings.db",
		Charts:   "~/.beatrate/charts",
		Modes:    []string{"standard", "mania"},
		Speeds: SpeedRange{
			Min:  50,
			Max:  200,
			Step: 5,
		},
		ModifierSets: [][]string{
			{},
			{"HD"},
			{"HR"},
			{"HD", "HR"},
			{"EZ"},
			{"FL"},
		},
		Analysis: difficulty.DefaultParams(),
		Scan: ScanConfig{
			TickRate:   60,
			Parallel:   2,
			FlushEvery: 0,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
