// Package config provides YAML-based configuration loading for the rating
// pipeline: which modes and combinations to rate, analysis tuning, and how
// the background scan is paced.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
)

// Config contains the whole pipeline configuration.
type Config struct {
	Database     string            `yaml:"database"`
	Charts       string            `yaml:"charts"` // default chart directory
	Modes        []string          `yaml:"modes"`  // empty means every registered mode
	Speeds       SpeedRange        `yaml:"speeds"`
	ModifierSets [][]string        `yaml:"modifier_sets"`
	Analysis     difficulty.Params `yaml:"analysis"`
	Scan         ScanConfig        `yaml:"scan"`
}

// SpeedRange is an inclusive speed range in hundredths (100 = 1.00x).
type SpeedRange struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Step int `yaml:"step"` // 0 rates Min only
}

// ScanConfig paces the background catalog scan.
type ScanConfig struct {
	TickRate   int    `yaml:"tick_rate"`   // scheduler ticks per second
	Parallel   int    `yaml:"parallel"`    // schedulers active at once
	FlushEvery int    `yaml:"flush_every"` // 0 stores results once per chart
	LockFile   string `yaml:"lock_file"`   // gameplay is active while this file exists
}

// Validate checks that every value is in range.
func (c Config) Validate() error {
	var errs []error

	if c.Database == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	for _, m := range c.Modes {
		if m == "" {
			errs = append(errs, errors.New("modes: empty mode name"))
		}
	}

	s := c.Speeds
	if s.Min < 1 || s.Min > 65535 || s.Max < 1 || s.Max > 65535 {
		errs = append(errs, fmt.Errorf("speeds: %d..%d outside 1..65535", s.Min, s.Max))
	}
	if s.Min > s.Max {
		errs = append(errs, fmt.Errorf("speeds: min %d above max %d", s.Min, s.Max))
	}
	if s.Step < 0 || s.Step > 65535 {
		errs = append(errs, fmt.Errorf("speeds: invalid step %d", s.Step))
	}

	for i, set := range c.ModifierSets {
		for _, name := range set {
			m := combo.NewMods(name)
			if len(m) > 0 && !difficulty.Known(m[0]) {
				errs = append(errs, fmt.Errorf("modifier_sets[%d]: unknown modifier %q", i, name))
			}
		}
	}

	a := c.Analysis
	if a.BucketMs <= 0 {
		errs = append(errs, fmt.Errorf("analysis: bucket_ms must be positive, got %v", a.BucketMs))
	}
	if a.Decay <= 0 || a.Decay >= 1 {
		errs = append(errs, fmt.Errorf("analysis: decay must be in (0, 1), got %v", a.Decay))
	}
	if a.MinGapMs <= 0 {
		errs = append(errs, fmt.Errorf("analysis: min_gap_ms must be positive, got %v", a.MinGapMs))
	}
	if a.Exponent <= 0 {
		errs = append(errs, fmt.Errorf("analysis: exponent must be positive, got %v", a.Exponent))
	}

	if c.Scan.TickRate < 1 || c.Scan.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("scan: tick_rate %d outside 1..1000", c.Scan.TickRate))
	}
	if c.Scan.Parallel < 1 {
		errs = append(errs, fmt.Errorf("scan: parallel must be at least 1, got %d", c.Scan.Parallel))
	}
	if c.Scan.FlushEvery < 0 {
		errs = append(errs, fmt.Errorf("scan: flush_every must not be negative, got %d", c.Scan.FlushEvery))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Mods returns the modifier sets in canonical form.
func (c Config) Mods() []combo.Mods {
	sets := make([]combo.Mods, 0, len(c.ModifierSets))
	for _, set := range c.ModifierSets {
		sets = append(sets, combo.NewMods(set...))
	}
	return sets
}

// Space builds the combination space. The config must be valid.
func (c Config) Space() *combo.Space {
	return combo.New(c.Mods(), uint16(c.Speeds.Min), uint16(c.Speeds.Max), uint16(c.Speeds.Step))
}

// TickInterval returns the time between scheduler ticks.
func (c Config) TickInterval() time.Duration {
	if c.Scan.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Scan.TickRate)
}
