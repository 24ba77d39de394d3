// Package difficulty defines the per-gamemode analyzer contract and the
// bucketed weighted-sum aggregation every variant shares.
//
// An analyzer is built once per chart (the expensive part: materializing a
// time-sorted event list) and then scored many times, once per
// combination. Scoring only reads the materialized events, so one analyzer
// can be scored concurrently from several goroutines.
package difficulty

import (
	"context"
	"errors"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
)

// ErrInvalidFile is returned when a chart has nothing a variant can score.
var ErrInvalidFile = errors.New("difficulty: invalid file")

// Analyzer scores one chart under different combinations.
type Analyzer interface {
	// Mode returns the gamemode the analyzer rates.
	Mode() string

	// Events returns the number of materialized scoring events.
	Events() int

	// Score rates the chart under c. It is deterministic and returns
	// ctx.Err() if the context is cancelled before it finishes.
	Score(ctx context.Context, c combo.Combination) (float32, error)
}

// Builder constructs an analyzer for a chart.
type Builder func(b *chart.Beatmap, p Params) (Analyzer, error)

// Params tunes the shared aggregation.
type Params struct {
	BucketMs float64 `yaml:"bucket_ms"` // bucket length at 1.00x
	Decay    float64 `yaml:"decay"`     // geometric weight decay
	MinGapMs float64 `yaml:"min_gap_ms"`
	Exponent float64 `yaml:"exponent"` // applied to each per-bucket component
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		BucketMs: 500,
		Decay:    0.99,
		MinGapMs: 25,
		Exponent: 1.1,
	}
}

// WithDefaults replaces unset or out-of-range fields with defaults.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.BucketMs <= 0 {
		p.BucketMs = d.BucketMs
	}
	if p.Decay <= 0 || p.Decay >= 1 {
		p.Decay = d.Decay
	}
	if p.MinGapMs <= 0 {
		p.MinGapMs = d.MinGapMs
	}
	if p.Exponent <= 0 {
		p.Exponent = d.Exponent
	}
	return p
}

// checkEvery is how many events a variant scores between context checks.
const checkEvery = 256

// Interrupted reports whether ctx has been cancelled, checking only every
// checkEvery iterations.
func Interrupted(ctx context.Context, i int) error {
	if i%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}
