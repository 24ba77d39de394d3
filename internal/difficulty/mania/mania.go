// Package mania rates key-column charts by overall and per-column note
// density. Standard charts are converted by mapping x positions to columns.
package mania

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/combo"
	"github.com/vovakirdan/beatrate/internal/difficulty"
	"github.com/vovakirdan/beatrate/internal/registry"
)

const (
	componentDensity = iota
	componentColumn
	componentCount
)

const (
	defaultColumns = 4
	maxColumns     = 18

	// columnWeight scales per-column density relative to overall density.
	columnWeight = 0.5
	// scrollWeight is the extra density per doubling or halving of scroll.
	scrollWeight = 0.1
)

func init() {
	registry.Register(registry.Info{
		Mode:     chart.ModeMania,
		Title:    "Mania (key-column density)",
		Converts: []string{chart.ModeStandard},
	}, Build)
}

type note struct {
	t      float64
	column int
	scroll float64 // density factor from the scroll-speed multiplier
}

// Analyzer holds the materialized notes of one chart.
type Analyzer struct {
	params  difficulty.Params
	columns int
	notes   []note
}

// Build materializes the notes of b. Standard charts are converted:
// spinners are dropped and each object lands in column x*columns/512.
func Build(b *chart.Beatmap, p difficulty.Params) (difficulty.Analyzer, error) {
	convert := false
	switch b.Mode {
	case chart.ModeMania:
	case chart.ModeStandard:
		convert = true
	default:
		return nil, fmt.Errorf("%w: mania cannot rate %q charts", difficulty.ErrInvalidFile, b.Mode)
	}

	columns := b.Columns
	if columns <= 0 {
		columns = defaultColumns
	}
	if columns > maxColumns {
		return nil, fmt.Errorf("%w: %d columns exceeds %d", difficulty.ErrInvalidFile, columns, maxColumns)
	}

	curve, err := b.Curve()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", difficulty.ErrInvalidFile, err)
	}

	var notes []note
	for _, o := range b.Objects {
		col := o.Column
		if convert {
			if o.Kind == chart.KindSpinner {
				continue
			}
			col = int(float64(o.X) * float64(columns) / chart.PlayfieldWidth)
		}
		col = min(max(col, 0), columns-1)

		notes = append(notes, note{
			t:      float64(o.Time),
			column: col,
			scroll: scrollFactor(float64(curve.BeatLengthAt(o.Time, false)), float64(curve.BeatLengthAt(o.Time, true))),
		})
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("%w: no scoreable notes", difficulty.ErrInvalidFile)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].t < notes[j].t
	})

	return &Analyzer{params: p.WithDefaults(), columns: columns, notes: notes}, nil
}

// scrollFactor grows with how far the scroll multiplier is from 1x in
// either direction.
func scrollFactor(control, effective float64) float64 {
	if control <= 0 || effective <= 0 {
		return 1
	}
	return 1 + scrollWeight*math.Abs(math.Log2(control/effective))
}

// Mode implements difficulty.Analyzer.
func (a *Analyzer) Mode() string {
	return chart.ModeMania
}

// Events implements difficulty.Analyzer.
func (a *Analyzer) Events() int {
	return len(a.notes)
}

// Columns returns the key count the chart is rated on.
func (a *Analyzer) Columns() int {
	return a.columns
}

// Score implements difficulty.Analyzer.
func (a *Analyzer) Score(ctx context.Context, c combo.Combination) (float32, error) {
	rate := c.Rate()
	if rate <= 0 {
		return 0, nil
	}
	p := a.params
	fx := difficulty.EffectOf(c.Mods)

	lastInColumn := make([]float64, a.columns)
	seen := make([]bool, a.columns)

	buckets := difficulty.NewBuckets(a.notes[0].t, p.BucketMs*rate, componentCount)
	for i, n := range a.notes {
		if err := difficulty.Interrupted(ctx, i+1); err != nil {
			return 0, err
		}

		if i > 0 {
			gap := math.Max((n.t-a.notes[i-1].t)/rate, p.MinGapMs)
			buckets.Add(n.t, componentDensity, p.BucketMs/gap*n.scroll*fx.Density)
		}
		if seen[n.column] {
			gap := math.Max((n.t-lastInColumn[n.column])/rate, p.MinGapMs)
			buckets.Add(n.t, componentColumn, p.BucketMs/gap*columnWeight*n.scroll*fx.Density)
		}
		seen[n.column] = true
		lastInColumn[n.column] = n.t
	}

	return float32(difficulty.Aggregate(buckets.Loads(p.Exponent), p.Decay)), nil
}
