// Package standard rates circle/slider charts by aim and note density.
package standard

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
	componentAim
	componentCount
)

// aimScale brings aim loads (normalized distance per second) into the same
// range as density loads.
const aimScale = 4.0

var diagonal = math.Hypot(chart.PlayfieldWidth, chart.PlayfieldHeight)

func init() {
	registry.Register(registry.Info{
		Mode:  chart.ModeStandard,
		Title: "Standard (aim + density)",
	}, Build)
}

// event is a cursor target. Spinners have no position.
type event struct {
	t    float64
	x, y float64
	aim  bool
}

// Analyzer holds the materialized targets of one chart.
type Analyzer struct {
	params difficulty.Params
	events []event
}

// Build materializes the cursor targets of b: circles, slider heads,
// slider ends (one per slide, timed from the chart's timing curve) and
// spinners.
func Build(b *chart.Beatmap, p difficulty.Params) (difficulty.Analyzer, error) {
	if b.Mode != chart.ModeStandard {
		return nil, fmt.Errorf("%w: standard cannot rate %q charts", difficulty.ErrInvalidFile, b.Mode)
	}
	curve, err := b.Curve()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", difficulty.ErrInvalidFile, err)
	}

	var events []event
	for _, o := range b.Objects {
		t := float64(o.Time)
		switch o.Kind {
		case chart.KindSpinner:
			events = append(events, event{t: t})
		case chart.KindSlider:
			events = append(events, event{t: t, x: float64(o.X), y: float64(o.Y), aim: true})

			beatLength := float64(curve.BeatLengthAt(o.Time, true))
			span := float64(o.Length) / (100 * float64(b.SliderMultiplier)) * beatLength
			for s := 1; s <= o.Slides; s++ {
				x, y := o.EndX, o.EndY
				if s%2 == 0 {
					x, y = o.X, o.Y
				}
				events = append(events, event{t: t + span*float64(s), x: float64(x), y: float64(y), aim: true})
			}
		default:
			events = append(events, event{t: t, x: float64(o.X), y: float64(o.Y), aim: true})
		}
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no scoreable objects", difficulty.ErrInvalidFile)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].t < events[j].t
	})

	return &Analyzer{params: p.WithDefaults(), events: events}, nil
}

// Mode implements difficulty.Analyzer.
func (a *Analyzer) Mode() string {
	return chart.ModeStandard
}

// Events implements difficulty.Analyzer.
func (a *Analyzer) Events() int {
	return len(a.events)
}

// Score implements difficulty.Analyzer.
func (a *Analyzer) Score(ctx context.Context, c combo.Combination) (float32, error) {
	rate := c.Rate()
	if rate <= 0 {
		return 0, nil
	}
	p := a.params
	fx := difficulty.EffectOf(c.Mods)

	buckets := difficulty.NewBuckets(a.events[0].t, p.BucketMs*rate, componentCount)
	for i := 1; i < len(a.events); i++ {
		if err := difficulty.Interrupted(ctx, i); err != nil {
			return 0, err
		}
		prev, cur := a.events[i-1], a.events[i]

		gap := math.Max((cur.t-prev.t)/rate, p.MinGapMs)
		buckets.Add(cur.t, componentDensity, p.BucketMs/gap*fx.Density)

		if prev.aim && cur.aim {
			dist := math.Hypot(cur.x-prev.x, cur.y-prev.y) / diagonal
			buckets.Add(cur.t, componentAim, dist*(1000/gap)*aimScale*fx.Aim)
		}
	}

	return float32(difficulty.Aggregate(buckets.Loads(p.Exponent), p.Decay)), nil
}
