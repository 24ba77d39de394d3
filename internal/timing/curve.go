// Package timing models the tempo and scroll-speed curve of a single chart.
//
// A curve is built once per chart load from its timing points. Read-only
// queries (BeatLengthAt, ScrollSpeedAt, ControlPointAt) never touch the
// playback cursor and are safe to call from background analysis while the
// owner drives the cursor forward with Advance.
package timing

import (
	"errors"
	"sort"
)

// ErrNoTimingPoints is returned when a curve has no uninherited point.
var ErrNoTimingPoints = errors.New("timing: no uninherited timing points")

const (
	defaultMeter = 4

	// Inherited multipliers are clamped to [10%, 1000%].
	minInheritedPercent = 10.0
	maxInheritedPercent = 1000.0
)

// TimingPoint is a single tempo or scroll change.
type TimingPoint struct {
	Time       float32 // ms from chart start
	BeatLength float32 // ms per beat if > 0, -percentage of the control tempo if < 0
	Meter      uint8   // beats per measure
	Kiai       bool
}

// Uninherited reports whether the point sets an absolute tempo.
func (p TimingPoint) Uninherited() bool {
	return p.BeatLength > 0
}

// Inherited reports whether the point scales the preceding control point.
func (p TimingPoint) Inherited() bool {
	return p.BeatLength < 0
}

// Curve answers tempo and scroll questions for one chart.
type Curve struct {
	points       []TimingPoint
	baseScroll   float32
	firstControl int

	// playback cursor
	controlIdx int
	pointIdx   int
	beatIdx    int64 // next beat, counted from the active control point
	nextBeat   float32
	kiai       bool
}

// New builds a curve from points. The input slice is copied and sorted by
// time; points sharing a time keep their original order.
func New(points []TimingPoint, baseScrollSpeed float32) (*Curve, error) {
	sorted := make([]TimingPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	first := -1
	for i := range sorted {
		if sorted[i].Meter == 0 {
			sorted[i].Meter = defaultMeter
		}
		if first < 0 && sorted[i].Uninherited() {
			first = i
		}
	}
	if first < 0 {
		return nil, ErrNoTimingPoints
	}

	c := &Curve{
		points:       sorted,
		baseScroll:   baseScrollSpeed,
		firstControl: first,
	}
	c.Reset()
	return c, nil
}

// Points returns the sorted timing points. The slice must not be modified.
func (c *Curve) Points() []TimingPoint {
	return c.points
}

// BaseScrollSpeed returns the scroll speed the curve was built with.
func (c *Curve) BaseScrollSpeed() float32 {
	return c.baseScroll
}

// Reset returns the cursor to the first control point.
func (c *Curve) Reset() {
	c.controlIdx = c.firstControl
	c.pointIdx = c.firstControl
	c.beatIdx = 0
	c.nextBeat = c.points[c.firstControl].Time
	c.kiai = c.points[c.firstControl].Kiai
}

// lastAtOrBefore returns the index of the last point with Time <= t, or -1.
func (c *Curve) lastAtOrBefore(t float32) int {
	n := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].Time > t
	})
	return n - 1
}

// controlIndexAt returns the index of the control point governing t. Times
// before the first control point use the first control point.
func (c *Curve) controlIndexAt(t float32) int {
	for i := c.lastAtOrBefore(t); i >= 0; i-- {
		if c.points[i].Uninherited() {
			return i
		}
	}
	return c.firstControl
}

// BeatLengthAt returns the beat length in effect at t. With allowMultiplier
// the control tempo is scaled by an inherited point that lies between the
// control point and t.
func (c *Curve) BeatLengthAt(t float32, allowMultiplier bool) float32 {
	if c == nil || len(c.points) == 0 {
		return 0
	}

	ci := c.controlIndexAt(t)
	beatLength := c.points[ci].BeatLength
	if !allowMultiplier {
		return beatLength
	}

	control := c.points[ci].Time
	for i := c.lastAtOrBefore(t); i >= 0 && c.points[i].Time >= control; i-- {
		p := c.points[i]
		if i == ci || !p.Inherited() {
			continue
		}
		return beatLength * clamp(-p.BeatLength, minInheritedPercent, maxInheritedPercent) / 100
	}
	return beatLength
}

// ScrollSpeedAt returns the note scroll speed at t.
func (c *Curve) ScrollSpeedAt(t float32) float32 {
	factor := float32(1)
	if bl := c.BeatLengthAt(t, true); bl > 0 {
		factor = 1000 / bl
	}
	return 100 * (c.baseScroll * 1.4) * factor
}

// ControlPointAt returns the last point, inherited or not, at or before t.
// Times before the first point return the first point. It panics on an empty
// curve, which New never produces.
func (c *Curve) ControlPointAt(t float32) TimingPoint {
	if len(c.points) == 0 {
		panic("timing: ControlPointAt on empty curve")
	}
	i := c.lastAtOrBefore(t)
	if i < 0 {
		i = 0
	}
	return c.points[i]
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
