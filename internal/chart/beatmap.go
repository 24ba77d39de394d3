// Package chart provides the beatmap value object consumed by the rating
// pipeline and a YAML chart format for feeding it from disk.
package chart

import (
	"github.com/vovakirdan/beatrate/internal/timing"
)

// Gamemode identifiers.
const (
	ModeStandard = "standard"
	ModeMania    = "mania"
)

// Playfield dimensions in osu!pixels.
const (
	PlayfieldWidth  = 512
	PlayfieldHeight = 384
)

// ObjectKind is the type of a hit object.
type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
	KindHold
)

// String returns the YAML spelling of the kind.
func (k ObjectKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	case KindHold:
		return "hold"
	default:
		return "unknown"
	}
}

// HitObject is a single scoreable object in a chart.
type HitObject struct {
	Kind    ObjectKind
	Time    float32 // ms
	EndTime float32 // hold and spinner end, zero otherwise
	X, Y    float32 // playfield position
	EndX    float32 // slider end position
	EndY    float32
	Column  int     // mania column
	Length  float32 // slider pixel length
	Slides  int     // slider repeat count, at least 1
}

// Beatmap is the metadata of one chart needed to rate it.
type Beatmap struct {
	Hash    string // sha256 of the source file, hex
	Path    string
	Title   string
	Artist  string
	Version string
	Mode    string

	Columns          int     // mania key count
	SliderMultiplier float32 // base slider velocity in hundreds of pixels per beat
	ScrollSpeed      float32 // base scroll speed for the timing curve

	TimingPoints []timing.TimingPoint
	Objects      []HitObject
}

// Name returns a display name like "Artist - Title [Version]".
func (b *Beatmap) Name() string {
	name := b.Title
	if b.Artist != "" {
		name = b.Artist + " - " + name
	}
	if b.Version != "" {
		name += " [" + b.Version + "]"
	}
	return name
}

// ShortHash returns the first 12 characters of the chart hash.
func (b *Beatmap) ShortHash() string {
	if len(b.Hash) <= 12 {
		return b.Hash
	}
	return b.Hash[:12]
}

// Curve builds the timing curve for the chart.
func (b *Beatmap) Curve() (*timing.Curve, error) {
	return timing.New(b.TimingPoints, b.ScrollSpeed)
}
