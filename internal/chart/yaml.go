package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/beatrate/internal/timing"
)

// chartFile is the on-disk YAML layout of a chart.
type chartFile struct {
	Title            string        `yaml:"title"`
	Artist           string        `yaml:"artist"`
	Version          string        `yaml:"version"`
	Mode             string        `yaml:"mode"`
	Columns          int           `yaml:"columns"`
	SliderMultiplier float32       `yaml:"slider_multiplier"`
	ScrollSpeed      float32       `yaml:"scroll_speed"`
	Timing           []timingEntry `yaml:"timing"`
	Objects          []objectEntry `yaml:"objects"`
}

type timingEntry struct {
	Time       float32 `yaml:"time"`
	BeatLength float32 `yaml:"beat_length"`
	Meter      uint8   `yaml:"meter"`
	Kiai       bool    `yaml:"kiai"`
}

type objectEntry struct {
	Type    string     `yaml:"type"` // circle, slider, spinner, hold; empty = circle
	Time    float32    `yaml:"time"`
	EndTime float32    `yaml:"end_time"`
	Pos     [2]float32 `yaml:"pos"`
	EndPos  [2]float32 `yaml:"end_pos"`
	Column  int        `yaml:"column"`
	Length  float32    `yaml:"length"`
	Slides  int        `yaml:"slides"`
}

// Parse decodes a YAML chart. The hash is computed over the raw bytes.
func Parse(data []byte) (*Beatmap, error) {
	var f chartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("chart: cannot parse: %w", err)
	}

	sum := sha256.Sum256(data)
	b := &Beatmap{
		Hash:             hex.EncodeToString(sum[:]),
		Title:            f.Title,
		Artist:           f.Artist,
		Version:          f.Version,
		Mode:             strings.ToLower(strings.TrimSpace(f.Mode)),
		Columns:          f.Columns,
		SliderMultiplier: f.SliderMultiplier,
		ScrollSpeed:      f.ScrollSpeed,
	}
	if b.Mode == "" {
		b.Mode = ModeStandard
	}
	if b.SliderMultiplier <= 0 {
		b.SliderMultiplier = 1.4
	}
	if b.ScrollSpeed <= 0 {
		b.ScrollSpeed = 1
	}

	for _, tp := range f.Timing {
		if tp.BeatLength == 0 {
			return nil, fmt.Errorf("chart: timing point at %vms has zero beat length", tp.Time)
		}
		b.TimingPoints = append(b.TimingPoints, timing.TimingPoint{
			Time:       tp.Time,
			BeatLength: tp.BeatLength,
			Meter:      tp.Meter,
			Kiai:       tp.Kiai,
		})
	}

	for i, o := range f.Objects {
		kind, err := parseKind(o.Type)
		if err != nil {
			return nil, fmt.Errorf("chart: object %d: %w", i, err)
		}
		obj := HitObject{
			Kind:    kind,
			Time:    o.Time,
			EndTime: o.EndTime,
			X:       o.Pos[0],
			Y:       o.Pos[1],
			EndX:    o.EndPos[0],
			EndY:    o.EndPos[1],
			Column:  o.Column,
			Length:  o.Length,
			Slides:  o.Slides,
		}
		if obj.Slides < 1 {
			obj.Slides = 1
		}
		b.Objects = append(b.Objects, obj)
	}
	sort.SliceStable(b.Objects, func(i, j int) bool {
		return b.Objects[i].Time < b.Objects[j].Time
	})

	return b, nil
}

// Marshal encodes a beatmap back into the YAML chart layout.
func Marshal(b *Beatmap) ([]byte, error) {
	f := chartFile{
		Title:            b.Title,
		Artist:           b.Artist,
		Version:          b.Version,
		Mode:             b.Mode,
		Columns:          b.Columns,
		SliderMultiplier: b.SliderMultiplier,
		ScrollSpeed:      b.ScrollSpeed,
	}
	for _, tp := range b.TimingPoints {
		f.Timing = append(f.Timing, timingEntry(tp))
	}
	for _, o := range b.Objects {
		f.Objects = append(f.Objects, objectEntry{
			Type:    o.Kind.String(),
			Time:    o.Time,
			EndTime: o.EndTime,
			Pos:     [2]float32{o.X, o.Y},
			EndPos:  [2]float32{o.EndX, o.EndY},
			Column:  o.Column,
			Length:  o.Length,
			Slides:  o.Slides,
		})
	}
	return yaml.Marshal(&f)
}

func parseKind(s string) (ObjectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle", "note":
		return KindCircle, nil
	case "slider":
		return KindSlider, nil
	case "spinner":
		return KindSpinner, nil
	case "hold":
		return KindHold, nil
	default:
		return 0, fmt.Errorf("unknown object type %q", s)
	}
}
