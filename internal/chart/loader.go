package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a chart reference matches nothing.
var ErrNotFound = errors.New("chart: not found")

// Source resolves a chart reference into beatmap metadata.
type Source interface {
	Beatmap(ref string) (*Beatmap, error)
}

// Loader reads YAML charts from a directory tree.
type Loader struct {
	Root string

	// OnError is called for files that fail to load. They are skipped.
	OnError func(path string, err error)
}

// NewLoader creates a loader rooted at root.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// IsChartFile reports whether path has a chart file extension.
func IsChartFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".chart.yaml") || strings.HasSuffix(name, ".chart.yml")
}

// LoadFile reads and parses a single chart.
func LoadFile(path string) (*Beatmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chart: cannot read %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Path = path
	return b, nil
}

// LoadAll recursively loads every chart under Root, sorted by name and hash
// so catalog scans are deterministic.
func (l *Loader) LoadAll() ([]*Beatmap, error) {
	var charts []*Beatmap

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsChartFile(path) {
			return nil
		}

		b, err := LoadFile(path)
		if err != nil {
			if l.OnError != nil {
				l.OnError(path, err)
			}
			return nil
		}
		charts = append(charts, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chart: cannot scan %s: %w", l.Root, err)
	}

	sort.Slice(charts, func(i, j int) bool {
		if ni, nj := charts[i].Name(), charts[j].Name(); ni != nj {
			return ni < nj
		}
		return charts[i].Hash < charts[j].Hash
	})
	return charts, nil
}

// LoadByHash returns the chart whose hash starts with prefix.
func (l *Loader) LoadByHash(prefix string) (*Beatmap, error) {
	charts, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	var match *Beatmap
	for _, b := range charts {
		if !strings.HasPrefix(b.Hash, prefix) {
			continue
		}
		if match != nil && match.Hash != b.Hash {
			return nil, fmt.Errorf("chart: hash prefix %q is ambiguous", prefix)
		}
		match = b
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

// Beatmap implements Source. The reference is a path relative to Root, an
// absolute path, or a hash prefix.
func (l *Loader) Beatmap(ref string) (*Beatmap, error) {
	for _, p := range []string{ref, filepath.Join(l.Root, ref)} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return LoadFile(p)
		}
	}
	return l.LoadByHash(ref)
}

var _ Source = (*Loader)(nil)
