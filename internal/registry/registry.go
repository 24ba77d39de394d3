// Package registry provides a global registry of difficulty analyzers.
// Each gamemode variant registers itself in an init() function, so the
// pipeline can discover and build analyzers without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/vovakirdan/beatrate/internal/chart"
	"github.com/vovakirdan/beatrate/internal/difficulty"
)

// ErrUnknownMode is returned for a gamemode nobody registered.
var ErrUnknownMode = errors.New("registry: unknown mode")

// Info describes a registered analyzer variant.
type Info struct {
	// Mode is the gamemode identifier (e.g., "standard", "mania").
	// Used for CLI commands and as part of the persistence key.
	Mode string

	// Title is a human-readable name for display.
	Title string

	// Converts lists other chart modes this variant can rate.
	Converts []string
}

var (
	builders = make(map[string]difficulty.Builder)
	infos    = make(map[string]Info)
	mu       sync.RWMutex
)

// Register adds an analyzer builder to the registry.
// Panics if the mode is already registered.
func Register(info Info, b difficulty.Builder) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := builders[info.Mode]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", info.Mode))
	}
	builders[info.Mode] = b
	infos[info.Mode] = info
}

// List returns every registered variant, sorted by mode.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Mode < result[j].Mode
	})
	return result
}

// Exists checks if a mode is registered.
func Exists(mode string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := builders[mode]
	return ok
}

// Supports reports whether mode can rate b: either it is the chart's own
// mode or the variant converts from it.
func Supports(mode string, b *chart.Beatmap) bool {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[mode]
	if !ok {
		return false
	}
	return b.Mode == mode || slices.Contains(info.Converts, b.Mode)
}

// Lookup returns the builder for mode.
func Lookup(mode string) (difficulty.Builder, error) {
	mu.RLock()
	defer mu.RUnlock()

	b, ok := builders[mode]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	return b, nil
}

// Build constructs the analyzer for mode from b.
func Build(mode string, b *chart.Beatmap, p difficulty.Params) (difficulty.Analyzer, error) {
	build, err := Lookup(mode)
	if err != nil {
		return nil, err
	}
	return build(b, p.WithDefaults())
}

// unregister removes a mode. Only used by tests.
func unregister(mode string) {
	mu.Lock()
	defer mu.Unlock()

	delete(builders, mode)
	delete(infos, mode)
}
