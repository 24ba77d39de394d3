package difficulty

import (
	"math"
	"sort"
)

// Aggregate folds bucket loads into one score: loads are sorted descending
// and summed with weights 1, decay, decay^2, ... then divided by the sum of
// the weights used. Non-finite results, including the empty case, are 0.
func Aggregate(loads []float64, decay float64) float64 {
	sorted := make([]float64, len(loads))
	copy(sorted, loads)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	total := 0.0
	weight := 1.0
	for _, l := range sorted {
		total += l * weight
		weight *= decay
	}

	result := total / ((1 - weight) / (1 - decay))
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}
	return result
}

// Buckets accumulates per-component sums in fixed-length time windows.
// Only windows that receive a value are stored.
type Buckets struct {
	start  float64
	length float64
	comps  int

	index   map[int64]int // window -> position in windows
	windows []window
}

type window struct {
	idx  int64
	sums []float64
}

// NewBuckets starts windows at start, each length ms long, tracking the
// given number of components.
func NewBuckets(start, length float64, components int) *Buckets {
	return &Buckets{
		start:  start,
		length: length,
		comps:  components,
		index:  make(map[int64]int),
	}
}

// Add adds v to component c of the window containing t.
func (b *Buckets) Add(t float64, c int, v float64) {
	var idx int64
	if b.length > 0 {
		idx = max(int64(math.Floor((t-b.start)/b.length)), 0)
	}
	pos, ok := b.index[idx]
	if !ok {
		pos = len(b.windows)
		b.index[idx] = pos
		b.windows = append(b.windows, window{idx: idx, sums: make([]float64, b.comps)})
	}
	b.windows[pos].sums[c] += v
}

// Len returns the number of windows that received at least one value.
func (b *Buckets) Len() int {
	return len(b.windows)
}

// Loads returns one load per non-empty window, in time order: the sum of
// its components, each raised to exponent.
func (b *Buckets) Loads(exponent float64) []float64 {
	windows := make([]window, len(b.windows))
	copy(windows, b.windows)
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].idx < windows[j].idx
	})

	loads := make([]float64, 0, len(windows))
	for _, w := range windows {
		load := 0.0
		for _, s := range w.sums {
			if s > 0 {
				load += math.Pow(s, exponent)
			}
		}
		loads = append(loads, load)
	}
	return loads
}
