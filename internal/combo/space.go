package combo

import "slices"

// Space is the finite product of a speed range and a list of modifier sets.
// It is immutable; iteration state lives in an Iterator.
type Space struct {
	sets []Mods
	min  uint16
	max  uint16
	step uint16
}

// New creates a space over speeds min..max (hundredths, inclusive) in
// increments of step, crossed with sets in the given order. An empty sets
// list means "no modifiers" only. A zero step yields the single speed min;
// min > max yields an empty space. Sets equal after canonicalisation are
// kept once, at their first position.
func New(sets []Mods, min, max, step uint16) *Space {
	if len(sets) == 0 {
		sets = []Mods{{}}
	}
	cp := make([]Mods, 0, len(sets))
	for _, s := range sets {
		m := NewMods(s...)
		if !slices.ContainsFunc(cp, m.Equal) {
			cp = append(cp, m)
		}
	}
	if step == 0 {
		max = min
		step = 1
	}
	return &Space{sets: cp, min: min, max: max, step: step}
}

// Sets returns the modifier sets in enumeration order.
func (s *Space) Sets() []Mods {
	return s.sets
}

// Speeds returns the number of distinct speed values.
func (s *Space) Speeds() int {
	if s.min > s.max {
		return 0
	}
	return int(s.max-s.min)/int(s.step) + 1
}

// Count returns the number of combinations in the space.
func (s *Space) Count() int {
	return s.Speeds() * len(s.sets)
}

// Iter returns a fresh iterator positioned at the first combination.
func (s *Space) Iter() *Iterator {
	return &Iterator{space: s}
}

// All materializes the whole space in enumeration order.
func (s *Space) All() []Combination {
	out := make([]Combination, 0, s.Count())
	it := s.Iter()
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		out = append(out, c)
	}
	return out
}

// Iterator walks a Space: speeds ascending, and for each speed the modifier
// sets in the order given to New.
type Iterator struct {
	space    *Space
	speedIdx int
	setIdx   int
}

// Next returns the next combination, or false once the space is exhausted.
// Calling Next after exhaustion keeps returning false.
func (it *Iterator) Next() (Combination, bool) {
	s := it.space
	if it.speedIdx >= s.Speeds() {
		return Combination{}, false
	}

	c := Combination{
		Speed: uint16(int(s.min) + it.speedIdx*int(s.step)),
		Mods:  s.sets[it.setIdx],
	}

	it.setIdx++
	if it.setIdx == len(s.sets) {
		it.setIdx = 0
		it.speedIdx++
	}
	return c, true
}

// Reset restarts the iterator from the first combination.
func (it *Iterator) Reset() {
	it.speedIdx = 0
	it.setIdx = 0
}
