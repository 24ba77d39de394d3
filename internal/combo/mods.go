// Package combo enumerates the (speed, modifier set) combinations a chart is
// rated under.
package combo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// noModsName is the signature spelling of the empty modifier set.
const noModsName = "NM"

// Mods is a canonical modifier set: upper-case, de-duplicated and sorted.
// The empty set means no modifiers.
type Mods []string

// NewMods builds a canonical set from modifier names. Blank names and the
// explicit "NM" marker are dropped.
func NewMods(names ...string) Mods {
	seen := make(map[string]bool, len(names))
	mods := make(Mods, 0, len(names))
	for _, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n == "" || n == noModsName || seen[n] {
			continue
		}
		seen[n] = true
		mods = append(mods, n)
	}
	sort.Strings(mods)
	return mods
}

// Has reports whether the set contains the modifier.
func (m Mods) Has(name string) bool {
	name = strings.ToUpper(name)
	i := sort.SearchStrings(m, name)
	return i < len(m) && m[i] == name
}

// Equal reports whether two canonical sets are the same.
func (m Mods) Equal(o Mods) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// String joins the set with "+", or returns "NM" for the empty set.
func (m Mods) String() string {
	if len(m) == 0 {
		return noModsName
	}
	return strings.Join(m, "+")
}

// Combination is one speed and modifier set to rate a chart under.
type Combination struct {
	Speed uint16 // hundredths, 100 = 1.00x
	Mods  Mods
}

// Rate returns the speed as a playback multiplier.
func (c Combination) Rate() float64 {
	return float64(c.Speed) / 100
}

// Signature encodes the combination canonically, e.g. "HD+HR@150".
// Equal combinations always produce equal signatures.
func (c Combination) Signature() string {
	return c.Mods.String() + "@" + strconv.FormatUint(uint64(c.Speed), 10)
}

// String formats the combination for display, e.g. "HD+HR 1.50x".
func (c Combination) String() string {
	return fmt.Sprintf("%s %d.%02dx", c.Mods, c.Speed/100, c.Speed%100)
}

// ParseSignature decodes a signature produced by Signature.
func ParseSignature(sig string) (Combination, error) {
	mods, speed, ok := strings.Cut(sig, "@")
	if !ok {
		return Combination{}, fmt.Errorf("combo: malformed signature %q", sig)
	}
	v, err := strconv.ParseUint(speed, 10, 16)
	if err != nil {
		return Combination{}, fmt.Errorf("combo: malformed speed in signature %q: %w", sig, err)
	}
	return Combination{
		Speed: uint16(v),
		Mods:  NewMods(strings.Split(mods, "+")...),
	}, nil
}
