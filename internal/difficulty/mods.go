package difficulty

import "github.com/vovakirdan/beatrate/internal/combo"

// Effect scales the local metrics of a variant.
type Effect struct {
	Aim     float64
	Density float64
}

var neutral = Effect{Aim: 1, Density: 1}

// effects lists the recognised modifiers. Modifiers missing from it score
// as neutral.
var effects = map[string]Effect{
	"EZ": {Aim: 0.85, Density: 0.95},
	"HR": {Aim: 1.12, Density: 1},
	"HD": {Aim: 1.05, Density: 1},
	"FL": {Aim: 1.2, Density: 1.02},
	"FI": {Aim: 1, Density: 1.03},
	"NF": neutral,
	"MR": neutral,
	"SD": neutral,
	"PF": neutral,
}

// EffectOf multiplies the effects of every modifier in m.
func EffectOf(m combo.Mods) Effect {
	e := neutral
	for _, name := range m {
		if fx, ok := effects[name]; ok {
			e.Aim *= fx.Aim
			e.Density *= fx.Density
		}
	}
	return e
}

// Known reports whether a modifier is recognised.
func Known(name string) bool {
	_, ok := effects[name]
	return ok
}
