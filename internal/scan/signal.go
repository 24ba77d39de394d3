package scan

import (
	"os"
	"sync/atomic"
)

// Signal reports whether the user is currently playing a chart.
type Signal interface {
	Active() bool
}

// Flag is a Signal toggled in-process, e.g. by the live view.
type Flag struct {
	active atomic.Bool
}

// Active implements Signal.
func (f *Flag) Active() bool {
	return f.active.Load()
}

// Set sets the gameplay state.
func (f *Flag) Set(active bool) {
	f.active.Store(active)
}

// Toggle flips the gameplay state and returns the new value.
func (f *Flag) Toggle() bool {
	for {
		old := f.active.Load()
		if f.active.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// LockFile reports gameplay as active while the file exists. A game client
// creates the file when a chart starts and removes it when play ends.
type LockFile string

// Active implements Signal.
func (l LockFile) Active() bool {
	if l == "" {
		return false
	}
	_, err := os.Stat(string(l))
	return err == nil
}

// AnyOf is active when any of its signals is.
type AnyOf []Signal

// Active implements Signal.
func (a AnyOf) Active() bool {
	for _, s := range a {
		if s != nil && s.Active() {
			return true
		}
	}
	return false
}

type never struct{}

func (never) Active() bool { return false }
