package timing

import "math"

// EventKind identifies a playback event emitted by Advance.
type EventKind int

const (
	EventKiaiChanged EventKind = iota
	EventBeat
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventKiaiChanged:
		return "KiaiChanged"
	case EventBeat:
		return "Beat"
	default:
		return "Unknown"
	}
}

// Event is something that happened while advancing the cursor.
type Event struct {
	Kind        EventKind
	Kiai        bool    // set for EventKiaiChanged
	PulseLength float32 // set for EventBeat
}

// MaxBeatEvents caps the beat events a single Advance returns. Beats
// crossed beyond the cap are skipped; the beat grid still moves past them.
const MaxBeatEvents = 4096

// Advance moves the playback cursor to t and returns the events crossed on
// the way. Calls must use non-decreasing times. Beats of a control point
// that t moves past are emitted before the next control point takes over.
func (c *Curve) Advance(t float32) []Event {
	var events []Event

	for c.pointIdx+1 < len(c.points) && c.points[c.pointIdx+1].Time <= t {
		p := c.points[c.pointIdx+1]
		if p.Uninherited() {
			events = c.beats(events, p.Time, false)
		}
		c.pointIdx++
		if p.Uninherited() {
			c.controlIdx = c.pointIdx
			c.beatIdx = 0
			c.nextBeat = p.Time
		}
		if p.Kiai != c.kiai {
			c.kiai = p.Kiai
			events = append(events, Event{Kind: EventKiaiChanged, Kiai: p.Kiai})
		}
	}

	return c.beats(events, t, true)
}

// beats appends the active control point's beats up to limit. Beat times
// are computed from the control point time so tiny pulses cannot stall the
// grid on float32 rounding.
func (c *Curve) beats(events []Event, limit float32, inclusive bool) []Event {
	pulse := c.pulseLength()
	if pulse <= 0 {
		return events
	}
	base := float64(c.points[c.controlIdx].Time)
	step := float64(pulse)
	end := float64(limit)

	last := int64(math.Floor((end - base) / step))
	if inclusive && base+float64(last+1)*step <= end {
		last++
	}
	for last >= c.beatIdx && (base+float64(last)*step > end || (!inclusive && base+float64(last)*step >= end)) {
		last--
	}
	crossed := last - c.beatIdx + 1
	if crossed <= 0 {
		return events
	}

	for range min(crossed, MaxBeatEvents) {
		events = append(events, Event{Kind: EventBeat, PulseLength: pulse})
	}
	c.beatIdx = last + 1
	c.nextBeat = float32(base + float64(c.beatIdx)*step)
	return events
}

// Kiai reports whether the cursor is inside a kiai section.
func (c *Curve) Kiai() bool {
	return c.kiai
}

// NextBeatTime returns when the next beat event fires.
func (c *Curve) NextBeatTime() float32 {
	return c.nextBeat
}

// ActiveControlPoint returns the control point under the cursor.
func (c *Curve) ActiveControlPoint() TimingPoint {
	return c.points[c.controlIdx]
}

// pulseLength is half a measure of the active control point.
func (c *Curve) pulseLength() float32 {
	cp := c.points[c.controlIdx]
	return cp.BeatLength * float32(cp.Meter) / 2
}
