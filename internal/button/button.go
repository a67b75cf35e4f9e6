// Package button debounces polled digital inputs.
// This package has NO external dependencies (no GPIO, OS, or time.Sleep).
// Hardware level and time are always injected through LevelReader and Clock.
package button

import "time"

// DefaultWindow is the settle time a raw level must hold before it is
// accepted as the stable level.
const DefaultWindow = 5 * time.Millisecond

// Level is a raw logic level on an input line.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// String returns "HIGH" or "LOW".
func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Invert returns the opposite level.
func (l Level) Invert() Level {
	if l == High {
		return Low
	}
	return High
}

// LevelReader samples the instantaneous level of a pin.
// Implementations handle their own faults; a read always yields a level.
type LevelReader interface {
	ReadLevel(pin int) Level
}

// Clock is a monotonic millisecond counter since an arbitrary epoch.
// It wraps on overflow.
type Clock interface {
	Millis() uint32
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() uint32

// Millis calls f.
func (f ClockFunc) Millis() uint32 { return f() }

// Input is a debounced digital input bound to one pin.
// Not safe for concurrent use; poll it from a single loop.
type Input struct {
	pin     int
	pressed Level
	reader  LevelReader
	clock   Clock

	windowMs uint32
	legacy   bool

	rawPrev    Level
	stable     Level
	lastChange uint32
}

// Option configures an Input.
type Option func(*Input)

// WithWindow sets the debounce window. Sub-millisecond precision is dropped.
func WithWindow(d time.Duration) Option {
	return func(in *Input) {
		in.windowMs = uint32(d / time.Millisecond)
	}
}

// WithLegacyTiming measures the window against a change timestamp that is
// forgotten at the start of every poll, as the AVR firmware does.
// A new level is then accepted on the first poll after the change that sees
// an unchanged raw level, as long as the clock has passed the window.
func WithLegacyTiming() Option {
	return func(in *Input) {
		in.legacy = true
	}
}

// New creates an Input on pin that reports activation when the stable level
// becomes pressed. Raw and stable levels start Low.
func New(pin int, pressed Level, reader LevelReader, clock Clock, opts ...Option) *Input {
	in := &Input{
		pin:      pin,
		pressed:  pressed,
		reader:   reader,
		clock:    clock,
		windowMs: uint32(DefaultWindow / time.Millisecond),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Poll samples the pin once and updates the debounced state.
func (in *Input) Poll() {
	raw := in.reader.ReadLevel(in.pin)
	now := in.clock.Millis()

	if in.legacy {
		in.lastChange = 0
	}
	if raw != in.rawPrev {
		in.lastChange = now
	}

	// Unsigned subtraction survives a single counter wrap.
	if now-in.lastChange > in.windowMs {
		in.stable = raw
	}
	in.rawPrev = raw
}

// State polls and returns the stable level.
func (in *Input) State() Level {
	in.Poll()
	return in.stable
}

// WasActivated polls and reports whether the stable level moved into the
// pressed level during this call.
func (in *Input) WasActivated() bool {
	old := in.stable
	in.Poll()
	return old != in.pressed && in.stable == in.pressed
}

// IsPressed polls and reports whether the stable level is the pressed level.
func (in *Input) IsPressed() bool {
	return in.State() == in.pressed
}

// Reset inverts the stable level without sampling the pin. It re-arms
// WasActivated for a key that is still held: the next poll that accepts the
// physical level reports a fresh activation.
func (in *Input) Reset() {
	in.stable = in.stable.Invert()
}

// Pin returns the pin the input is bound to.
func (in *Input) Pin() int { return in.pin }

// PressedLevel returns the level that counts as pressed.
func (in *Input) PressedLevel() Level { return in.pressed }

// RawLevel returns the level seen by the most recent poll.
func (in *Input) RawLevel() Level { return in.rawPrev }

// StableLevel returns the stable level without polling.
func (in *Input) StableLevel() Level { return in.stable }
