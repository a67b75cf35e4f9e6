package panel

import (
	"math"
	"time"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

type key struct {
	dir   pins.Direction
	input *button.Input
}

// Controller tracks the setpoint and turns key presses into events.
// Not safe for concurrent use.
type Controller struct {
	keys     []key
	limits   Limits
	setpoint int8

	temperature    float64
	hasTemperature bool

	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewController creates a controller over the given key inputs. Keys are
// processed in pins.Directions order; directions without an input are
// ignored. The initial setpoint is clamped to limits.
func NewController(inputs map[pins.Direction]*button.Input, setpoint int8, limits Limits, startTime time.Time) *Controller {
	c := &Controller{
		limits:        limits,
		setpoint:      limits.Clamp(setpoint),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
	for _, d := range pins.Directions {
		if in, ok := inputs[d]; ok && in != nil {
			c.keys = append(c.keys, key{dir: d, input: in})
		}
	}
	return c
}

// Process polls every key once and returns the resulting events.
func (c *Controller) Process(now time.Time) []Event {
	var events []Event
	for _, k := range c.keys {
		if !k.input.WasActivated() {
			continue
		}
		events = append(events, c.apply(k.dir, now))
	}
	return events
}

func (c *Controller) apply(d pins.Direction, now time.Time) Event {
	old := c.setpoint
	switch d {
	case pins.Up:
		if c.setpoint < c.limits.Max {
			c.setpoint++
		}
		c.eventCounts.Up++
	case pins.Down:
		if c.setpoint > c.limits.Min {
			c.setpoint--
		}
		c.eventCounts.Down++
	case pins.Left:
		c.eventCounts.Left++
	case pins.Right:
		c.eventCounts.Right++
	case pins.Click:
		c.eventCounts.Click++
	}
	return Event{
		Timestamp: now,
		Type:      eventForKey[d],
		Key:       d,
		Setpoint:  c.setpoint,
		Changed:   c.setpoint != old,
	}
}

// Refresh re-arms every key whose stable level is pressed, so a key that is
// held through a display refresh activates again on the next Process.
// Returns the number of keys re-armed.
func (c *Controller) Refresh() int {
	n := 0
	for _, k := range c.keys {
		if k.input.StableLevel() == k.input.PressedLevel() {
			k.input.Reset()
			n++
		}
	}
	return n
}

// Setpoint returns the current setpoint.
func (c *Controller) Setpoint() int8 {
	return c.setpoint
}

// SetTemperature records the latest room temperature. NaN and infinite
// values are ignored so the last good reading stays on the display.
func (c *Controller) SetTemperature(t float64) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return
	}
	c.temperature = t
	c.hasTemperature = true
}

// Temperature returns the latest room temperature, if one has been received.
func (c *Controller) Temperature() (float64, bool) {
	return c.temperature, c.hasTemperature
}

// Pressed returns which keys are currently held, by stable level.
func (c *Controller) Pressed() map[pins.Direction]bool {
	out := make(map[pins.Direction]bool, len(c.keys))
	for _, k := range c.keys {
		out[k.dir] = k.input.StableLevel() == k.input.PressedLevel()
	}
	return out
}

// EventCountsSnapshot returns a copy of the per-key activation counts.
func (c *Controller) EventCountsSnapshot() EventCounts {
	return c.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Setpoint:  c.setpoint,
		Counts:    c.eventCounts,
	}
}
