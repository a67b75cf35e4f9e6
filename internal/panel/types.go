// Package panel contains the thermostat front-panel logic: joystick keys
// adjust the setpoint and are reported as events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package panel

import (
	"time"

	"github.com/sweeney/thermostat-panel/internal/pins"
)

// EventType identifies which key produced an event.
type EventType string

const (
	EventUp    EventType = "KEY_UP"
	EventDown  EventType = "KEY_DOWN"
	EventLeft  EventType = "KEY_LEFT"
	EventRight EventType = "KEY_RIGHT"
	EventClick EventType = "KEY_CLICK"
)

var eventForKey = map[pins.Direction]EventType{
	pins.Up:    EventUp,
	pins.Down:  EventDown,
	pins.Left:  EventLeft,
	pins.Right: EventRight,
	pins.Click: EventClick,
}

// Event is a key activation to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Key       pins.Direction
	// Setpoint after the key was applied.
	Setpoint int8
	// Changed is false when UP/DOWN hit a limit, and for other keys.
	Changed bool
}

// Limits bounds the setpoint.
type Limits struct {
	Min int8
	Max int8
}

// Clamp returns v limited to [Min, Max].
func (l Limits) Clamp(v int8) int8 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// EventCounts tracks the number of activations per key since startup.
type EventCounts struct {
	Up    int
	Down  int
	Left  int
	Right int
	Click int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Setpoint  int8
	Counts    EventCounts
}
