// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sweeney/thermostat-panel/internal/panel"
)

// Topic is the MQTT topic for panel key events.
const Topic = "thermostat/panel/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "thermostat/panel/system"

// TopicTemperature is the MQTT topic the room temperature arrives on.
const TopicTemperature = "thermostat/temperature"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a panel event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event panel.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Panel PanelPayload `json:"panel"`
}

// PanelPayload contains the key event details.
type PanelPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Key       string `json:"key"`
	Setpoint  int    `json:"setpoint"`
	Changed   bool   `json:"changed"`
}

// FormatPayload creates the JSON payload for a panel event.
func FormatPayload(event panel.Event) ([]byte, error) {
	payload := Payload{
		Panel: PanelPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Key:       string(event.Key),
			Setpoint:  int(event.Setpoint),
			Changed:   event.Changed,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// ErrBadTemperature is returned for temperature messages that cannot be read.
var ErrBadTemperature = errors.New("bad temperature payload")

// ParseTemperature reads a temperature message. The payload is either a bare
// number ("21.5") or a reading frame ({"temperature": 21.5, ...}).
// NaN and infinities are rejected.
func ParseTemperature(payload []byte) (float64, error) {
	t, err := parseTemperature(payload)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: not a finite number: %q", ErrBadTemperature, bytes.TrimSpace(payload))
	}
	return t, nil
}

func parseTemperature(payload []byte) (float64, error) {
	p := bytes.TrimSpace(payload)
	if len(p) == 0 {
		return 0, ErrBadTemperature
	}
	if p[0] == '{' {
		var frame struct {
			Temperature *float64 `json:"temperature"`
		}
		if err := json.Unmarshal(p, &frame); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadTemperature, err)
		}
		if frame.Temperature == nil {
			return 0, fmt.Errorf("%w: no temperature field", ErrBadTemperature)
		}
		return *frame.Temperature, nil
	}
	t, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadTemperature, err)
	}
	return t, nil
}
