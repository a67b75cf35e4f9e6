// Package status provides a thread-safe status tracker for the thermostat panel daemon.
// It is read by the HTTP handlers and by the system events published over MQTT.
package status

import (
	"math"
	"sync"
	"time"

	"github.com/sweeney/thermostat-panel/internal/panel"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs         int64
	DebounceMs     int64
	LegacyDebounce bool
	RefreshMs      int64
	UploadMs       int64
	HeartbeatMs    int64
	Broker         string
	HTTPAddr       string
	LCDPort        string // empty = display disabled
	UploadPort     string // empty = serial upload disabled
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Setpoint       int8
	Temperature    float64
	HasTemperature bool
	Pressed        map[pins.Direction]bool
	Counts         panel.EventCounts
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Network        *NetworkInfo
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the setpoint, held keys and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(setpoint int8, pressed map[pins.Direction]bool, counts panel.EventCounts) {
	cp := make(map[pins.Direction]bool, len(pressed))
	for d, on := range pressed {
		cp[d] = on
	}
	t.mu.Lock()
	t.snap.Setpoint = setpoint
	t.snap.Pressed = cp
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetTemperature records the latest room temperature. NaN and infinite
// values are ignored.
func (t *Tracker) SetTemperature(c float64) {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return
	}
	t.mu.Lock()
	t.snap.Temperature = c
	t.snap.HasTemperature = true
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
