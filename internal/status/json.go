package status

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/thermostat-panel/internal/pins"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Setpoint      int               `json:"setpoint"`
	Temperature   *float64          `json:"temperature"`
	Keys          map[string]string `json:"keys"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Counts        CountsJSON        `json:"event_counts"`
	Network       *NetworkJSON      `json:"network,omitempty"`
	Config        ConfigJSON        `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Up    int `json:"up"`
	Down  int `json:"down"`
	Left  int `json:"left"`
	Right int `json:"right"`
	Click int `json:"click"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs         int64  `json:"poll_ms"`
	DebounceMs     int64  `json:"debounce_ms"`
	LegacyDebounce bool   `json:"legacy_debounce"`
	RefreshMs      int64  `json:"refresh_ms"`
	UploadMs       int64  `json:"upload_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
	LCDPort        string `json:"lcd_port,omitempty"`
	UploadPort     string `json:"upload_port,omitempty"`
}

// KeyState returns "PRESSED", "RELEASED", or "UNKNOWN" for a key not yet seen.
func KeyState(snap Snapshot, d pins.Direction) string {
	on, ok := snap.Pressed[d]
	if !ok {
		return "UNKNOWN"
	}
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}

func buildInner(snap Snapshot) StatusInner {
	keys := make(map[string]string, len(pins.Directions))
	for _, d := range pins.Directions {
		keys[string(d)] = KeyState(snap, d)
	}

	inner := StatusInner{
		Setpoint:      int(snap.Setpoint),
		Keys:          keys,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Up:    snap.Counts.Up,
			Down:  snap.Counts.Down,
			Left:  snap.Counts.Left,
			Right: snap.Counts.Right,
			Click: snap.Counts.Click,
		},
		Config: ConfigJSON{
			PollMs:         snap.Config.PollMs,
			DebounceMs:     snap.Config.DebounceMs,
			LegacyDebounce: snap.Config.LegacyDebounce,
			RefreshMs:      snap.Config.RefreshMs,
			UploadMs:       snap.Config.UploadMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			LCDPort:        snap.Config.LCDPort,
			UploadPort:     snap.Config.UploadPort,
		},
	}
	if snap.HasTemperature && !math.IsNaN(snap.Temperature) && !math.IsInf(snap.Temperature, 0) {
		temp := snap.Temperature
		inner.Temperature = &temp
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
