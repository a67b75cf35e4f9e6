package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "gpiochip0", cfg.GPIO.Chip)
	assert.Equal(t, 5, cfg.GPIO.Lines.Up)
	assert.Equal(t, 26, cfg.GPIO.Lines.Left)
	assert.True(t, cfg.GPIO.PullUp)
	assert.Equal(t, "low", cfg.GPIO.Pressed)
	assert.Equal(t, 5*time.Millisecond, cfg.Debounce.Window)
	assert.False(t, cfg.Debounce.Legacy)
	assert.Equal(t, 10*time.Millisecond, cfg.Poll)
	assert.Equal(t, 9600, cfg.LCD.Baud)
	assert.Empty(t, cfg.Upload.Port)
	assert.Zero(t, cfg.Upload.Interval)
	assert.Equal(t, int8(20), cfg.Setpoint.Initial)
	assert.Equal(t, int8(5), cfg.Setpoint.Min)
	assert.Equal(t, int8(30), cfg.Setpoint.Max)
	assert.Equal(t, 15*time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, 100, cfg.MQTT.Buffer)
	assert.Equal(t, ":80", cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
gpio:
  chip: gpiochip1
  lines:
    up: 17
    right: 18
    down: 27
    click: 22
    left: 23
  pressed: high
debounce:
  window: 20ms
  legacy: true
poll: 5ms
refresh: 500ms
lcd:
  port: /dev/ttyUSB0
  baud: 19200
upload:
  port: /dev/ttyUSB1
  interval: 10s
setpoint:
  initial: 18
  min: 10
  max: 25
mqtt:
  broker: tcp://broker.local:1883
  client_id: hallway
  heartbeat: 1m
http:
  addr: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpiochip1", cfg.GPIO.Chip)
	assert.Equal(t, LinesConfig{Up: 17, Right: 18, Down: 27, Click: 22, Left: 23}, cfg.GPIO.Lines)
	assert.Equal(t, 20*time.Millisecond, cfg.Debounce.Window)
	assert.True(t, cfg.Debounce.Legacy)
	assert.Equal(t, 5*time.Millisecond, cfg.Poll)
	assert.Equal(t, 500*time.Millisecond, cfg.Refresh)
	assert.Equal(t, "/dev/ttyUSB0", cfg.LCD.Port)
	assert.Equal(t, 19200, cfg.LCD.Baud)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Upload.Port)
	assert.Equal(t, 9600, cfg.Upload.Baud)
	assert.Equal(t, 10*time.Second, cfg.Upload.Interval)
	assert.Equal(t, SetpointConfig{Initial: 18, Min: 10, Max: 25}, cfg.Setpoint)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, "hallway", cfg.MQTT.ClientID)
	assert.Equal(t, time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	level, err := cfg.PressedLevel()
	require.NoError(t, err)
	assert.Equal(t, button.High, level)
}

func TestLoad_PartialYAMLUsesDefaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://10.0.0.5:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "tcp://10.0.0.5:1883", cfg.MQTT.Broker)
	assert.Equal(t, def.GPIO, cfg.GPIO)
	assert.Equal(t, def.Debounce.Window, cfg.Debounce.Window)
	assert.Equal(t, def.LCD, cfg.LCD)
	assert.Equal(t, def.HTTP.Addr, cfg.HTTP.Addr)
}

func TestLoad_LCDOff(t *testing.T) {
	path := writeConfig(t, `
lcd:
  port: "off"
http:
  addr: "OFF"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Off, cfg.LCD.Port)
	assert.Empty(t, cfg.LCDPort())
	assert.Empty(t, cfg.HTTPAddr())
}

func TestLoad_EmptyLCDPortUsesDefault(t *testing.T) {
	path := writeConfig(t, `
lcd:
  port: ""
upload:
  port: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", cfg.LCDPort())
	assert.Empty(t, cfg.Upload.Port)
	assert.Equal(t, ":80", cfg.HTTPAddr())
}

func TestLoad_NegativeUploadInterval(t *testing.T) {
	path := writeConfig(t, "upload:\n  interval: -1s\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "gpio: [not, a, map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidPressedLevel(t *testing.T) {
	path := writeConfig(t, "gpio:\n  pressed: sideways\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "sideways")
}

func TestLoad_SetpointLimitsInverted(t *testing.T) {
	path := writeConfig(t, "setpoint:\n  min: 25\n  max: 10\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_DuplicateLines(t *testing.T) {
	cfg := Default()
	cfg.GPIO.Lines.Left = cfg.GPIO.Lines.Up
	assert.ErrorContains(t, cfg.Validate(), "gpio line 5")
}

func TestLines(t *testing.T) {
	lines := Default().Lines()
	assert.Len(t, lines, len(pins.Directions))
	assert.Equal(t, pins.HostLines(), lines)
}

func TestPressedLevelCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.GPIO.Pressed = "LOW"
	level, err := cfg.PressedLevel()
	require.NoError(t, err)
	assert.Equal(t, button.Low, level)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.MQTT.ClientID = "bedroom"
	cfg.Debounce.Legacy = true
	cfg.Setpoint = SetpointConfig{Initial: 21, Min: 15, Max: 24}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
