// Package config loads the panel daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/gpio"
	"github.com/sweeney/thermostat-panel/internal/mqtt"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

// Off disables the LCD or the HTTP server when used as lcd.port or
// http.addr. An empty value means "use the default".
const Off = "off"

// Config represents the daemon configuration.
type Config struct {
	GPIO     GPIOConfig     `yaml:"gpio"`
	Debounce DebounceConfig `yaml:"debounce"`
	Poll     time.Duration  `yaml:"poll"`
	Refresh  time.Duration  `yaml:"refresh"`
	LCD      LCDConfig      `yaml:"lcd"`
	Upload   UploadConfig   `yaml:"upload"`
	Setpoint SetpointConfig `yaml:"setpoint"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// GPIOConfig contains the joystick line configuration.
type GPIOConfig struct {
	Chip    string      `yaml:"chip"`
	Lines   LinesConfig `yaml:"lines"`
	PullUp  bool        `yaml:"pull_up"`
	Pressed string      `yaml:"pressed"` // "low" or "high"
}

// LinesConfig holds the line offset of each joystick direction.
type LinesConfig struct {
	Up    int `yaml:"up"`
	Right int `yaml:"right"`
	Down  int `yaml:"down"`
	Click int `yaml:"click"`
	Left  int `yaml:"left"`
}

// DebounceConfig contains key debounce parameters.
type DebounceConfig struct {
	Window time.Duration `yaml:"window"`
	Legacy bool          `yaml:"legacy"` // forget the change time on every poll
}

// LCDConfig contains the serial LCD port settings. Port "off" disables the
// display.
type LCDConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// UploadConfig contains the JSON line uploader settings. An empty port
// disables uploads. Readings are sent whenever the PC writes "read"; a
// non-zero interval also pushes one on every tick.
type UploadConfig struct {
	Port     string        `yaml:"port"`
	Baud     int           `yaml:"baud"`
	Interval time.Duration `yaml:"interval"`
}

// SetpointConfig contains the initial setpoint and its limits, in whole °C.
type SetpointConfig struct {
	Initial int8 `yaml:"initial"`
	Min     int8 `yaml:"min"`
	Max     int8 `yaml:"max"`
}

// MQTTConfig contains broker settings.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	Buffer    int           `yaml:"buffer"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration for the reference panel.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip: gpio.DefaultChip,
			Lines: LinesConfig{
				Up:    hostLine(pins.Up),
				Right: hostLine(pins.Right),
				Down:  hostLine(pins.Down),
				Click: hostLine(pins.Click),
				Left:  hostLine(pins.Left),
			},
			PullUp:  true,
			Pressed: "low",
		},
		Debounce: DebounceConfig{
			Window: button.DefaultWindow,
		},
		Poll:    10 * time.Millisecond,
		Refresh: 250 * time.Millisecond,
		LCD: LCDConfig{
			Port: "/dev/ttyAMA0",
			Baud: 9600,
		},
		Upload: UploadConfig{
			Baud: 9600,
		},
		Setpoint: SetpointConfig{
			Initial: 20,
			Min:     5,
			Max:     30,
		},
		MQTT: MQTTConfig{
			Broker:    "tcp://192.168.1.200:1883",
			ClientID:  "thermostat-panel",
			Heartbeat: 15 * time.Minute,
			Buffer:    mqtt.DefaultBufferSize,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

func hostLine(d pins.Direction) int {
	off, _ := pins.HostLine(d)
	return off
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; missing fields are filled from them.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports settings that cannot be run.
func (c *Config) Validate() error {
	if _, err := c.PressedLevel(); err != nil {
		return err
	}
	if c.Upload.Interval < 0 {
		return fmt.Errorf("negative upload interval %v", c.Upload.Interval)
	}
	if c.Setpoint.Min > c.Setpoint.Max {
		return fmt.Errorf("setpoint min %d above max %d", c.Setpoint.Min, c.Setpoint.Max)
	}
	lines := c.Lines()
	seen := make(map[int]pins.Direction)
	for _, d := range pins.Directions {
		off := lines[d]
		if other, dup := seen[off]; dup {
			return fmt.Errorf("gpio line %d used by both %s and %s", off, other, d)
		}
		seen[off] = d
	}
	return nil
}

// LCDPort returns the display port, or "" when the display is off.
func (c *Config) LCDPort() string {
	if strings.EqualFold(c.LCD.Port, Off) {
		return ""
	}
	return c.LCD.Port
}

// HTTPAddr returns the status server address, or "" when the server is off.
func (c *Config) HTTPAddr() string {
	if strings.EqualFold(c.HTTP.Addr, Off) {
		return ""
	}
	return c.HTTP.Addr
}

// Lines returns the configured line offset per joystick direction.
func (c *Config) Lines() map[pins.Direction]int {
	return map[pins.Direction]int{
		pins.Up:    c.GPIO.Lines.Up,
		pins.Right: c.GPIO.Lines.Right,
		pins.Down:  c.GPIO.Lines.Down,
		pins.Click: c.GPIO.Lines.Click,
		pins.Left:  c.GPIO.Lines.Left,
	}
}

// PressedLevel parses the level a key reads while pressed.
func (c *Config) PressedLevel() (button.Level, error) {
	switch strings.ToLower(c.GPIO.Pressed) {
	case "low":
		return button.Low, nil
	case "high":
		return button.High, nil
	}
	return button.Low, fmt.Errorf("invalid pressed level %q (want low or high)", c.GPIO.Pressed)
}

func (c *Config) ensureDefaults() {
	def := Default()

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.GPIO.Lines == (LinesConfig{}) {
		c.GPIO.Lines = def.GPIO.Lines
	}
	if c.GPIO.Pressed == "" {
		c.GPIO.Pressed = def.GPIO.Pressed
	}

	if c.Debounce.Window == 0 {
		c.Debounce.Window = def.Debounce.Window
	}
	if c.Poll == 0 {
		c.Poll = def.Poll
	}
	if c.Refresh == 0 {
		c.Refresh = def.Refresh
	}

	if c.LCD.Port == "" {
		c.LCD.Port = def.LCD.Port
	}
	if c.LCD.Baud == 0 {
		c.LCD.Baud = def.LCD.Baud
	}

	if c.Upload.Baud == 0 {
		c.Upload.Baud = def.Upload.Baud
	}

	if c.Setpoint.Min == 0 && c.Setpoint.Max == 0 {
		c.Setpoint.Min = def.Setpoint.Min
		c.Setpoint.Max = def.Setpoint.Max
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Buffer == 0 {
		c.MQTT.Buffer = def.MQTT.Buffer
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
}
