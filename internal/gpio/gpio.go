// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/thermostat-panel/internal/button"

// Reader samples input lines by offset.
type Reader interface {
	button.LevelReader

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the gpiochip the joystick lines are requested from.
const DefaultChip = "gpiochip0"
