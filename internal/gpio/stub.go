//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/thermostat-panel/internal/button"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, offsets []int, pullUp bool) (*RealReader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadLevel always reads Low on non-Linux platforms.
func (r *RealReader) ReadLevel(pin int) button.Level {
	return button.Low
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
