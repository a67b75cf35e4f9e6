//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/thermostat-panel/internal/button"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
	last  map[int]button.Level
}

// NewRealReader requests each offset on chip as an input.
// With pullUp the lines are biased high, as the shield joystick switches to
// ground; otherwise they are pulled down to match Pi boot defaults.
func NewRealReader(chipName string, offsets []int, pullUp bool) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	var bias gpiocdev.LineReqOption = gpiocdev.WithPullDown
	if pullUp {
		bias = gpiocdev.WithPullUp
	}

	r := &RealReader{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line, len(offsets)),
		last:  make(map[int]button.Level, len(offsets)),
	}
	for _, off := range offsets {
		if _, ok := r.lines[off]; ok {
			continue
		}
		line, err := chip.RequestLine(off, gpiocdev.AsInput, bias)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request line %d: %w", off, err)
		}
		r.lines[off] = line
	}
	return r, nil
}

// ReadLevel returns the raw level of the line at offset pin.
// A failed read is logged and the last good level is returned.
func (r *RealReader) ReadLevel(pin int) button.Level {
	line, ok := r.lines[pin]
	if !ok {
		log.Printf("gpio: read of unrequested line %d", pin)
		return button.Low
	}
	v, err := line.Value()
	if err != nil {
		log.Printf("gpio: read line %d: %v", pin, err)
		return r.last[pin]
	}
	level := button.Low
	if v != 0 {
		level = button.High
	}
	r.last[pin] = level
	return level
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	for off, line := range r.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", off, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", off, err))
		}
	}
	r.lines = nil
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
