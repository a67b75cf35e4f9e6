// Package upload formats thermostat readings as the newline-terminated JSON
// lines exchanged with the PC over the serial link, and parses them back.
package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Reading is a temperature split into integral and ten-thousandths parts,
// plus the current setpoint.
//
// The integral part carries the sign, so temperatures in (-1, 0) format
// without one.
type Reading struct {
	Integral   int8
	Fractional uint16 // 0..9999
	Setpoint   int8
}

// ErrNotFinite is returned by FromCelsius for NaN and infinite temperatures.
var ErrNotFinite = errors.New("temperature is not a finite number")

// FromCelsius splits t into a Reading. Values outside the int8 range are
// clamped.
func FromCelsius(t float64, setpoint int8) (Reading, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return Reading{}, fmt.Errorf("%w: %v", ErrNotFinite, t)
	}
	if t > math.MaxInt8 {
		t = math.MaxInt8
	}
	if t < math.MinInt8 {
		t = math.MinInt8
	}
	whole, frac := math.Modf(t)
	f := math.Round(math.Abs(frac) * 10000)
	if f >= 10000 {
		f = 0
		if t < 0 {
			whole--
		} else {
			whole++
		}
	}
	if whole > math.MaxInt8 {
		whole, f = math.MaxInt8, 0
	}
	if whole < math.MinInt8 {
		whole, f = math.MinInt8, 0
	}
	return Reading{
		Integral:   int8(whole),
		Fractional: uint16(f),
		Setpoint:   setpoint,
	}, nil
}

// Celsius returns the temperature as a float.
func (r Reading) Celsius() float64 {
	frac := float64(r.Fractional) / 10000
	if r.Integral < 0 {
		return float64(r.Integral) - frac
	}
	return float64(r.Integral) + frac
}

// FormatLine returns r as a JSON line, e.g.
//
//	{"temperature": -12.0625, "setpoint": 18}\n
func FormatLine(r Reading) []byte {
	return []byte(fmt.Sprintf("{\"temperature\": %d.%04d, \"setpoint\": %d}\n",
		r.Integral, r.Fractional, r.Setpoint))
}

// Drainer is implemented by writers that can block until buffered output has
// been transmitted, such as serial ports.
type Drainer interface {
	Drain() error
}

// Uploader writes reading lines to a serial link.
type Uploader struct {
	w io.Writer
}

// NewUploader creates an Uploader writing to w.
func NewUploader(w io.Writer) *Uploader {
	return &Uploader{w: w}
}

// Upload writes one line and waits for it to leave the port.
func (u *Uploader) Upload(r Reading) error {
	if _, err := u.w.Write(FormatLine(r)); err != nil {
		return fmt.Errorf("write reading: %w", err)
	}
	if d, ok := u.w.(Drainer); ok {
		if err := d.Drain(); err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	}
	return nil
}

// ErrBadFrame is returned for data that is not a complete reading line.
var ErrBadFrame = errors.New("bad frame")

// Frame is a decoded reading line.
type Frame struct {
	Temperature float64 `json:"temperature"`
	Setpoint    int     `json:"setpoint"`
}

// ParseFrame decodes one reading line. The data must start with '{' and end
// with "}\n"; anything else is a partial or merged read.
func ParseFrame(data []byte) (Frame, error) {
	if !bytes.HasPrefix(data, []byte("{")) || !bytes.HasSuffix(data, []byte("}\n")) {
		return Frame{}, fmt.Errorf("%w: %q", ErrBadFrame, data)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	return f, nil
}
