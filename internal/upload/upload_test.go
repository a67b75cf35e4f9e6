package upload

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		r    Reading
		want string
	}{
		{Reading{21, 5000, 20}, "{\"temperature\": 21.5000, \"setpoint\": 20}\n"},
		{Reading{-12, 625, 18}, "{\"temperature\": -12.0625, \"setpoint\": 18}\n"},
		{Reading{0, 0, 0}, "{\"temperature\": 0.0000, \"setpoint\": 0}\n"},
		{Reading{-123, 4567, -123}, "{\"temperature\": -123.4567, \"setpoint\": -123}\n"},
		{Reading{127, 9999, 127}, "{\"temperature\": 127.9999, \"setpoint\": 127}\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(FormatLine(tt.r)))
	}
}

func TestFormatLineFitsFirmwareBuffer(t *testing.T) {
	// The firmware formats into a 48 byte buffer including the terminator.
	line := FormatLine(Reading{-128, 9999, -128})
	assert.Less(t, len(line), 48)
}

func TestFromCelsius(t *testing.T) {
	tests := []struct {
		in   float64
		want Reading
	}{
		{21.5, Reading{21, 5000, 19}},
		{-12.0625, Reading{-12, 625, 19}},
		{0, Reading{0, 0, 19}},
		{19.99999, Reading{20, 0, 19}},
		{-3.99999, Reading{-4, 0, 19}},
		{500, Reading{127, 0, 19}},
		{-500, Reading{-128, 0, 19}},
	}

	for _, tt := range tests {
		got, err := FromCelsius(tt.in, 19)
		require.NoError(t, err, "FromCelsius(%v)", tt.in)
		assert.Equal(t, tt.want, got, "FromCelsius(%v)", tt.in)
	}
}

func TestFromCelsiusRejectsNonFinite(t *testing.T) {
	for _, in := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromCelsius(in, 19)
		assert.ErrorIs(t, err, ErrNotFinite, "FromCelsius(%v)", in)
	}
}

func TestCelsius(t *testing.T) {
	assert.InDelta(t, 21.5, Reading{Integral: 21, Fractional: 5000}.Celsius(), 1e-9)
	assert.InDelta(t, -12.0625, Reading{Integral: -12, Fractional: 625}.Celsius(), 1e-9)
}

func TestFormatThenParse(t *testing.T) {
	r, err := FromCelsius(-7.25, -2)
	require.NoError(t, err)
	f, err := ParseFrame(FormatLine(r))
	require.NoError(t, err)
	assert.InDelta(t, -7.25, f.Temperature, 1e-9)
	assert.Equal(t, -2, f.Setpoint)
}

func TestParseFrameRejectsPartial(t *testing.T) {
	bad := []string{
		"",
		"{\"temperature\": 1.0000, \"setpoint\": 2}",
		"\"temperature\": 1.0000, \"setpoint\": 2}\n",
		"ing\": 2}\n{\"temperature\": 1.0000, \"setpoint\": 2}\n",
		"{not json}\n",
	}
	for _, in := range bad {
		_, err := ParseFrame([]byte(in))
		assert.ErrorIs(t, err, ErrBadFrame, "input %q", in)
	}
}

type drainBuffer struct {
	bytes.Buffer
	drains   int
	drainErr error
}

func (d *drainBuffer) Drain() error {
	d.drains++
	return d.drainErr
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestUploaderWritesAndDrains(t *testing.T) {
	var buf drainBuffer
	u := NewUploader(&buf)

	require.NoError(t, u.Upload(Reading{20, 1250, 21}))
	assert.Equal(t, "{\"temperature\": 20.1250, \"setpoint\": 21}\n", buf.String())
	assert.Equal(t, 1, buf.drains)
}

func TestUploaderPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	u := NewUploader(&buf)

	require.NoError(t, u.Upload(Reading{1, 0, 2}))
	assert.Equal(t, "{\"temperature\": 1.0000, \"setpoint\": 2}\n", buf.String())
}

func TestUploaderErrors(t *testing.T) {
	werr := errors.New("port gone")
	err := NewUploader(failWriter{werr}).Upload(Reading{})
	assert.ErrorIs(t, err, werr)

	derr := errors.New("drain failed")
	buf := &drainBuffer{drainErr: derr}
	err = NewUploader(buf).Upload(Reading{})
	assert.ErrorIs(t, err, derr)
}
