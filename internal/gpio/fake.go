package gpio

import "github.com/sweeney/thermostat-panel/internal/button"

// Sample is one scripted snapshot of every line, keyed by offset.
// Offsets missing from a sample read Low.
type Sample map[int]button.Level

// FakeReader is a test double that returns scripted GPIO levels.
type FakeReader struct {
	// Samples contains scripted line levels.
	// ReadLevel answers from the current sample; Next moves to the following one.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// Reads counts ReadLevel calls.
	Reads int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// ReadLevel returns the scripted level of pin in the current sample.
func (f *FakeReader) ReadLevel(pin int) button.Level {
	f.Reads++
	if len(f.Samples) == 0 {
		return button.Low
	}
	return f.Samples[f.index][pin]
}

// Next advances to the next sample.
// If samples are exhausted, the last sample is kept.
func (f *FakeReader) Next() {
	if f.index < len(f.Samples)-1 {
		f.index++
	}
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
	f.Reads = 0
}
