package button

// FakeReader is a test double that returns levels set by the test.
type FakeReader struct {
	// Levels holds the current level per pin. Missing pins read Low.
	Levels map[int]Level

	// Reads counts ReadLevel calls.
	Reads int
}

// NewFakeReader creates a FakeReader with every pin Low.
func NewFakeReader() *FakeReader {
	return &FakeReader{Levels: make(map[int]Level)}
}

// Set sets the level returned for pin.
func (f *FakeReader) Set(pin int, level Level) {
	f.Levels[pin] = level
}

// ReadLevel returns the level set for pin.
func (f *FakeReader) ReadLevel(pin int) Level {
	f.Reads++
	return f.Levels[pin]
}

// FakeClock is a manually advanced millisecond clock.
type FakeClock struct {
	Now uint32

	// Reads counts Millis calls.
	Reads int
}

// Millis returns the current fake time.
func (c *FakeClock) Millis() uint32 {
	c.Reads++
	return c.Now
}

// Advance moves the clock forward by ms.
func (c *FakeClock) Advance(ms uint32) {
	c.Now += ms
}
