package lcd

import "go.bug.st/serial"

// FakePort records bytes and mode changes for test assertions.
type FakePort struct {
	// Written contains every byte written, in order.
	Written []byte

	// Bauds contains the baud rate of every SetMode call.
	Bauds []int

	// WriteError, if set, will be returned by Write.
	WriteError error

	// ModeError, if set, will be returned by SetMode.
	ModeError error
}

// Write records p.
func (f *FakePort) Write(p []byte) (int, error) {
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	f.Written = append(f.Written, p...)
	return len(p), nil
}

// SetMode records the requested baud rate.
func (f *FakePort) SetMode(mode *serial.Mode) error {
	if f.ModeError != nil {
		return f.ModeError
	}
	f.Bauds = append(f.Bauds, mode.BaudRate)
	return nil
}

// Reset clears recorded bytes and mode changes.
func (f *FakePort) Reset() {
	f.Written = nil
	f.Bauds = nil
}
