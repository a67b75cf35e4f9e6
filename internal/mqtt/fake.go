package mqtt

import (
	"github.com/sweeney/thermostat-panel/internal/panel"
)

// FakePublisher records what the panel publishes and lets tests inject
// temperature messages as if they came from the broker.
type FakePublisher struct {
	// Events and Payloads hold published key events and their JSON.
	Events   []panel.Event
	Payloads [][]byte

	// SystemEvents and SystemPayloads hold lifecycle events and their JSON.
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError and PublishSystemError, if set, are returned without
	// recording anything.
	PublishError       error
	PublishSystemError error

	// OnTemperature receives readings passed to Deliver.
	OnTemperature func(float64)

	Closed    bool
	Connected bool
}

// NewFakePublisher creates a FakePublisher that reports itself connected.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// Publish records the panel event.
func (f *FakePublisher) Publish(event panel.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Deliver feeds payload through the temperature subscription path.
// Unparseable payloads are returned as errors and not delivered.
func (f *FakePublisher) Deliver(payload []byte) error {
	t, err := ParseTemperature(payload)
	if err != nil {
		return err
	}
	if f.OnTemperature != nil {
		f.OnTemperature(t)
	}
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events and injected errors.
func (f *FakePublisher) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Closed = false
}
