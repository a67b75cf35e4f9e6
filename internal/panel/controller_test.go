package panel

import (
	"math"
	"testing"
	"time"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

var testLines = map[pins.Direction]int{
	pins.Up:    1,
	pins.Right: 2,
	pins.Down:  3,
	pins.Click: 4,
	pins.Left:  5,
}

type rig struct {
	c      *Controller
	reader *button.FakeReader
	clock  *button.FakeClock
	now    time.Time
}

// newRig builds a controller over active-low keys, all released, with the
// debounce state settled.
func newRig(t *testing.T, setpoint int8, limits Limits) *rig {
	t.Helper()
	reader := button.NewFakeReader()
	clock := &button.FakeClock{Now: 1000}
	inputs := make(map[pins.Direction]*button.Input)
	for d, line := range testLines {
		reader.Set(line, button.High)
		inputs[d] = button.New(line, button.Low, reader, clock)
	}
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := &rig{
		c:      NewController(inputs, setpoint, limits, start),
		reader: reader,
		clock:  clock,
		now:    start,
	}
	// Initial levels start LOW (pressed); settle to released without events
	// counting against the tests.
	r.step()
	r.step()
	r.c.eventCounts = EventCounts{}
	return r
}

// step advances 10ms and processes once.
func (r *rig) step() []Event {
	r.clock.Advance(10)
	r.now = r.now.Add(10 * time.Millisecond)
	return r.c.Process(r.now)
}

func (r *rig) press(d pins.Direction) {
	r.reader.Set(testLines[d], button.Low)
}

func (r *rig) release(d pins.Direction) {
	r.reader.Set(testLines[d], button.High)
}

// tap presses a key for two steps, releases it for two, and returns events.
func (r *rig) tap(d pins.Direction) []Event {
	r.press(d)
	events := append(r.step(), r.step()...)
	r.release(d)
	events = append(events, r.step()...)
	events = append(events, r.step()...)
	return events
}

func TestNewControllerClampsSetpoint(t *testing.T) {
	c := NewController(nil, 40, Limits{Min: 5, Max: 30}, time.Now())
	if c.Setpoint() != 30 {
		t.Errorf("expected setpoint clamped to 30, got %d", c.Setpoint())
	}
	c = NewController(nil, -10, Limits{Min: 5, Max: 30}, time.Now())
	if c.Setpoint() != 5 {
		t.Errorf("expected setpoint clamped to 5, got %d", c.Setpoint())
	}
}

func TestNoEventsWhenIdle(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})
	for i := 0; i < 20; i++ {
		if events := r.step(); len(events) != 0 {
			t.Fatalf("step %d: expected no events, got %+v", i, events)
		}
	}
}

func TestUpRaisesSetpoint(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	events := r.tap(pins.Up)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Type != EventUp || e.Key != pins.Up {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Setpoint != 21 || !e.Changed {
		t.Errorf("expected setpoint 21 changed, got %d changed=%v", e.Setpoint, e.Changed)
	}
	if r.c.Setpoint() != 21 {
		t.Errorf("Setpoint() = %d, want 21", r.c.Setpoint())
	}
	if !e.Timestamp.Equal(r.now.Add(-20 * time.Millisecond)) {
		t.Errorf("event timestamp %v is not the activating step", e.Timestamp)
	}
}

func TestDownLowersSetpoint(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	r.tap(pins.Down)
	r.tap(pins.Down)
	if r.c.Setpoint() != 18 {
		t.Errorf("Setpoint() = %d, want 18", r.c.Setpoint())
	}
	if got := r.c.EventCountsSnapshot().Down; got != 2 {
		t.Errorf("Down count = %d, want 2", got)
	}
}

func TestSetpointLimits(t *testing.T) {
	r := newRig(t, 30, Limits{Min: 29, Max: 30})

	events := r.tap(pins.Up)
	if len(events) != 1 || events[0].Changed || events[0].Setpoint != 30 {
		t.Errorf("UP at max: got %+v", events)
	}

	r.tap(pins.Down)
	events = r.tap(pins.Down)
	if len(events) != 1 || events[0].Changed || events[0].Setpoint != 29 {
		t.Errorf("DOWN at min: got %+v", events)
	}
}

func TestOtherKeysDoNotChangeSetpoint(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	for _, d := range []pins.Direction{pins.Left, pins.Right, pins.Click} {
		events := r.tap(d)
		if len(events) != 1 {
			t.Fatalf("%s: expected 1 event, got %d", d, len(events))
		}
		if events[0].Type != eventForKey[d] || events[0].Changed {
			t.Errorf("%s: unexpected event %+v", d, events[0])
		}
	}
	if r.c.Setpoint() != 20 {
		t.Errorf("Setpoint() = %d, want 20", r.c.Setpoint())
	}
	counts := r.c.EventCountsSnapshot()
	if counts.Left != 1 || counts.Right != 1 || counts.Click != 1 || counts.Up != 0 || counts.Down != 0 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestSimultaneousKeysInDirectionOrder(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	r.press(pins.Click)
	r.press(pins.Up)
	var events []Event
	events = append(events, r.step()...)
	events = append(events, r.step()...)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Key != pins.Up || events[1].Key != pins.Click {
		t.Errorf("expected UP then CLICK, got %s then %s", events[0].Key, events[1].Key)
	}
}

func TestHeldKeyDoesNotRepeatWithoutRefresh(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	r.press(pins.Up)
	total := 0
	for i := 0; i < 50; i++ {
		total += len(r.step())
	}
	if total != 1 {
		t.Errorf("expected a single event for a held key, got %d", total)
	}
}

func TestRefreshRepeatsHeldKey(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	r.press(pins.Up)
	r.step()
	r.step()
	if r.c.Setpoint() != 21 {
		t.Fatalf("Setpoint() = %d, want 21 after press", r.c.Setpoint())
	}

	for i := 0; i < 3; i++ {
		if n := r.c.Refresh(); n != 1 {
			t.Fatalf("refresh %d: re-armed %d keys, want 1", i, n)
		}
		events := r.step()
		if len(events) != 1 || events[0].Type != EventUp {
			t.Fatalf("refresh %d: expected repeat UP, got %+v", i, events)
		}
	}
	if r.c.Setpoint() != 24 {
		t.Errorf("Setpoint() = %d, want 24", r.c.Setpoint())
	}

	r.release(pins.Up)
	r.step()
	r.step()
	if n := r.c.Refresh(); n != 0 {
		t.Errorf("released key re-armed: %d", n)
	}
	if events := r.step(); len(events) != 0 {
		t.Errorf("expected no events after release, got %+v", events)
	}
}

func TestPressed(t *testing.T) {
	r := newRig(t, 20, Limits{Min: 5, Max: 30})

	r.press(pins.Left)
	r.step()
	r.step()

	pressed := r.c.Pressed()
	if len(pressed) != len(testLines) {
		t.Fatalf("expected %d keys, got %d", len(testLines), len(pressed))
	}
	for d, on := range pressed {
		if on != (d == pins.Left) {
			t.Errorf("%s pressed=%v", d, on)
		}
	}
}

func TestTemperature(t *testing.T) {
	c := NewController(nil, 20, Limits{Min: 5, Max: 30}, time.Now())
	if _, ok := c.Temperature(); ok {
		t.Error("expected no temperature before SetTemperature")
	}
	c.SetTemperature(19.25)
	got, ok := c.Temperature()
	if !ok || got != 19.25 {
		t.Errorf("Temperature() = %v, %v; want 19.25, true", got, ok)
	}
}

func TestTemperatureIgnoresNonFinite(t *testing.T) {
	c := NewController(nil, 20, Limits{Min: 5, Max: 30}, time.Now())
	c.SetTemperature(math.NaN())
	if _, ok := c.Temperature(); ok {
		t.Error("NaN should not count as a reading")
	}

	c.SetTemperature(18.5)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		c.SetTemperature(v)
		if got, ok := c.Temperature(); !ok || got != 18.5 {
			t.Errorf("after SetTemperature(%v): got %v, %v; want 18.5, true", v, got, ok)
		}
	}
}

func TestCheckHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(nil, 21, Limits{Min: 5, Max: 30}, start)

	if hb := c.CheckHeartbeat(start.Add(time.Hour), 0); hb != nil {
		t.Error("heartbeat should be disabled for interval 0")
	}
	if hb := c.CheckHeartbeat(start.Add(10*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat before interval elapsed")
	}

	hb := c.CheckHeartbeat(start.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("Uptime = %v, want 15m", hb.Uptime)
	}
	if hb.Setpoint != 21 {
		t.Errorf("Setpoint = %d, want 21", hb.Setpoint)
	}

	if hb := c.CheckHeartbeat(start.Add(20*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat repeated before next interval")
	}
	if hb := c.CheckHeartbeat(start.Add(30*time.Minute), 15*time.Minute); hb == nil {
		t.Error("expected second heartbeat")
	}
}

func TestLimitsClamp(t *testing.T) {
	l := Limits{Min: -5, Max: 5}
	tests := []struct{ in, want int8 }{{-10, -5}, {-5, -5}, {0, 0}, {5, 5}, {100, 5}}
	for _, tt := range tests {
		if got := l.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDisplayLines(t *testing.T) {
	c := NewController(nil, 21, Limits{Min: 5, Max: 30}, time.Now())

	top, bottom := c.DisplayLines()
	if top != "Set   21 C      " {
		t.Errorf("top = %q", top)
	}
	if bottom != "Room   --.- C   " {
		t.Errorf("bottom = %q", bottom)
	}

	c.SetTemperature(-4.3)
	_, bottom = c.DisplayLines()
	if bottom != "Room   -4.3 C   " {
		t.Errorf("bottom = %q", bottom)
	}
	if len(bottom) != DisplayWidth {
		t.Errorf("bottom width = %d", len(bottom))
	}
}
