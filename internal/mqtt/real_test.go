package mqtt

import "testing"

func TestFlushKeepsOrderWithPublishDuringReplay(t *testing.T) {
	p := &RealPublisher{topic: Topic, buf: newOutbox(10)}
	for _, b := range []byte{1, 2} {
		if err := p.publish(Topic, 0, false, []byte{b}); err != nil {
			t.Fatalf("publish while disconnected: %v", err)
		}
	}
	if p.Buffered() != 2 {
		t.Fatalf("Buffered() = %d, want 2", p.Buffered())
	}

	var sent []byte
	replayed, dropped := p.flush(func(m queuedMsg) {
		sent = append(sent, m.payload[0])
		if m.payload[0] == 1 {
			// The run loop publishes while the first batch is going out.
			if err := p.publish(Topic, 0, false, []byte{3}); err != nil {
				t.Errorf("publish during replay: %v", err)
			}
			if p.IsConnected() {
				t.Error("publisher reported connected before the outbox was empty")
			}
		}
	})

	if string(sent) != string([]byte{1, 2, 3}) {
		t.Errorf("broker order = %v, want [1 2 3]", sent)
	}
	if replayed != 3 || dropped != 0 {
		t.Errorf("replayed=%d dropped=%d, want 3 and 0", replayed, dropped)
	}
	if !p.IsConnected() || p.Buffered() != 0 {
		t.Errorf("after flush: connected=%v buffered=%d", p.IsConnected(), p.Buffered())
	}
}

func TestFlushEmptyOutboxConnects(t *testing.T) {
	p := &RealPublisher{topic: Topic, buf: newOutbox(4)}
	replayed, _ := p.flush(func(queuedMsg) { t.Error("nothing should be sent") })
	if replayed != 0 || !p.IsConnected() {
		t.Errorf("replayed=%d connected=%v", replayed, p.IsConnected())
	}
}
