package upload

import (
	"errors"
	"fmt"
	"io"
	"log"
)

// Request is what the PC writes to ask for a reading.
const Request = "read"

// WatchRequests reads r until it fails and calls fn once per Request seen.
// A request may be split across reads; other bytes are ignored.
func WatchRequests(r io.Reader, fn func()) error {
	buf := make([]byte, 64)
	matched := 0
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			matched = advance(matched, b)
			if matched == len(Request) {
				fn()
				matched = 0
			}
		}
		if err != nil {
			return err
		}
	}
}

// advance returns how much of Request is matched after b. No prefix of
// "read" is also a suffix of it, so a mismatch only needs to recheck b
// against the first byte.
func advance(matched int, b byte) int {
	if b == Request[matched] {
		return matched + 1
	}
	if b == Request[0] {
		return 1
	}
	return 0
}

// HostPort is the PC end of the serial link. Reads must time out and return
// 0, nil when no data arrives; go.bug.st/serial ports do this after
// SetReadTimeout.
type HostPort interface {
	io.ReadWriter
	ResetInputBuffer() error
}

const (
	// DefaultAttempts is how many requests ReadFrame makes before giving up.
	DefaultAttempts = 5

	// idleReads is how many empty reads with no reply yet count as no answer.
	idleReads = 20
)

// ErrNoReply is returned when the panel never answers a request.
var ErrNoReply = errors.New("no reply")

// Client requests readings from the panel over the serial link.
type Client struct {
	port     HostPort
	attempts int
}

// NewClient creates a Client on port. attempts <= 0 uses DefaultAttempts.
func NewClient(port HostPort, attempts int) *Client {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Client{port: port, attempts: attempts}
}

// ReadFrame discards anything already received, then writes Request and
// collects the reply until the port goes quiet. Partial or merged replies
// are requested again.
func (c *Client) ReadFrame() (Frame, error) {
	if err := c.port.ResetInputBuffer(); err != nil {
		return Frame{}, fmt.Errorf("reset input: %w", err)
	}

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if _, err := io.WriteString(c.port, Request); err != nil {
			return Frame{}, fmt.Errorf("write request: %w", err)
		}
		data, err := c.readReply()
		if err != nil {
			return Frame{}, err
		}
		if len(data) == 0 {
			lastErr = ErrNoReply
			log.Printf("upload: no reply, retrying")
			continue
		}
		f, err := ParseFrame(data)
		if err == nil {
			return f, nil
		}
		lastErr = err
		log.Printf("upload: %v, retrying", err)
	}
	return Frame{}, fmt.Errorf("after %d requests: %w", c.attempts, lastErr)
}

// readReply reads until an empty read follows data. It returns nil if
// nothing arrives within idleReads empty reads.
func (c *Client) readReply() ([]byte, error) {
	var data []byte
	buf := make([]byte, 128)
	idle := 0
	for {
		n, err := c.port.Read(buf)
		data = append(data, buf[:n]...)
		if err != nil {
			if err == io.EOF && len(data) > 0 {
				return data, nil
			}
			return nil, fmt.Errorf("read reply: %w", err)
		}
		if n > 0 {
			continue
		}
		if len(data) > 0 {
			return data, nil
		}
		idle++
		if idle >= idleReads {
			return nil, nil
		}
	}
}
