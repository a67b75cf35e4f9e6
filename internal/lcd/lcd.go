// Package lcd drives a serial-attached two-line character LCD
// (SparkFun SerLCD command set).
package lcd

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the rate the display powers up at.
const DefaultBaudRate = 9600

const (
	cmdPrefix  = 0xFE
	cmdClear   = 0x01
	cmdLine0   = 0x80
	cmdLine1   = 0xC0
	cmdControl = 0x7C
)

// The display goes blank if the port switches rate before it has taken the
// speed change.
const settleDelay = 50 * time.Millisecond

// Port is the byte transport to the display. go.bug.st/serial ports satisfy it.
type Port interface {
	io.Writer
	SetMode(mode *serial.Mode) error
}

// LCD is a serial character display.
type LCD struct {
	port  Port
	baud  int
	sleep func(time.Duration)
}

// New wraps a port that is open at DefaultBaudRate.
func New(port Port) *LCD {
	return &LCD{
		port:  port,
		baud:  DefaultBaudRate,
		sleep: time.Sleep,
	}
}

// Open opens the named serial port at DefaultBaudRate.
func Open(name string) (*LCD, io.Closer, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: DefaultBaudRate})
	if err != nil {
		return nil, nil, fmt.Errorf("open lcd port %s: %w", name, err)
	}
	return New(p), p, nil
}

// speedControl maps a baud rate to the display's speed byte.
// Unsupported rates fall back to 9600.
func speedControl(baud int) (int, byte) {
	switch baud {
	case 2400:
		return baud, 0x0B
	case 4800:
		return baud, 0x0C
	case 9600:
		return baud, 0x0D
	case 14400:
		return baud, 0x0E
	case 19200:
		return baud, 0x0F
	case 38400:
		return baud, 0x10
	default:
		return 9600, 0x0D
	}
}

// Initialize switches the display and port to baud, then clears the screen.
func (l *LCD) Initialize(baud int) error {
	baud, speed := speedControl(baud)

	if err := l.port.SetMode(&serial.Mode{BaudRate: l.baud}); err != nil {
		return fmt.Errorf("set lcd port to %d baud: %w", l.baud, err)
	}
	if err := l.write(cmdControl, speed); err != nil {
		return fmt.Errorf("send speed change: %w", err)
	}
	l.sleep(settleDelay)

	if err := l.port.SetMode(&serial.Mode{BaudRate: baud}); err != nil {
		return fmt.Errorf("set lcd port to %d baud: %w", baud, err)
	}
	l.baud = baud
	return l.Clear()
}

// BaudRate returns the rate the display was last initialized to.
func (l *LCD) BaudRate() int {
	return l.baud
}

// Clear blanks the display.
func (l *LCD) Clear() error {
	if err := l.write(cmdPrefix, cmdClear); err != nil {
		return fmt.Errorf("clear lcd: %w", err)
	}
	return nil
}

// WriteLine moves to the start of line 0, or line 1 for any other value,
// and writes text.
func (l *LCD) WriteLine(line int, text string) error {
	pos := byte(cmdLine1)
	if line == 0 {
		pos = cmdLine0
	}
	buf := make([]byte, 0, 2+len(text))
	buf = append(buf, cmdPrefix, pos)
	buf = append(buf, text...)
	if err := l.write(buf...); err != nil {
		return fmt.Errorf("write lcd line %d: %w", line, err)
	}
	return nil
}

func (l *LCD) write(b ...byte) error {
	_, err := l.port.Write(b)
	return err
}
