// Command thermostat-host runs on the PC end of the panel's upload link. It
// requests readings over the serial port and prints each one as a JSON line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/sweeney/thermostat-panel/internal/upload"
)

// quietTime is how long the port must stay silent to end a reply.
const quietTime = 100 * time.Millisecond

func main() {
	portName := flag.String("port", "/dev/ttyUSB0", "Serial port wired to the panel")
	baud := flag.Int("baud", 9600, "Serial baud rate")
	count := flag.Int("count", 0, "Number of readings to take (0 = forever)")
	every := flag.Duration("every", 0, "Delay between readings")
	attempts := flag.Int("attempts", upload.DefaultAttempts, "Requests per reading before giving up")

	flag.Parse()

	port, err := serial.Open(*portName, &serial.Mode{BaudRate: *baud})
	if err != nil {
		log.Fatalf("fatal: open %s: %v", *portName, err)
	}
	defer port.Close()

	if err := port.SetReadTimeout(quietTime); err != nil {
		log.Fatalf("fatal: set read timeout: %v", err)
	}

	client := upload.NewClient(port, *attempts)
	if err := readFrames(client, *count, *every, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type frameReader interface {
	ReadFrame() (upload.Frame, error)
}

// readFrames writes count frames to w, one JSON object per line. count <= 0
// reads until an error.
func readFrames(r frameReader, count int, every time.Duration, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i := 0; count <= 0 || i < count; i++ {
		if i > 0 && every > 0 {
			time.Sleep(every)
		}
		f, err := r.ReadFrame()
		if err != nil {
			return fmt.Errorf("reading %d: %w", i+1, err)
		}
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}
