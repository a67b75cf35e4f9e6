package main

import (
	"fmt"
	"io"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/pins"
)

// describeKey formats one line of -print-state output, e.g.
//
//	UP: RELEASED (HIGH) line 5, shield A1 PORTC bit 1
func describeKey(d pins.Direction, line int, level, pressed button.Level) string {
	s := fmt.Sprintf("%s: %s (%s) line %d", d, keyState(level, pressed), level, line)
	if name, ok := pins.Joystick(d); ok {
		if m, ok := pins.Lookup(name); ok {
			s += fmt.Sprintf(", shield %s %s bit %d", name, m.Port, m.Bit)
		}
	}
	return s
}

func keyState(level, pressed button.Level) string {
	if level == pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

var shieldPins = []struct {
	name string
	pin  int
}{
	{"LCD TX", pins.ShieldLCDTX},
	{"SD CS", pins.ShieldSDCS},
	{"DS18B20", pins.ShieldDS18B20},
}

// printBoard writes the shield wiring and the Arduino pin table.
func printBoard(w io.Writer) error {
	fmt.Fprintln(w, "joystick:")
	for _, d := range pins.Directions {
		name, _ := pins.Joystick(d)
		m, _ := pins.Lookup(name)
		line, _ := pins.HostLine(d)
		fmt.Fprintf(w, "  %-6s %-3s %s bit %d  host line %d\n", d, name, m.Port, m.Bit, line)
	}

	fmt.Fprintln(w, "shield:")
	for _, p := range shieldPins {
		name := fmt.Sprintf("D%d", p.pin)
		m, ok := pins.Lookup(name)
		if !ok {
			return fmt.Errorf("shield pin %s: %s not in pin table", p.name, name)
		}
		fmt.Fprintf(w, "  %-8s %-3s %s bit %d\n", p.name, name, m.Port, m.Bit)
	}
	ds, err := pins.DS18B20(pins.DefaultDS18B20Bits)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  DS18B20 resolution %d bits, config 0x%02X, conversion %v\n",
		ds.Bits, ds.ConfigByte, ds.Conversion)

	fmt.Fprintln(w, "pins:")
	for _, name := range pins.Names() {
		m, _ := pins.Lookup(name)
		fmt.Fprintf(w, "  %-5s %s\n", name, m)
	}
	return nil
}
