// Package pins holds the fixed pin and peripheral mappings of the thermostat
// board: the ATmega328P Arduino pin to port/bit table, the CAN-bus shield
// accessory and joystick assignments, DS18B20 resolution settings, and the
// Linux line offsets the panel host uses for the joystick.
//
// All tables are resolved at build time and never mutated.
package pins

import (
	"fmt"
	"sort"
	"time"
)

// Port is an AVR I/O port register.
type Port byte

const (
	PortB Port = 'B'
	PortC Port = 'C'
	PortD Port = 'D'
)

// String returns "PORTB", "PORTC" or "PORTD".
func (p Port) String() string {
	return "PORT" + string(rune(p))
}

// Mapping is a port register and bit pair.
type Mapping struct {
	Port Port
	Bit  uint8
}

func (m Mapping) String() string {
	return fmt.Sprintf("%c%d", rune(m.Port), m.Bit)
}

var arduino = map[string]Mapping{
	"RST":   {PortC, 6},
	"0":     {PortD, 0},
	"1":     {PortD, 1},
	"2":     {PortD, 2},
	"3":     {PortD, 3},
	"4":     {PortD, 4},
	"XTAL1": {PortB, 6},
	"XTAL2": {PortB, 7},
	"5":     {PortD, 5},
	"6":     {PortD, 6},
	"7":     {PortD, 7},
	"8":     {PortB, 0},
	"9":     {PortB, 1},
	"10":    {PortB, 2},
	"11":    {PortB, 3},
	"12":    {PortB, 4},
	"13":    {PortB, 5},
	"A0":    {PortC, 0},
	"A1":    {PortC, 1},
	"A2":    {PortC, 2},
	"A3":    {PortC, 3},
	"A4":    {PortC, 4},
	"A5":    {PortC, 5},
}

// Named peripheral signals and the Arduino pin they sit on.
var aliases = map[string]string{
	"RX":          "0",
	"TX":          "1",
	"MOSI":        "11",
	"MISO":        "12",
	"SCK":         "13",
	"MCP2515_CS":  "10",
	"MCP2515_INT": "2",
}

// CAN-bus shield accessory pins (Arduino digital pin numbers).
const (
	ShieldLCDTX   = 6
	ShieldSDCS    = 9
	ShieldDS18B20 = 5
)

// Direction is a joystick direction on the shield.
type Direction string

const (
	Up    Direction = "UP"
	Right Direction = "RIGHT"
	Down  Direction = "DOWN"
	Click Direction = "CLICK"
	Left  Direction = "LEFT"
)

// Directions lists the joystick directions in shield order.
var Directions = []Direction{Up, Right, Down, Click, Left}

var joystick = map[Direction]string{
	Up:    "A1",
	Right: "A2",
	Down:  "A3",
	Click: "A4",
	Left:  "A5",
}

// The panel host wires the joystick through an adapter board to these
// gpiochip0 line offsets (BCM numbering).
var hostLines = map[Direction]int{
	Up:    5,
	Right: 6,
	Down:  13,
	Click: 19,
	Left:  26,
}

// Lookup resolves an Arduino pin name or peripheral alias to its port/bit.
// Pin names may be given with or without the "D" prefix for digital pins.
func Lookup(name string) (Mapping, bool) {
	if target, ok := aliases[name]; ok {
		name = target
	}
	if len(name) > 1 && name[0] == 'D' {
		name = name[1:]
	}
	m, ok := arduino[name]
	return m, ok
}

// Names returns every Arduino pin name in the table, sorted.
func Names() []string {
	names := make([]string, 0, len(arduino))
	for n := range arduino {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Joystick returns the Arduino pin name of a joystick direction.
func Joystick(d Direction) (string, bool) {
	p, ok := joystick[d]
	return p, ok
}

// HostLine returns the default host line offset for a joystick direction.
func HostLine(d Direction) (int, bool) {
	off, ok := hostLines[d]
	return off, ok
}

// HostLines returns a copy of the default host line offsets.
func HostLines() map[Direction]int {
	out := make(map[Direction]int, len(hostLines))
	for d, off := range hostLines {
		out[d] = off
	}
	return out
}

// DS18B20Setting is the configuration register value and worst-case
// conversion time for one DS18B20 resolution.
type DS18B20Setting struct {
	Bits       int
	ConfigByte byte
	Conversion time.Duration
}

// DefaultDS18B20Bits is the resolution the board runs the sensor at.
const DefaultDS18B20Bits = 10

var ds18b20 = map[int]DS18B20Setting{
	12: {12, 0x7F, 750 * time.Millisecond},
	11: {11, 0x5F, 375 * time.Millisecond},
	10: {10, 0x3F, 188 * time.Millisecond},
	9:  {9, 0x1F, 94 * time.Millisecond},
}

// DS18B20 returns the setting for a resolution between 9 and 12 bits.
func DS18B20(bits int) (DS18B20Setting, error) {
	s, ok := ds18b20[bits]
	if !ok {
		return DS18B20Setting{}, fmt.Errorf("invalid DS18B20 resolution: %d bits", bits)
	}
	return s, nil
}
