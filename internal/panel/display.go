package panel

import "fmt"

// DisplayWidth is the number of characters per LCD line.
const DisplayWidth = 16

// DisplayLines renders the two LCD lines for the controller's current state.
// Lines are padded to DisplayWidth so stale characters are overwritten.
func (c *Controller) DisplayLines() (string, string) {
	top := fmt.Sprintf("Set  %3d C", c.setpoint)
	bottom := "Room   --.- C"
	if c.hasTemperature {
		bottom = fmt.Sprintf("Room %6.1f C", c.temperature)
	}
	return pad(top), pad(bottom)
}

func pad(s string) string {
	if len(s) >= DisplayWidth {
		return s[:DisplayWidth]
	}
	return fmt.Sprintf("%-*s", DisplayWidth, s)
}
