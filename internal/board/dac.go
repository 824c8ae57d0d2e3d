package board

import (
	"machine"

	"gpsdo/internal/discipline"
)

// AD5061 control pins, bit-banged rather than driven through the RP2040's
// hardware SPI: the part's clock-data timing is generous enough that the
// original AVR firmware didn't need a peripheral either, and bit-banging
// keeps the three pins independent of any SPI0/SPI1 pin-mux constraint.
const (
	dacClkPin = machine.Pin(6)
	dacCSPin  = machine.Pin(7)
	dacDOPin  = machine.Pin(8)
)

var lastDACWord discipline.DACWord = 0xFFFF // forces the first write through

// InitDAC configures the three AD5061 control pins. CS is driven high
// before it is set to output, matching the original's "CS high before
// DDRA" ordering so the DAC never sees a spurious chip-select pulse.
func InitDAC() {
	dacCSPin.High()
	dacCSPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dacClkPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dacClkPin.High()
	dacDOPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// WriteDAC clocks value out to the AD5061: chip-select low, 8 leading zero
// bits (6 padding + 2 always-zero shutdown-control bits), then 16 data bits
// MSB-first, each shifted in on a clock falling edge, then chip-select high
// to latch and slew the output (6, DAC output). A write is skipped when the
// word hasn't changed, suppressing the glitch a no-op write would still
// produce on the DAC's output (4.E, DAC write contract).
func WriteDAC(word discipline.DACWord) {
	if word == lastDACWord {
		return
	}
	lastDACWord = word

	dacCSPin.Low()
	dacDOPin.Low()
	for i := 0; i < 8; i++ {
		dacClkPin.Low()
		dacClkPin.High()
	}
	for i := 15; i >= 0; i-- {
		if word&(1<<uint(i)) != 0 {
			dacDOPin.High()
		} else {
			dacDOPin.Low()
		}
		dacClkPin.Low()
		dacClkPin.High()
	}
	dacCSPin.High()
}
