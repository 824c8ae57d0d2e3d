package board

import "machine"

// phaseADCPin is the single channel wired to the phase-comparator output
// (6, Analog input). The original used an internal 4.096V reference; the
// RP2040's ADC is fixed at its 3.3V rail, so the phase comparator's output
// divider is sized for that on this board instead.
const phaseADCPin = machine.ADC0

var phaseADC machine.ADC

// InitADC configures the phase-comparator input channel.
func InitADC() {
	machine.InitADC()
	phaseADC = machine.ADC{Pin: phaseADCPin}
	phaseADC.Configure(machine.ADCConfig{})
}

// readPhaseADCBlocking triggers a conversion and blocks for the result, the
// same busy-wait the original performed in the capture ISR while
// deliberately not petting the watchdog, since the wait is microseconds
// (4.B step 2, 5.Blocking). machine.ADC.Get already blocks for conversion
// completion, so there is nothing further to poll here.
//
// TinyGo's ADC.Get returns a value normalized to the full 16-bit range
// regardless of the converter's native resolution; the discipline loop's
// PhaseMidpoint (512) assumes the original 10-bit ADC codes, so the reading
// is rescaled back down to that range here rather than in the core.
func readPhaseADCBlocking() uint16 {
	return phaseADC.Get() >> 6
}
