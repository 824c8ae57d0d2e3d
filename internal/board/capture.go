package board

import (
	"machine"

	"gpsdo/internal/discipline"
)

// Edge is one PPS capture handed from the interrupt to the foreground: the
// extended tick at the moment of the edge and the phase-detector reading
// taken immediately after it (4.B step 2, 4.C).
type Edge struct {
	Tick     discipline.Tick
	PhaseADC uint16
}

// ppsPin is the GPIO the GPS receiver's 1PPS line is wired to.
const ppsPin = machine.Pin(10)

// edges is a single-slot mailbox rather than a queue: the foreground is
// expected to drain it well within the one-second PPS period. If it has
// not, onPPS drops the new edge rather than buffering it.
var edges = make(chan Edge, 1)

// InitCapture arms the PPS interrupt. The ADC channel feeding the phase
// comparator must already be configured (InitADC) before this is called.
func InitCapture() error {
	ppsPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return ppsPin.SetInterrupt(machine.PinRising, onPPS)
}

// Edges returns the channel the foreground reads captured PPS edges from.
func Edges() <-chan Edge {
	return edges
}

// onPPS is the PPS capture ISR (5, priority 1): read the tick, trigger and
// block for the ADC conversion, then hand both off. The ADC wait is bounded
// by hardware conversion time (a few microseconds at this clock divider),
// comfortably inside the watchdog budget (5.Blocking).
func onPPS(pin machine.Pin) {
	tick := captureTick()
	phase := readPhaseADCBlocking()
	select {
	case edges <- Edge{Tick: tick, PhaseADC: phase}:
	default:
		// foreground fell behind by a full second; drop this edge rather
		// than stall the ISR. The next edge will still carry a correct
		// tick value since captureTick never depends on what the
		// foreground has consumed.
	}
}
