package board

import (
	"fmt"

	"gpsdo/internal/discipline"
)

// Diag emits the same plain-text, newline-terminated tag set the original
// DEBUG build produced on its diagnostic UART (6, Diagnostic serial
// output), using the teacher's fmt.Printf-to-console idiom rather than a
// hand-rolled formatter. Nothing downstream parses these lines; they exist
// purely for a bench operator.
type Diag struct{ enabled bool }

// NewDiag returns a diagnostic emitter. Pass enabled=false to build it out
// entirely at the call site without scattering build tags through the rest
// of the firmware.
func NewDiag(enabled bool) *Diag {
	return &Diag{enabled: enabled}
}

func (d *Diag) printf(format string, args ...interface{}) {
	if !d.enabled {
		return
	}
	fmt.Printf(format, args...)
}

func (d *Diag) Start() { d.printf("START\r\n") }

func (d *Diag) ResetCause(cause discipline.ResetCause) {
	d.printf("%s\r\n", cause)
}

func (d *Diag) FixChange(status discipline.GpsStatus) {
	if status == discipline.Locked3D {
		d.printf("G_LK\r\n")
	} else {
		d.printf("G_UN\r\n")
	}
}

func (d *Diag) PhaseSample(phaseADC uint16) {
	d.printf("ADC=%d\r\n", phaseADC)
}

// Window reports a closed window's outcome, in the same ER/PE/CE/TE/AV/TP/TV
// tag order the original DEBUG build used (GPSDO_v3.c:636-707). totalError
// and trimPercent come from the controller, not EdgeResult, since they are
// running state rather than this window's outcome. For an outlier window,
// call Outlier instead; Window assumes the lock classifier and (if samples
// are available) the PI update already ran.
func (d *Diag) Window(r discipline.EdgeResult, samples []discipline.Delta, totalError discipline.TotalError, trimPercent discipline.TrimPercent) {
	d.printSampleBuffer(samples)
	d.printf("ER=%d\r\n", int64(r.Drift))    // sample error: the rolling-window drift average
	d.printf("PE=%d\r\n", int32(r.PhaseAvg)) // phase error: the window-averaged phase delta
	if r.NoSample {
		return
	}
	d.printf("CE=%d\r\n", int64(r.CurrentError))
	d.printf("TE=%d\r\n", int64(totalError)) // total error: the PI integrator
	d.printf("AV=%d\r\n", r.Adjustment)      // adjustment value: this window's delta to trim_percent
	d.printf("TP=%d\r\n", int64(discipline.DACSign)*int64(trimPercent))
	d.printf("TV=0x%04x\r\n", uint16(r.DACWord))
}

func (d *Diag) printSampleBuffer(samples []discipline.Delta) {
	if !d.enabled {
		return
	}
	fmt.Printf("SB=")
	for i, s := range samples {
		if i > 0 {
			fmt.Printf(",")
		}
		fmt.Printf("%d", int32(s))
	}
	fmt.Printf("\r\n")
}

func (d *Diag) Outlier(delta discipline.Delta) {
	d.printf("XXX=%d\r\n", int32(delta))
}

func (d *Diag) PDOP(pdop float64) {
	d.printf("PD=%.2f\r\n", pdop)
}

func (d *Diag) NVWrite(word discipline.DACWord) {
	d.printf("EEUP\r\nEE=0x%04x\r\n", uint16(word))
}
