package board

import (
	"fmt"
	"time"

	"gpsdo/internal/discipline"
)

// Hardware bundles the board-level state the foreground loop in cmd/gpsdo
// drives: the restored trim word (so the caller can build a discipline.Core
// with it) and the reset cause (so the caller can log it before anything
// else runs).
type Hardware struct {
	RestoredDACWord discipline.DACWord
	Cause           discipline.ResetCause
	Distribution    *Distribution // nil if the Si5351 bring-up failed
}

// Setup brings up every peripheral the discipline loop depends on, in the
// order the original bring-up sequence used: watchdog first so a hang in
// anything that follows still reboots (4.H), then the counter and capture
// path, then the slower or optional peripherals. It mirrors pico.Setup's
// role in the teacher repo, just wired to GPSDO peripherals instead of the
// WSPR frequency-counter chain.
func Setup() (*Hardware, error) {
	InitWatchdog()
	cause := ResetCause()

	InitNVM()
	restored := ReadTrim()

	InitADC()
	InitTimekeeper()
	if err := InitCapture(); err != nil {
		return nil, fmt.Errorf("board: capture setup: %w", err)
	}
	InitDAC()
	InitLEDs()

	if err := InitSerial(); err != nil {
		return nil, fmt.Errorf("board: serial setup: %w", err)
	}

	hw := &Hardware{RestoredDACWord: restored, Cause: cause}

	// The Si5351 distribution outputs are a bench convenience, not a
	// dependency of the discipline loop; a missing or unresponsive chip
	// must not prevent the GPSDO itself from running.
	dist, err := NewDistribution()
	if err != nil {
		hw.Distribution = nil
	} else {
		hw.Distribution = dist
	}

	time.Sleep(10 * time.Millisecond) // let the ADC and UART settle before the first edge
	return hw, nil
}
