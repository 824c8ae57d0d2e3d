package discipline

// Tick is a monotonic count of oscillator cycles, modulo 2^32. Consumers
// must compare two Ticks with unsigned subtraction so that a single wrap is
// handled correctly (3.Tick).
type Tick uint32

// Sub returns t-other as a signed tick span, correct across one wraparound.
func (t Tick) Sub(other Tick) int64 {
	return int64(int32(uint32(t) - uint32(other)))
}

// Delta is a FrequencySample: observed ticks in a window minus the expected
// tick count for that window (3.FrequencySample). Units: ticks/window.
type Delta int32

// TrimPercent is the fixed-point control variable, two decimal digits of
// "DAC steps from midpoint x100" (3.TrimState).
type TrimPercent int64

// DACWord converts a TrimPercent to the 16-bit word actually written to the
// DAC: floor(trim_percent/100) + 0x8000, clamped to the DAC's legal range
// per the REDESIGN note in SPEC_FULL.md (no saturation was specified in the
// original firmware; a port must clamp explicitly).
func (t TrimPercent) DACWord() DACWord {
	raw := int64(t)/100 + DACMidpoint
	if raw < 0 {
		raw = 0
	}
	if raw > 0xFFFF {
		raw = 0xFFFF
	}
	return DACWord(raw)
}

// DACWord is the 16-bit code written to the AD5061-compatible DAC.
type DACWord uint16

// SampleDrift is the one-decimal fixed-point rolling-window average drift,
// in ticks/window (4.E: sample_drift = S*10/K).
type SampleDrift int64

// CurrentError is the two-decimal fixed-point combined error signal fed to
// the PI controller (4.E).
type CurrentError int64

// TotalError is the PI integrator state, same fixed-point scale as
// CurrentError. Cleared on every Locked3D<->Unlocked transition (3.Lifecycle).
type TotalError int64

// PhaseMilliunits is the window-averaged phase error rescaled to
// milli-units-of-midpoint (4.C: sample_phase_error = avg_phase_error*1000/M).
type PhaseMilliunits int32

// GpsStatus is the two-state fix indicator derived from parsed GPS status
// updates (3.GpsStatus).
type GpsStatus uint8

const (
	Unlocked GpsStatus = iota
	Locked3D
)

func (s GpsStatus) String() string {
	if s == Locked3D {
		return "Locked3D"
	}
	return "Unlocked"
}

// LockGrade is the rolling-window lock quality classification (3.LockGrade).
type LockGrade uint8

const (
	LockNone LockGrade = iota
	LockGood
	LockBetter
	LockBest
)

func (g LockGrade) String() string {
	switch g {
	case LockGood:
		return "Good"
	case LockBetter:
		return "Better"
	case LockBest:
		return "Best"
	default:
		return "None"
	}
}

// ResetCause records which hardware reset brought the system up (4.H),
// captured once at boot.
type ResetCause uint8

const (
	ResetPowerOn ResetCause = iota
	ResetExternal
	ResetBrownOut
	ResetWatchdog
)

func (c ResetCause) String() string {
	switch c {
	case ResetExternal:
		return "RES_EXT"
	case ResetBrownOut:
		return "RES_BO"
	case ResetWatchdog:
		return "RES_WD"
	default:
		return "RES_PO"
	}
}
