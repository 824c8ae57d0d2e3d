package discipline

// ShouldPersist implements the NV write gate (4.G). Both conditions must
// hold after a window update:
//
//  1. the loop is near steady-state this window (|current_error| < bound), and
//  2. the stored word is stale enough to be worth a flash write
//     (|stored - trim| > EEUpdateOffset).
//
// A fresh boot with an uninitialized (0xFFFF -> defaulted to 0x8000) stored
// word is handled the same way as any other stored value; no special case
// is needed because the comparison is purely numeric.
func ShouldPersist(currentError CurrentError, stored, trim DACWord) bool {
	return absCurrentError(currentError) < SteadyStateErrorBound &&
		absWordDelta(stored, trim) > EEUpdateOffset
}

func absCurrentError(e CurrentError) CurrentError {
	if e < 0 {
		return -e
	}
	return e
}

func absWordDelta(a, b DACWord) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}

// DACWordFromNV interprets a raw non-volatile read per 4.G: an uninitialized
// cell reads as 0xFFFF (the NOR-flash erased state, see
// internal/board/nvm.go) and is interpreted as "default to mid-scale."
func DACWordFromNV(raw uint16) DACWord {
	if raw == 0xFFFF {
		return DACMidpoint
	}
	return DACWord(raw)
}
