package discipline

// FixGate tracks the GPS fix indicator and tells the caller when a reset is
// due (3.GpsStatus, 4.D). Both directions of transition — gaining a fix and
// losing one — trigger the identical reset of sample/error state; Update
// only reports that the state changed, and Status gives the new state.
type FixGate struct {
	status GpsStatus
}

// Status returns the current fix state.
func (g *FixGate) Status() GpsStatus {
	return g.status
}

// Update records a new fix reading and reports whether it differs from the
// previous one. On any change the caller must reset the sample buffer, the
// PI integrator, and the lock grade, and must arm the sample buffer's
// skip-next marker — see Core.OnFixChange, which is the only caller. The
// phase accumulator is deliberately left alone (original handleGPS() never
// clears phase_error_sum either). The trim value and DAC word are never
// touched here: that is the holdover contract (3.Lifecycle, 9.Holdover).
func (g *FixGate) Update(fix GpsStatus) (changed bool) {
	if fix == g.status {
		return false
	}
	g.status = fix
	return true
}
