package discipline

// Controller holds the PI integrator and the trim value it steers (3.TrimState,
// 4.E). TotalError is cleared on every GPS fix transition (4.D); TrimPercent
// survives unlocks and resets (9.Holdover) and is the only piece of Core
// state loaded from / saved to non-volatile storage.
type Controller struct {
	TotalError  TotalError
	TrimPercent TrimPercent
}

// NewController builds a Controller with the trim value restored from
// persistence, per 4.G's boot contract: "the stored value is read, written
// to the DAC, and trim_percent is initialized from it."
func NewController(restoredDACWord DACWord) Controller {
	return Controller{
		TrimPercent: trimPercentFromDACWord(restoredDACWord),
	}
}

func trimPercentFromDACWord(w DACWord) TrimPercent {
	return TrimPercent(int64(w)-DACMidpoint) * 100
}

// ResetIntegrator clears the PI integrator. Called on every fix transition
// (4.D); must never also snapshot TotalError for later restoration (9.Holdover
// vs. integrator reset — this is explicitly load-bearing, not an oversight).
func (c *Controller) ResetIntegrator() {
	c.TotalError = 0
}

// CombinedError blends the rolling-window drift and the window-averaged
// phase error into the single error signal the PI loop consumes (4.E):
//
//	current_error = 10*sample_drift + sample_phase_error/PhaseWeight
//
// sample_drift carries one decimal digit already; multiplying by 10 lifts it
// to the two-decimal scale current_error and trim_percent share. The phase
// term's divisor is a tuned mix, not a derivation (9.Open Questions) and is
// named PhaseWeight rather than left as a bare literal.
func CombinedError(drift SampleDrift, phase PhaseMilliunits) CurrentError {
	return CurrentError(10*int64(drift) + int64(phase)/PhaseWeight)
}

// Update runs one window's PI step and returns the DAC word to (maybe)
// write. It mutates TotalError and TrimPercent in place, exactly as the
// reference firmware's single pass through main()'s per-window block:
//
//	total_error += current_error
//	adj          = DAC_SIGN * (current_error*K_P + total_error*K_I) / 10000
//	trim_percent -= adj
//	dac_word      = floor(trim_percent/100) + 0x8000   (clamped, see REDESIGN)
//
// The division orders above are exactly the reference firmware's; they are
// not associative with any other grouping and must not be rearranged
// (9.Fixed-point arithmetic).
func (c *Controller) Update(current CurrentError) (adj int64, dacWord DACWord) {
	c.TotalError += TotalError(current)
	adj = DACSign * (int64(current)*KP + int64(c.TotalError)*KI) / 10000
	c.TrimPercent -= TrimPercent(adj)
	return adj, c.TrimPercent.DACWord()
}
