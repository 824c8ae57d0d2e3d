package discipline

// PhaseAccumulator is the running sum of per-PPS phase errors plus a count,
// cleared each time the frequency window closes (3.PhaseAccumulator).
type PhaseAccumulator struct {
	sum   int64
	count int
}

// Add records one PPS edge's phase reading. reading is the raw ADC code;
// the midpoint-relative error (M - reading) is what gets accumulated,
// per 4.C's sign convention.
func (p *PhaseAccumulator) Add(reading uint16) {
	p.sum += int64(PhaseMidpoint) - int64(reading)
	p.count++
}

// Close computes the window-averaged phase error, rescaled to
// milli-units-of-midpoint, and clears the accumulator (4.C):
//
//	avg_phase_error  = phase_error_sum / W
//	sample_phase_error = avg_phase_error * 1000 / M
//
// The two divisions are not combined into one; the reference firmware
// performs them in this order and in this order only (9.Fixed-point
// arithmetic: integer division orderings are not associative).
func (p *PhaseAccumulator) Close() PhaseMilliunits {
	avg := p.sum / WindowSeconds
	sample := avg * 1000 / PhaseMidpoint
	p.sum, p.count = 0, 0
	return PhaseMilliunits(sample)
}
