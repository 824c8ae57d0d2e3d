package discipline

// SampleBuffer is the rolling window of frequency-drift samples (3.SampleBuffer).
// The zero value is not ready to use; call NewSampleBuffer or Reset first.
type SampleBuffer struct {
	samples [SampleCount]Delta
	// fill is -1 (armed "skip next" marker) or 0..SampleCount.
	fill int
}

// NewSampleBuffer returns a buffer armed to skip its first window, as after
// a fresh GPS lock or a power-on reset (4.D, 4.H).
func NewSampleBuffer() SampleBuffer {
	return SampleBuffer{fill: -1}
}

// Reset re-arms the skip-next marker, clearing any accumulated samples. Used
// on every Locked3D<->Unlocked transition (4.D).
func (b *SampleBuffer) Reset() {
	b.fill = -1
}

// Len returns the number of valid samples currently held (0 while armed).
func (b *SampleBuffer) Len() int {
	if b.fill < 0 {
		return 0
	}
	return b.fill
}

// Full reports whether the buffer holds a complete window of SampleCount
// samples; the lock classifier requires this before grading anything but
// None (4.F).
func (b *SampleBuffer) Full() bool {
	return b.fill == SampleCount
}

// Sum returns the sum of the valid samples currently held.
func (b *SampleBuffer) Sum() int64 {
	var s int64
	for i := 0; i < b.Len(); i++ {
		s += int64(b.samples[i])
	}
	return s
}

// Samples returns the valid samples, oldest first, for diagnostics.
func (b *SampleBuffer) Samples() []Delta {
	return b.samples[:b.Len()]
}

// Observe processes one window's frequency delta. It reports whether the
// delta was rejected as an outlier, and the rejected value for diagnostics.
//
// The outlier guard only applies once the buffer holds a real window
// (fill >= 0); during the post-lock warm-up (fill == -1, the armed skip
// marker) an oversized delta is still consumed by the skip-one logic
// instead of being discarded. This reproduces the original firmware's
// `abs(delta) > MAX_DELTA && valid_samples >= 0` guard, including its
// asymmetry during warm-up (see SPEC_FULL.md Open Questions).
func (b *SampleBuffer) Observe(d Delta) (outlier bool, erroneous Delta) {
	if b.fill >= 0 && absDelta(d) > MaxDelta {
		return true, d
	}
	b.insert(d)
	return false, 0
}

func (b *SampleBuffer) insert(d Delta) {
	switch {
	case b.fill < 0:
		// skip-one semantics: this window is consumed, not stored.
		b.fill = 0
	case b.fill < SampleCount:
		b.samples[b.fill] = d
		b.fill++
	default:
		copy(b.samples[:SampleCount-1], b.samples[1:SampleCount])
		b.samples[SampleCount-1] = d
	}
}

func absDelta(d Delta) Delta {
	if d < 0 {
		return -d
	}
	return d
}

// SampleDriftOf computes the one-decimal fixed-point rolling average drift
// from a buffer's sum, per 4.E: sample_drift = S*10/K. Division order
// matters (9.Fixed-point arithmetic) and is preserved exactly.
func SampleDriftOf(sum int64) SampleDrift {
	return SampleDrift(sum * 10 / SampleCount)
}

func absSampleDrift(d SampleDrift) SampleDrift {
	if d < 0 {
		return -d
	}
	return d
}
