package discipline

// Core is all of the discipline loop's process-global state (3.Lifecycle),
// created once at boot and driven one PPS edge at a time by package board.
// Core never touches a register; it is exercised purely through OnEdge and
// OnFixChange.
type Core struct {
	Fix    FixGate
	Buffer SampleBuffer
	Phase  PhaseAccumulator
	Ctrl   Controller
	Lock   LockGrade

	windowPos    int
	prevTick     Tick
	havePrevTick bool
}

// NewCore builds a freshly-booted Core. restoredDACWord is whatever
// persistence handed back at startup (already defaulted to DACMidpoint if
// the NV cell was uninitialized — see DACWordFromNV), and the sample buffer
// starts armed to skip its first window, per the boot sequence in 4.H.
func NewCore(restoredDACWord DACWord) *Core {
	return &Core{
		Buffer:    NewSampleBuffer(),
		Ctrl:      NewController(restoredDACWord),
		windowPos: WindowSeconds,
	}
}

// EdgeResult reports what happened on one PPS edge. WindowClosed is false
// for every edge that isn't the Wth one; callers should only look at the
// other fields when it's true.
type EdgeResult struct {
	WindowClosed bool

	// Outlier is set when this window's delta exceeded MaxDelta. When set,
	// no other field below is meaningful: the reference firmware skips lock
	// classification and the PI update entirely for an outlier window,
	// touching only the diagnostic erroneous-delta register (4.B, 7).
	Outlier        bool
	ErroneousDelta Delta

	Drift    SampleDrift
	PhaseAvg PhaseMilliunits
	Lock     LockGrade

	// NoSample is set when the window closed with zero valid samples in
	// the buffer (e.g. still in the post-lock skip window). The lock grade
	// above is still meaningful (it will be LockNone), but no PI update
	// ran and no DAC word was produced (4.E: "only when at least one valid
	// sample is available").
	NoSample bool

	CurrentError CurrentError
	Adjustment   int64
	DACWord      DACWord
}

// OnFixChange records a new GPS fix reading and, if it differs from the
// current one, performs the 4.D reset: the sample buffer is re-armed to
// skip its next window, the window countdown restarts, the PI integrator
// clears, and the lock grade drops to None. TrimPercent (and therefore the
// DAC word) is untouched in either direction — that is the holdover
// contract (9.Holdover vs. integrator reset). The phase accumulator is also
// left alone: the reference firmware's handleGPS() never clears it either,
// relying on the skip marker to discard whatever the next window computes.
func (c *Core) OnFixChange(fix GpsStatus) (changed bool) {
	if !c.Fix.Update(fix) {
		return false
	}
	c.Buffer.Reset()
	c.windowPos = WindowSeconds
	c.Ctrl.ResetIntegrator()
	c.Lock = LockNone
	return true
}

// OnEdge processes one PPS edge: tick is the extended 32-bit tick captured
// for this edge (4.A), phaseADC is the raw phase-comparator reading taken
// at the same edge (4.C). It implements 4.B's per-edge algorithm, steps 3-5,
// plus the window-close handling of 4.C, 4.E and 4.F.
func (c *Core) OnEdge(tick Tick, phaseADC uint16) EdgeResult {
	if c.Fix.Status() == Unlocked {
		// Not locked: just keep the time reference fresh so that the
		// first window after a relock isn't computed against a stale
		// tick. The skip-one marker (armed by OnFixChange) discards
		// whatever that first window computes regardless.
		c.prevTick = tick
		c.havePrevTick = true
		return EdgeResult{}
	}

	c.windowPos--
	if c.windowPos > 0 {
		c.Phase.Add(phaseADC)
		return EdgeResult{}
	}
	c.windowPos = WindowSeconds

	var delta Delta
	if c.havePrevTick {
		delta = Delta(tick.Sub(c.prevTick) - WindowSeconds*NominalClock)
	}
	c.prevTick = tick
	c.havePrevTick = true

	outlier, erroneous := c.Buffer.Observe(delta)
	if outlier {
		// The original skips this edge's phase reading entirely and
		// leaves phase_error_sum untouched rather than averaging and
		// clearing it: an outlier edge never reaches the
		// phase_error_sum += line, so the accumulator just carries
		// into the next successful window (GPSDO_v3.c:583-615).
		return EdgeResult{WindowClosed: true, Outlier: true, ErroneousDelta: erroneous}
	}

	c.Phase.Add(phaseADC)
	phaseAvg := c.Phase.Close()

	drift := SampleDriftOf(c.Buffer.Sum())
	c.Lock = ClassifyLock(c.Buffer.Full(), drift)

	result := EdgeResult{
		WindowClosed: true,
		Drift:        drift,
		PhaseAvg:     phaseAvg,
		Lock:         c.Lock,
	}

	if c.Buffer.Len() <= 0 {
		result.NoSample = true
		return result
	}

	current := CombinedError(drift, phaseAvg)
	adj, dacWord := c.Ctrl.Update(current)
	result.CurrentError = current
	result.Adjustment = adj
	result.DACWord = dacWord
	return result
}
