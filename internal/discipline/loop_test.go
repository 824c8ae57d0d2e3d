package discipline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLockedWindow feeds one full WindowSeconds' worth of PPS edges at the
// given per-window tick delta, with phase held at the midpoint, and returns
// the final edge's result (the one where the window closes).
func runLockedWindow(t *testing.T, c *Core, tick *Tick, deltaPerWindow int64) EdgeResult {
	t.Helper()
	var last EdgeResult
	step := Tick(NominalClock) // 1 second of ticks per edge
	for i := 0; i < WindowSeconds; i++ {
		*tick += step
		if i == WindowSeconds-1 {
			*tick += Tick(int64(deltaPerWindow))
		}
		last = c.OnEdge(*tick, PhaseMidpoint)
	}
	require.True(t, last.WindowClosed, "expected the final edge of a %d-second window to close it", WindowSeconds)
	return last
}

// Scenario 1: cold start from uninitialized EEPROM.
func Test_Scenario_ColdStart(t *testing.T) {
	restored := DACWordFromNV(0xFFFF)
	assert.Equal(t, DACWord(DACMidpoint), restored)

	c := NewCore(restored)
	assert.Equal(t, TrimPercent(0), c.Ctrl.TrimPercent)
	assert.Equal(t, Unlocked, c.Fix.Status())

	changed := c.OnFixChange(Locked3D)
	assert.True(t, changed)
	assert.Equal(t, Locked3D, c.Fix.Status())
	// no DAC change is implied by a lock transition alone.
	assert.Equal(t, TrimPercent(0), c.Ctrl.TrimPercent)

	var tick Tick
	result := runLockedWindow(t, c, &tick, 0)
	assert.True(t, result.WindowClosed)
	assert.True(t, result.NoSample, "first window after lock must be the skipped warm-up window")
}

// Scenario 2: steady state with zero error.
func Test_Scenario_SteadyStateZeroError(t *testing.T) {
	c := NewCore(DACMidpoint)
	c.OnFixChange(Locked3D)

	var tick Tick
	// first window is the skip marker.
	r := runLockedWindow(t, c, &tick, 0)
	require.True(t, r.NoSample)

	var lastStored DACWord = DACMidpoint
	var last EdgeResult
	for i := 0; i < SampleCount; i++ {
		last = runLockedWindow(t, c, &tick, 0)
	}
	assert.False(t, last.NoSample)
	assert.Equal(t, SampleDrift(0), last.Drift)
	assert.Equal(t, CurrentError(0), last.CurrentError)
	assert.Equal(t, int64(0), last.Adjustment)
	assert.Equal(t, DACWord(DACMidpoint), last.DACWord)
	assert.Equal(t, LockBest, last.Lock)
	assert.False(t, ShouldPersist(last.CurrentError, lastStored, last.DACWord),
		"drift criterion is met but the NV-delta criterion is not: no write should occur")
}

// Scenario 3: step frequency error, monotonic convergence.
func Test_Scenario_StepFrequencyError(t *testing.T) {
	c := NewCore(DACMidpoint)
	c.OnFixChange(Locked3D)

	var tick Tick
	require.True(t, runLockedWindow(t, c, &tick, 0).NoSample) // warm-up

	// Fill the buffer with +100 delta windows first so sample_drift settles
	// at S*10/K = (10*100)*10/10 = 1000 (100.0 ticks/window in one-decimal
	// fixed point) before checking the monotonic trend of trim.
	for i := 0; i < SampleCount; i++ {
		runLockedWindow(t, c, &tick, 100)
	}

	prevTrim := c.Ctrl.TrimPercent
	for n := 1; n <= 10; n++ {
		r := runLockedWindow(t, c, &tick, 100)
		require.False(t, r.NoSample)
		assert.Equal(t, SampleDrift(1000), r.Drift)
		assert.Equal(t, CurrentError(10000), r.CurrentError)
		// DAC_SIGN = -1: a persistent positive drift must push trim_percent
		// upward monotonically (4.E, Scenario 3).
		assert.Greater(t, int64(c.Ctrl.TrimPercent), int64(prevTrim),
			"trim_percent must increase monotonically under a persistent +100 drift")
		prevTrim = c.Ctrl.TrimPercent
	}
}

// Scenario 4: outlier rejection.
func Test_Scenario_OutlierRejection(t *testing.T) {
	c := NewCore(DACMidpoint)
	c.OnFixChange(Locked3D)

	var tick Tick
	require.True(t, runLockedWindow(t, c, &tick, 0).NoSample) // warm-up

	lenBefore := c.Buffer.Len()
	errBefore := c.Ctrl.TotalError

	r := runLockedWindow(t, c, &tick, 3000) // > MaxDelta(2500)
	assert.True(t, r.Outlier)
	assert.Equal(t, Delta(3000), r.ErroneousDelta)
	assert.Equal(t, lenBefore, c.Buffer.Len(), "outlier must not be stored in the buffer")
	assert.Equal(t, errBefore, c.Ctrl.TotalError, "outlier must not touch the integrator")

	// next window proceeds normally.
	r = runLockedWindow(t, c, &tick, 0)
	assert.False(t, r.Outlier)
	assert.Equal(t, lenBefore+1, c.Buffer.Len())
}

// An outlier window must not touch the phase accumulator: the reference
// firmware's main loop `continue`s as soon as it sees a nonzero
// erroneous_delta, before the phase_error_sum += line runs, and never
// resets the sum for that edge either (GPSDO_v3.c:583-615). The sum must
// carry unchanged into the next successful window.
func Test_Scenario_OutlierLeavesPhaseAccumulatorUntouched(t *testing.T) {
	c := NewCore(DACMidpoint)
	c.OnFixChange(Locked3D)

	var tick Tick
	require.True(t, runLockedWindow(t, c, &tick, 0).NoSample) // warm-up

	step := Tick(NominalClock)
	const readingBelowMidpoint = PhaseMidpoint - 10 // +10 phase error per edge
	for i := 0; i < WindowSeconds-1; i++ {
		tick += step
		r := c.OnEdge(tick, readingBelowMidpoint)
		assert.False(t, r.WindowClosed)
	}
	wantSum := int64(10) * (WindowSeconds - 1)
	require.Equal(t, wantSum, c.Phase.sum, "phase accumulator must hold every non-boundary edge's reading")

	tick += step + 3000 // force an outlier on the window-closing edge
	r := c.OnEdge(tick, readingBelowMidpoint)
	require.True(t, r.Outlier)

	assert.Equal(t, wantSum, c.Phase.sum,
		"an outlier edge must neither add its own reading nor close (and so reset) the phase accumulator")
}

// Scenario 5: lock loss and recovery.
func Test_Scenario_LockLossAndRecovery(t *testing.T) {
	c := NewCore(DACMidpoint)
	c.OnFixChange(Locked3D)

	var tick Tick
	runLockedWindow(t, c, &tick, 0) // warm-up
	for i := 0; i < SampleCount; i++ {
		runLockedWindow(t, c, &tick, 0)
	}
	require.Equal(t, LockBest, c.Lock)
	dacBeforeUnlock := c.Ctrl.TrimPercent.DACWord()

	changed := c.OnFixChange(Unlocked)
	assert.True(t, changed)
	assert.Equal(t, LockNone, c.Lock)
	assert.Equal(t, TotalError(0), c.Ctrl.TotalError)
	assert.Equal(t, 0, c.Buffer.Len())
	assert.Equal(t, dacBeforeUnlock, c.Ctrl.TrimPercent.DACWord(), "DAC word must be retained across an unlock (holdover)")

	// some ticks pass while unlocked; prevTick tracking must not panic or
	// corrupt state.
	tick += 10 * NominalClock
	c.OnEdge(tick, PhaseMidpoint)

	changed = c.OnFixChange(Locked3D)
	assert.True(t, changed)

	r := runLockedWindow(t, c, &tick, 0)
	assert.True(t, r.NoSample, "the window right after a relock must be the skipped warm-up window")
}

// Scenario 6: NV write gate.
func Test_Scenario_NVWriteGate(t *testing.T) {
	stored := DACWord(0x8000)

	assert.True(t, ShouldPersist(50, stored, DACWord(0x8000+200)))
	assert.False(t, ShouldPersist(200, stored, DACWord(0x8000+200)))
}
