package discipline

import "testing"

func Test_trimPercentFromDACWord_roundTrip(t *testing.T) {
	c := NewController(DACMidpoint)
	if c.TrimPercent != 0 {
		t.Errorf("TrimPercent from midpoint word = %d, want 0", c.TrimPercent)
	}
	if got := c.TrimPercent.DACWord(); got != DACMidpoint {
		t.Errorf("DACWord() = 0x%x, want 0x%x", got, DACMidpoint)
	}
}

func Test_DACWord_clamps(t *testing.T) {
	cases := []struct {
		trim TrimPercent
		want DACWord
	}{
		{TrimPercent(-0x8000 * 100), 0},
		{TrimPercent(-0x9000 * 100), 0},       // underflow clamps to 0
		{TrimPercent(0x7FFF * 100), 0xFFFF},   // top of range
		{TrimPercent(0xFFFFFF * 100), 0xFFFF}, // overflow clamps to 0xFFFF
	}
	for _, c := range cases {
		if got := c.trim.DACWord(); got != c.want {
			t.Errorf("TrimPercent(%d).DACWord() = 0x%x, want 0x%x", c.trim, got, c.want)
		}
	}
}

func Test_CombinedError(t *testing.T) {
	if got := CombinedError(0, 0); got != 0 {
		t.Errorf("CombinedError(0,0) = %d, want 0", got)
	}
	// sample_drift 100 is 10.0 ticks/window (it already carries one
	// decimal digit, 4.E), current_error = 10*100 = 1000 with zero phase.
	if got := CombinedError(100, 0); got != 1000 {
		t.Errorf("CombinedError(100,0) = %d, want 1000", got)
	}
}

func Test_Controller_zeroErrorHolds(t *testing.T) {
	c := NewController(DACMidpoint)
	before := c.TrimPercent
	_, dac := c.Update(0)
	if c.TrimPercent != before {
		t.Errorf("TrimPercent moved on zero error: %d -> %d", before, c.TrimPercent)
	}
	if dac != DACMidpoint {
		t.Errorf("DACWord on zero error = 0x%x, want 0x%x", dac, DACMidpoint)
	}
}

func Test_Controller_stepConverges(t *testing.T) {
	c := NewController(DACMidpoint)
	var prev TrimPercent = c.TrimPercent
	for n := 1; n <= 10; n++ {
		_, _ = c.Update(1000)
		// DAC_SIGN=-1: trim_percent -= (-1)*adj = trim_percent increases
		// monotonically for a persistent positive error.
		if c.TrimPercent <= prev {
			t.Fatalf("window %d: TrimPercent did not increase monotonically: %d -> %d", n, prev, c.TrimPercent)
		}
		prev = c.TrimPercent
	}
}
