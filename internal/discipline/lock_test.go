package discipline

import "testing"

func Test_ClassifyLock(t *testing.T) {
	cases := []struct {
		full  bool
		drift SampleDrift
		want  LockGrade
	}{
		{false, 0, LockNone},
		{true, 1250, LockNone},
		{true, -1250, LockNone},
		{true, 1249, LockGood},
		{true, 125, LockGood},
		{true, 124, LockBetter},
		{true, 25, LockBetter},
		{true, 24, LockBest},
		{true, 0, LockBest},
		{true, -24, LockBest},
	}
	for _, c := range cases {
		if got := ClassifyLock(c.full, c.drift); got != c.want {
			t.Errorf("ClassifyLock(%v, %d) = %s, want %s", c.full, c.drift, got, c.want)
		}
	}
}
