package discipline

import "testing"

func Test_DACWordFromNV_uninitialized(t *testing.T) {
	if got := DACWordFromNV(0xFFFF); got != DACMidpoint {
		t.Errorf("DACWordFromNV(0xFFFF) = 0x%x, want 0x%x", got, DACMidpoint)
	}
	if got := DACWordFromNV(0x1234); got != 0x1234 {
		t.Errorf("DACWordFromNV(0x1234) = 0x%x, want 0x1234", got)
	}
}

func Test_ShouldPersist(t *testing.T) {
	cases := []struct {
		name    string
		current CurrentError
		stored  DACWord
		trim    DACWord
		want    bool
	}{
		{"near steady-state and stale stored word", 50, 0x8000, 0x8200, true},
		{"not near steady-state", 200, 0x8000, 0x8200, false},
		{"steady-state but stored word close enough", 50, 0x8000, 0x8040, false},
		{"boundary: error just under bound, delta just over offset", 99, 0x8000, DACWord(0x8000 + EEUpdateOffset + 1), true},
		{"boundary: delta exactly at offset does not trigger", 50, 0x8000, DACWord(0x8000 + EEUpdateOffset), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ShouldPersist(c.current, c.stored, c.trim); got != c.want {
				t.Errorf("ShouldPersist(%d, 0x%x, 0x%x) = %v, want %v", c.current, c.stored, c.trim, got, c.want)
			}
		})
	}
}
