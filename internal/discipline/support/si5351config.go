/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package support

import (
	"errors"
	"fmt"
	"math"
)

// Si5351Config holds the PLL and multisynth fractional-divider parameters
// for one Si5351 output channel. board/distribution.go computes one of
// these per auxiliary tap frequency rather than hand-picking dividers,
// since the output tap frequencies are a handful of common lab references
// (1MHz, 100kHz, ...), not the single fixed output the teacher's WSPR
// transmitter needed.
type Si5351Config struct {
	f0, pll, f                float64 // clock, pll and output frequencies
	a0, b0, c0, a1, b1, c1, r uint32  // chip parameters
	eps                       float64 // error in output frequency (Hz)
}

// PLLParams returns the a+b/c feedback ratio parameters for ConfigurePLL.
func (r Si5351Config) PLLParams() (a, b, c uint32) { return r.a0, r.b0, r.c0 }

// MultisynthParams returns the a+b/c multisynth divider parameters and the
// output R-divider for ConfigureMultisynth.
func (r Si5351Config) MultisynthParams() (a, b, c, rDiv uint32) { return r.a1, r.b1, r.c1, r.r }

/*
NewSi5351Config computes configuration parameters for the PLL and
multi-synth fractional dividers in a Si5351 clock generator.

f0 is the internal clock frequency (in Hz) for the generator (typically 25
or 27MHz), pll is the PLL frequency (in Hz) in the range of 600..900MHz, f
is the desired output frequency (in Hz). If pll is zero, a suitable value
is chosen.

The output satisfies f = f0 * (a0 + b0/c0) / (a1 + b1/c1) / r, where r is
the power-of-two output R divider, to within as small a tolerance as
possible.

An error is returned if the routine cannot find good parameters for the
dividers or if the input is invalid.
*/
func NewSi5351Config(f0, pll, f float64) (Si5351Config, error) {
	if f0 < 10e6 || f0 > 27e6 {
		return Si5351Config{}, errors.New("si5351config: invalid clock frequency")
	}
	if f > 200e6 {
		return Si5351Config{}, errors.New("si5351config: output frequency > 200MHz")
	}

	if f > 150e6 {
		pll = 4 * f
	} else if f >= 100e6 {
		pll = 6 * f
	} else if pll == 0 {
		if f < 5e6 {
			pll = 600e6
		} else {
			pll = 800e6
		}
	} else if pll < 600e6 || pll > 900e6 {
		return Si5351Config{}, errors.New("si5351config: pll is out of range")
	}
	z := pll / f0
	if z < 15 {
		return Si5351Config{}, errors.New("si5351config: feedback ratio too small")
	}
	if z > 90 {
		return Si5351Config{}, errors.New("si5351config: feedback ratio too big")
	}
	b, c, _ := NearestFraction(uint64(z*1e12), 1_000_000_000_000, 1<<20)
	r := Si5351Config{
		f0:  f0,
		pll: pll,
		f:   f,
		a0:  uint32(b / c),
		b0:  uint32(b % c),
		c0:  uint32(c),
	}

	z = f0 * (float64(r.a0) + float64(r.b0)/float64(r.c0)) / f
	if !near(z, 4, 1e-9) && !near(z, 6, 1e-9) && z < 8 {
		return Si5351Config{}, fmt.Errorf("si5351config: output multi-synth ratio too small: %.5g %v", z-6, r)
	}
	r.r = 1
	for z/float64(r.r) > 2048 && r.r <= 128 {
		r.r = r.r * 2
	}
	if r.r > 128 {
		return Si5351Config{}, errors.New("si5351config: output divider ratio too big, f_out too low")
	}
	b, c, _ = NearestFraction(uint64(z*1e12/float64(r.r)), 1_000_000_000_000, 1<<20)
	r.a1 = uint32(b / c)
	r.b1 = uint32(b % c)
	r.c1 = uint32(c)

	r.f = f0 * (float64(r.a0) + float64(r.b0)/float64(r.c0)) / (float64(r.a1) + float64(r.b1)/float64(r.c1)) / float64(r.r)
	r.eps = f - r.f
	if math.Abs(r.eps)/f > 1e-12 {
		return Si5351Config{}, errors.New("si5351config: frequency error is out of range")
	}
	return r, nil
}

func near(a float64, b float64, eps float64) bool {
	return math.Abs(a-b) <= eps
}
