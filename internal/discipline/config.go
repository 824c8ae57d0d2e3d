// Copyright 2025 Ted Dunning
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package discipline is the GPS discipline loop: the rolling-window drift
// estimator, the phase accumulator, the PI controller and the lock
// classifier that together steer an OCXO's DAC word from a 1pps reference.
//
// Nothing in this package touches a hardware register. It is driven by
// plain values (ticks, ADC codes, fix transitions) supplied by package
// board, and it returns plain values (a DAC word, a lock grade, a
// persist-or-not decision) for board to act on.
package discipline

// Compile-time tuning constants. These mirror the #define block at the top
// of the reference firmware almost exactly; the values are the same because
// the OCXO, DAC and GPS receiver this was ported from haven't changed.
const (
	// NominalClock is the oscillator's nominal tick rate, ticks/second.
	NominalClock = 10_000_000

	// WindowSeconds (W) is the frequency-sample window length, in seconds.
	// Must be odd (4.B) so a +-1 tick quantization can't alias into an
	// alternating +1/-1 pattern across adjacent windows, and small enough
	// that WindowSeconds*NominalClock fits a uint32 with margin (<=~400s).
	WindowSeconds = 25

	// SampleCount (K) is the rolling window depth.
	SampleCount = 10

	// MaxDelta is the outlier bound on a single window's delta, in ticks.
	// At SAMPLE_SECONDS=25 this is about 10ppm.
	MaxDelta = 2500

	// PhaseMidpoint (M) is the ADC code that represents zero phase error.
	PhaseMidpoint = 512

	// KP and KI are the proportional and integral gains, in units of
	// 1e-6 DAC-counts per error-count-per-window.
	KP = 31400
	KI = 13

	// DACSign captures the DAC's inverting relationship to frequency: a
	// larger dac_word commands a *lower* oscillator frequency.
	DACSign = -1

	// PhaseWeight is the empirically-tuned divisor that blends the
	// phase-error contribution into current_error (4.E). Spec's design
	// notes flag this as a tuned mix rather than a derivation; it is
	// named here instead of left as a bare "14" at the call site.
	PhaseWeight = 14

	// EEUpdateOffset (EE_UPDATE_OFFSET) gates persistence: the stored word
	// must differ from the live trim by more than this before a write is
	// worth the flash wear. ~1ppb.
	EEUpdateOffset = 75

	// SteadyStateErrorBound gates persistence on the other side: the loop
	// must be within this error magnitude of dead-on before a write is
	// considered (4.G condition 1).
	SteadyStateErrorBound = 100

	// DACMidpoint is the power-up / uninitialized DAC word (0x8000).
	DACMidpoint = 0x8000
)

// Lock grade thresholds, in one-decimal fixed-point ticks/window (4.F). At
// WindowSeconds=25 one tick per window is 4ppb.
const (
	lockThresholdNone   = 1250 // >= this: no lock (125 ticks/window, ~500ppb)
	lockThresholdGood   = 125  // >= this and < None: Good (12.5 ticks/window, ~50ppb)
	lockThresholdBetter = 25   // >= this and < Good: Better (2.5 ticks/window, ~10ppb)
	// below lockThresholdBetter: Best
)
