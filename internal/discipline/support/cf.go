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

// Package support holds small, hardware-independent numeric helpers shared
// by the discipline loop and by board's output-distribution tap.
package support

/*
NearestFraction finds the best approximation c/d ~ a/b such that d <=
maxDenominator. Returns c, d and the error a/b - c/d as floating point.

This is the same continued-fraction search used upstream to divide a clock
generator's VCO down to an exact output frequency. Here it serves a
different multisynth: board/distribution.go uses it to pick the Si5351
divider for a sub-multiple output tap off the disciplined 10MHz, where the
"numerator" being approximated drifts by a few parts in 1e9 as the
discipline loop steers the OCXO, and an exact rational divider keeps that
tap's phase aligned with the main output instead of drifting independently.
*/
func NearestFraction(a, b, maxDenominator uint64) (c, d uint64, eps float64) {
	c, d = continuedFraction(a, b, 0, 1, maxDenominator)
	eps = float64(a)/float64(b) - float64(c)/float64(d)
	return c, d, eps
}

/*
continuedFraction finds a continued fraction approximation for a/b,
returning the rational value of the continued fraction as two integers.

Any rational a/b can be written as

	cf(a, b) = floor(a/b) + rem(a/b) / b

and that second term inverted gives

	cf(a, b) = floor(a/b) + 1 / cf(b, rem(a/b))

These continued-fraction approximations are the best rational
approximations for the resulting denominator. The only choices left are
when to quit and how to compute the rational representation as the
recursion unwinds; termination happens when the denominator would exceed
maxDenominator, tracked via the accumulators e, f (which NearestFraction
starts at 0 and 1 respectively).
*/
func continuedFraction(a, b, e, f, maxDenominator uint64) (c, d uint64) {
	term := a / b
	denom := f + term*e
	if denom > maxDenominator {
		return 1, 0
	}
	ax := a - term*b
	if ax == 0 {
		return term, 1
	}
	cx, dx := continuedFraction(b, ax, denom, e, maxDenominator)
	return term*cx + dx, cx
}
