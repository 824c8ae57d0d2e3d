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

// Package board holds everything the discipline loop treats as an external
// collaborator: the hardware counter, the PPS capture path, the ADC, the DAC,
// non-volatile storage, the watchdog, the status LEDs and the diagnostic
// serial port. None of it runs the PI math; it only produces the
// discipline.Tick/phase readings the core consumes and carries out the
// DAC/NV-word/LED effects the core commands.
package board

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"

	"gpsdo/internal/discipline"
	"gpsdo/src/machine_x"
)

/*
Timekeeper realizes discipline.Tick on the RP2040. There is no free-running
32-bit counter clocked straight off the OCXO, so the 32-bit tick is composed
the same way the original AVR firmware composed it out of TIMER1: a 16-bit
hardware counter running at the oscillator rate, plus a software high half
incremented on wrap.

PWM0 is configured in "rising edge of B input" divider mode with TOP at
0xFFFF, fed from the disciplined 10MHz on its B pin. That makes PWM0.CTR a
free-running 16-bit counter at the oscillator rate — the RP2040 equivalent
of AVR Timer1 in normal mode. PWM0's own wrap interrupt stands in for
Timer1's TOV1: every wrap, the software high half increments.

The PPS line is wired to a GPIO configured for a rising-edge interrupt
instead of Timer1's input-capture unit; there is no RP2040 peripheral that
latches a PWM counter on an external GPIO edge, so capture is emulated by
reading PWM0.CTR from the GPIO ISR as quickly as possible. The same
overflow/capture race that Timer1's ICR1 vs. TOV1 had to resolve applies
here between the GPIO ISR and the PWM wrap ISR, and is resolved the same
way (4.A).
*/

var hibits volatile.Register32

// InitTimekeeper configures PWM0 as the 16-bit low half of the tick counter
// and enables its wrap interrupt to drive the software high half.
func InitTimekeeper() {
	machine.Pin(1).Configure(machine.PinConfig{Mode: machine.PinPWM}) // GPIO1 is PWM0's B input
	pwm0 := machine_x.PWM0
	pwm0.SetDivMode(rp.PWM_CH0_CSR_DIVMODE_RISE)
	pwm0.SetClockDiv(1, 0)
	pwm0.SetTop(0xFFFF)
	pwm0.SetCounter(0)
	hibits.Set(0)
	pwm0.Enable(true)

	irq := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, func(i interrupt.Interrupt) {
		rp.PWM.INTR.Set(rp.PWM_INTR_CH0)
		hibits.Set(hibits.Get() + 1)
	})
	rp.PWM.INTE.SetBits(rp.PWM_INTE_CH0)
	irq.Enable()
}

// captureTick reads the low 16 bits off PWM0 and combines them with the
// software high half, resolving the overflow/capture race per 4.A: if a PWM0
// wrap interrupt is pending and the captured low bits look post-wrap (below
// mid-range), the wrap that produced them hasn't been serviced yet, so the
// high half must be incremented locally for this read.
func captureTick() discipline.Tick {
	pwm0 := machine_x.PWM0
	low := pwm0.Counter()
	high := hibits.Get()
	if rp.PWM.INTS.HasBits(rp.PWM_INTS_CH0) && low < 0x8000 {
		high++
	}
	return discipline.Tick(high<<16 | low&0xFFFF)
}
