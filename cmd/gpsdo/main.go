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

package main

import (
	"time"

	"gpsdo/internal/board"
	"gpsdo/internal/discipline"
)

const diagEnabled = true

// pollPeriod bounds how long a second's worth of PPS silence can go before
// the watchdog gets petted again (5.Blocking): short enough to stay well
// inside watchdogTimeout, long enough not to spin the foreground loop.
const pollPeriod = 100 * time.Millisecond

func main() {
	hw, err := board.Setup()
	if err != nil {
		panic("failed setup: " + err.Error())
	}

	diag := board.NewDiag(diagEnabled)
	diag.Start()
	diag.ResetCause(hw.Cause)

	if hw.Distribution != nil {
		// A 1MHz bench reference is the most generally useful default tap;
		// an operator who wants a different frequency reconfigures from the
		// REPL this build doesn't have, so this is a best-effort default
		// rather than something this firmware exposes a control for.
		hw.Distribution.SetTap(1e6)
	}

	core := discipline.NewCore(hw.RestoredDACWord)
	stored := hw.RestoredDACWord
	board.WriteDAC(stored)

	ticker := time.NewTicker(pollPeriod)
	for {
		select {
		case <-ticker.C:
			board.PetWatchdog()
			board.PollSerial()
			board.UpdateLEDs(core.Fix.Status(), core.Lock)

		case status := <-board.FixUpdates():
			diag.FixChange(status)
			core.OnFixChange(status)
			board.UpdateLEDs(status, core.Lock)

		case edge := <-board.Edges():
			diag.PhaseSample(edge.PhaseADC)
			result := core.OnEdge(edge.Tick, edge.PhaseADC)

			if !result.WindowClosed {
				continue
			}
			if result.Outlier {
				diag.Outlier(result.ErroneousDelta)
				continue
			}
			diag.Window(result, core.Buffer.Samples(), core.Ctrl.TotalError, core.Ctrl.TrimPercent)
			if result.NoSample {
				continue
			}

			board.WriteDAC(result.DACWord)

			if discipline.ShouldPersist(result.CurrentError, stored, core.Ctrl.TrimPercent.DACWord()) {
				stored = core.Ctrl.TrimPercent.DACWord()
				board.WriteTrim(stored)
				diag.NVWrite(stored)
			}
		}
	}
}
