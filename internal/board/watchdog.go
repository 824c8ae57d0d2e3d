package board

import (
	"machine"
	"time"
)

// watchdogTimeout matches the original's WDTO_500MS (4.H): short enough that
// any path long enough to miss a pet reboots well before it can do harm.
const watchdogTimeout = 500 * time.Millisecond

// InitWatchdog enables the watchdog. Must be called as early in boot as
// possible, before any peripheral setup that could itself hang (4.H).
func InitWatchdog() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: uint32(watchdogTimeout.Milliseconds())})
	machine.Watchdog.Start()
}

// PetWatchdog resets the watchdog countdown. The foreground loop calls it
// on every pollPeriod tick; nothing else in this firmware calls it. The ADC
// busy-wait in the PPS ISR is deliberately left un-petted, exactly as the
// original left it, since it is bounded by hardware conversion time well
// inside the watchdog budget.
func PetWatchdog() {
	machine.Watchdog.Update()
}
