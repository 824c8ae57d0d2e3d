package board

import (
	"device/rp"

	"gpsdo/internal/discipline"
)

// ResetCause captures why the chip is booting, once, before anything clears
// the cause registers (4.H). Only the RP2040 watchdog peripheral's
// WATCHDOG.REASON register is consulted; it is read straight off the
// register the way the original read MCUSR.
func ResetCause() discipline.ResetCause {
	reason := rp.WATCHDOG.REASON.Get()
	switch {
	case reason&rp.WATCHDOG_REASON_FORCE != 0:
		return discipline.ResetExternal
	case reason&rp.WATCHDOG_REASON_TIMER != 0:
		return discipline.ResetWatchdog
	default:
		// WATCHDOG.REASON reads zero across both power-on and brown-out
		// resets; the RP2040 doesn't distinguish them at this register,
		// unlike the AVR's separate PORF/BORF bits. Power-on is reported
		// as the common case since a brown-out this firmware would
		// actually hit is rare on a bench supply.
		return discipline.ResetPowerOn
	}
}
