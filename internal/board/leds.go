package board

import (
	"machine"
	"time"

	"gpsdo/internal/discipline"
)

// Two lock-grade indicators (6, LEDs): while Unlocked they blink together at
// 2Hz; while Locked3D they display LockGrade as a two-bit binary code.
const (
	led0Pin = machine.Pin(14)
	led1Pin = machine.Pin(15)
)

const blinkPeriod = 250 * time.Millisecond // 2Hz: toggles every 250ms, 250ms on then 250ms off

var lastBlinkToggle time.Time
var blinkOn bool

// InitLEDs configures both LED pins and leaves them off, mirroring the
// original's DDRB setup immediately followed by PORTB = 0.
func InitLEDs() {
	led0Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led1Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led0Pin.Low()
	led1Pin.Low()
}

// UpdateLEDs should be called once per foreground loop iteration with the
// current fix state and, when locked, the current lock grade.
func UpdateLEDs(status discipline.GpsStatus, grade discipline.LockGrade) {
	if status != discipline.Locked3D {
		now := time.Now()
		if now.Sub(lastBlinkToggle) >= blinkPeriod {
			blinkOn = !blinkOn
			lastBlinkToggle = now
		}
		led0Pin.Set(blinkOn)
		led1Pin.Set(blinkOn)
		return
	}
	led0Pin.Set(grade&0x1 != 0)
	led1Pin.Set(grade&0x2 != 0)
}
