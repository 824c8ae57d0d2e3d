package board

import (
	"fmt"
	"machine"

	"github.com/chiefMarlin/tinygo-drivers/si5351"

	"gpsdo/internal/discipline/support"
)

// referenceClockHz is the Si5351's own crystal reference, the f0 parameter
// to support.NewSi5351Config.
const referenceClockHz = 25e6

// Distribution drives the Si5351 clock generator that fans the disciplined
// 10MHz out to auxiliary bench taps (frequency counters, a reference scope
// channel) the main oscillator output can't drive directly. This is
// additive: a failure here must never affect the discipline loop, so every
// method returns its error for logging rather than panicking, unlike the
// teacher's setupClock() which panics on any I2C fault during bring-up.
type Distribution struct {
	gen si5351.Device
}

// NewDistribution configures the Si5351 over I2C0. It returns an error
// rather than panicking: losing the auxiliary outputs is cosmetic, not a
// reason to refuse to discipline the main oscillator.
func NewDistribution() (*Distribution, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
		return nil, fmt.Errorf("distribution: configure I2C0: %w", err)
	}
	gen := si5351.New(machine.I2C0)

	connected, err := gen.Connected()
	if err != nil {
		return nil, fmt.Errorf("distribution: probe si5351: %w", err)
	}
	if !connected {
		return nil, fmt.Errorf("distribution: si5351 not responding on I2C0")
	}
	if err := gen.Configure(); err != nil {
		return nil, fmt.Errorf("distribution: configure si5351: %w", err)
	}
	return &Distribution{gen: gen}, nil
}

// SetTap configures output channel 0 for freqHz, computing the PLL and
// multisynth fractional-divider parameters with the same continued-fraction
// search the teacher used for its own WSPR output frequency, just aimed at
// the handful of round lab-bench tap frequencies this firmware supports
// instead of an amateur-radio band plan.
func (d *Distribution) SetTap(freqHz float64) error {
	cfg, err := support.NewSi5351Config(referenceClockHz, 0, freqHz)
	if err != nil {
		return fmt.Errorf("distribution: compute dividers for %.0fHz: %w", freqHz, err)
	}

	a0, b0, c0 := cfg.PLLParams()
	if err := d.gen.ConfigurePLL(si5351.PLL_A, a0, b0, c0); err != nil {
		return fmt.Errorf("distribution: configure PLL A: %w", err)
	}

	a1, b1, c1, _ := cfg.MultisynthParams()
	if err := d.gen.ConfigureMultisynth(0, si5351.PLL_A, a1, b1, c1); err != nil {
		return fmt.Errorf("distribution: configure tap: %w", err)
	}
	return d.gen.EnableOutputs()
}
