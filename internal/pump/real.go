//go:build linux

package pump

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealActuator drives the pump relay and indicator LED on actual hardware.
type RealActuator struct {
	chip     *gpiocdev.Chip
	pumpLine *gpiocdev.Line
	indLine  *gpiocdev.Line
	outputOn bool
}

// NewRealActuator requests the pump and indicator lines on gpiochip0.
// The initial state is read back from the pump line so a restart mid-session
// sees the output the previous run left behind.
func NewRealActuator(pinPump, pinIndicator int) (*RealActuator, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Request as-is first and read the level back: the relay must not
	// glitch off just because the process restarted mid-session.
	pumpLine, err := chip.RequestLine(pinPump, gpiocdev.AsIs)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pump pin %d: %w", pinPump, err)
	}
	v, err := pumpLine.Value()
	if err != nil {
		pumpLine.Close()
		chip.Close()
		return nil, fmt.Errorf("read back pump pin %d: %w", pinPump, err)
	}
	if err := pumpLine.Reconfigure(gpiocdev.AsOutput(v)); err != nil {
		pumpLine.Close()
		chip.Close()
		return nil, fmt.Errorf("reconfigure pump pin %d as output: %w", pinPump, err)
	}

	indLine, err := chip.RequestLine(pinIndicator, gpiocdev.AsOutput(v))
	if err != nil {
		pumpLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", pinIndicator, err)
	}

	return &RealActuator{chip: chip, pumpLine: pumpLine, indLine: indLine, outputOn: v != 0}, nil
}

// SetOutput drives the pump line and the indicator together.
func (a *RealActuator) SetOutput(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := a.pumpLine.SetValue(v); err != nil {
		return fmt.Errorf("set pump output: %w", err)
	}
	if err := a.indLine.SetValue(v); err != nil {
		return fmt.Errorf("set indicator: %w", err)
	}
	a.outputOn = on
	return nil
}

// IsOutputOn reports the current output state.
func (a *RealActuator) IsOutputOn() bool {
	return a.outputOn
}

// Close releases GPIO resources without changing the output level.
func (a *RealActuator) Close() error {
	var errs []error
	if a.pumpLine != nil {
		if err := a.pumpLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pump line: %w", err))
		}
	}
	if a.indLine != nil {
		if err := a.indLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close indicator line: %w", err))
		}
	}
	if a.chip != nil {
		if err := a.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
