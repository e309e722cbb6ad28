//go:build linux

package watchdog

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealPetter drives the done pin and watches the wake pin on real hardware.
type RealPetter struct {
	chip     *gpiocdev.Chip
	doneLine *gpiocdev.Line
	wakeLine *gpiocdev.Line
}

// NewRealPetter requests the done pin as output and the wake pin with a
// rising-edge event handler that sets the wake flag. The handler does
// nothing else; consumption happens on the control loop.
func NewRealPetter(pinDone, pinWake int, wake *Wake) (*RealPetter, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	done, err := chip.RequestLine(pinDone, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request done pin %d: %w", pinDone, err)
	}

	wakeLine, err := chip.RequestLine(pinWake,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { wake.Set() }))
	if err != nil {
		done.Close()
		chip.Close()
		return nil, fmt.Errorf("request wake pin %d: %w", pinWake, err)
	}

	return &RealPetter{chip: chip, doneLine: done, wakeLine: wakeLine}, nil
}

// Pet pulses the done pin.
func (p *RealPetter) Pet() error {
	if err := p.doneLine.SetValue(1); err != nil {
		return fmt.Errorf("raise done pin: %w", err)
	}
	time.Sleep(time.Millisecond)
	if err := p.doneLine.SetValue(0); err != nil {
		return fmt.Errorf("lower done pin: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
func (p *RealPetter) Close() error {
	var errs []error
	if p.doneLine != nil {
		if err := p.doneLine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.wakeLine != nil {
		if err := p.wakeLine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
