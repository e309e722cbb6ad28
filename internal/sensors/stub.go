//go:build !linux

package sensors

import (
	"errors"

	"github.com/sweeney/wellhead-controller/internal/logic"
)

// Paths configures the non-GPIO sensor sources; unused off Linux.
type Paths struct {
	PumpCurrentRaw    string
	TemperatureMilliC string
	BatteryCapacity   string
	ACOnline          string
	SignalQuality     string
}

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pinControlPower, pinLowLevel, pinAuxPower int, paths Paths) (*RealReader, error) {
	return nil, errors.New("sensors: not supported on this platform (requires Linux)")
}

// Readings is not implemented on non-Linux platforms.
func (r *RealReader) Readings() (logic.Readings, error) {
	return logic.Readings{}, errors.New("sensors: not supported")
}

// SetAuxPower is not implemented on non-Linux platforms.
func (r *RealReader) SetAuxPower(on bool) error {
	return errors.New("sensors: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
