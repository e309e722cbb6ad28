//go:build !linux

package pump

import "errors"

// RealActuator is not available on non-Linux platforms.
type RealActuator struct{}

// NewRealActuator returns an error on non-Linux platforms.
func NewRealActuator(pinPump, pinIndicator int) (*RealActuator, error) {
	return nil, errors.New("pump: not supported on this platform (requires Linux)")
}

// SetOutput is not implemented on non-Linux platforms.
func (a *RealActuator) SetOutput(on bool) error {
	return errors.New("pump: not supported")
}

// IsOutputOn is not implemented on non-Linux platforms.
func (a *RealActuator) IsOutputOn() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (a *RealActuator) Close() error {
	return nil
}
