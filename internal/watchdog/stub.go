//go:build !linux

package watchdog

import "errors"

// RealPetter is not available on non-Linux platforms.
type RealPetter struct{}

// NewRealPetter returns an error on non-Linux platforms.
func NewRealPetter(pinDone, pinWake int, wake *Wake) (*RealPetter, error) {
	return nil, errors.New("watchdog: not supported on this platform (requires Linux)")
}

// Pet is not implemented on non-Linux platforms.
func (p *RealPetter) Pet() error {
	return errors.New("watchdog: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPetter) Close() error {
	return nil
}
