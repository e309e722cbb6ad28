//go:build !linux

package recovery

import (
	"errors"
	"log"
	"os"
)

// DefaultPinHardReset is the BCM pin wired to the carrier board's power
// cutoff (active high).
const DefaultPinHardReset = 25

// RealExecutor performs recovery actions; only Restart works off Linux.
type RealExecutor struct{}

// NewRealExecutor creates an executor.
func NewRealExecutor(pinHardReset int, modemPort string) *RealExecutor {
	return &RealExecutor{}
}

// Restart exits the process with a failure status.
func (e *RealExecutor) Restart() {
	log.Printf("recovery: restarting process")
	os.Exit(1)
}

// PowerCycle is not available on non-Linux platforms.
func (e *RealExecutor) PowerCycle() error {
	return errors.New("recovery: power cycle not supported on this platform")
}

// ModemReset is not available on non-Linux platforms.
func (e *RealExecutor) ModemReset() error {
	return errors.New("recovery: modem reset not supported on this platform")
}
