// Package pump drives the pump output line and its status indicator.
// The real implementation uses the Linux GPIO character device; the fake
// implementation records transitions for tests.
//
// The actuator is deliberately dumb: lockout and the maximum-runtime
// failsafe live in the controller, which is the only writer of the output.
package pump

// Actuator controls the pump output.
type Actuator interface {
	// SetOutput drives the pump line and the status indicator in lockstep.
	SetOutput(on bool) error

	// IsOutputOn reports the current output state. Used after a reset to
	// reconcile a pump left running.
	IsOutputOn() bool

	// Close releases actuator resources.
	Close() error
}

// Default output pins (BCM numbering).
const (
	DefaultPinPump      = 23
	DefaultPinIndicator = 24
)
