// Package recovery implements the escalation ladder for stalled connectivity
// and unacknowledged reports. Tier selection is a pure function; the
// side-effecting executor is a separate collaborator so the controller can be
// tested without resetting anything.
package recovery

import "time"

// Action is one rung of the recovery ladder.
type Action int

const (
	// ActionRestart restarts the process, preserving persistent state.
	ActionRestart Action = iota
	// ActionPowerCycle cuts and restores power to the whole unit,
	// recovering wedged peripherals.
	ActionPowerCycle
	// ActionModemReset resets the modem and network stack without a power
	// cycle, then restarts.
	ActionModemReset
)

// String returns the diagnostic name published before the action runs.
func (a Action) String() string {
	switch a {
	case ActionRestart:
		return "Error State - Reset"
	case ActionPowerCycle:
		return "Error State - Power Cycle"
	case ActionModemReset:
		return "Error State - Full Modem Reset"
	default:
		return "Error State - Unknown"
	}
}

// maxSimpleRestarts is how many abnormal restarts we tolerate before
// escalating past a plain process restart.
const maxSimpleRestarts = 3

// staleSuccess is how long without a successful acknowledgment before a
// repeat offender gets the full power cycle.
const staleSuccess = 2 * time.Hour

// Choose selects the ladder tier from the abnormal-restart count and the
// time since the last successful acknowledgment. Pure.
func Choose(resetCount uint32, sinceLastSuccess time.Duration) Action {
	if resetCount <= maxSimpleRestarts {
		return ActionRestart
	}
	if sinceLastSuccess > staleSuccess {
		return ActionPowerCycle
	}
	return ActionModemReset
}

// ClearsResetCount reports whether the action zeroes the persistent
// abnormal-restart counter before running.
func (a Action) ClearsResetCount() bool {
	return a == ActionPowerCycle || a == ActionModemReset
}

// Executor performs recovery actions. Restart and PowerCycle do not return.
type Executor interface {
	// Restart exits the process; the service supervisor relaunches it.
	Restart()

	// PowerCycle drives the hard-reset line, cutting power to the unit and
	// its carrier board.
	PowerCycle() error

	// ModemReset silently resets the modem and SIM over the AT command
	// port, then restarts the process to bring networking back up.
	ModemReset() error
}
