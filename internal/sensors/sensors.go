// Package sensors provides the read-only sensor collaborator: typed reads of
// the control-power and low-level sense lines, the pump current ADC, the
// battery gauge, board temperature, and modem signal quality.
// The real implementation uses the Linux GPIO character device plus sysfs;
// the fake implementation returns scripted readings for tests.
package sensors

import "github.com/sweeney/wellhead-controller/internal/logic"

// Reader reads one full set of sensor values.
type Reader interface {
	// Readings samples every sensor and returns the typed values.
	Readings() (logic.Readings, error)

	// SetAuxPower switches the auxiliary sensor power rail (temperature
	// sensor supply). Turned off in low-battery mode.
	SetAuxPower(on bool) error

	// Close releases sensor resources.
	Close() error
}

// Default sense-line pins (BCM numbering). The header wiring matches the
// deployed carrier board: control power on orange-white, low level on green.
const (
	DefaultPinControlPower = 17
	DefaultPinLowLevel     = 27
	DefaultPinAuxPower     = 22
)
