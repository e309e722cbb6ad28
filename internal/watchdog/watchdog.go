// Package watchdog handles the external hardware watchdog: a wake interrupt
// that sets a flag, and a done-pin pulse ("pet") issued only from the control
// loop. The wake handler never touches controller state; if the loop hangs,
// nothing pets the watchdog and the hardware power-cycles the unit.
package watchdog

import "sync/atomic"

// Wake is the single-producer/single-consumer wake flag. The GPIO event
// handler (or a test) calls Set; only the control loop calls TakeIfSet.
type Wake struct {
	flag atomic.Bool
}

// Set marks the watchdog as waiting for a pet. Safe from any goroutine.
func (w *Wake) Set() {
	w.flag.Store(true)
}

// TakeIfSet consumes the flag, reporting whether it was set.
func (w *Wake) TakeIfSet() bool {
	return w.flag.Swap(false)
}

// Pending reports the flag without consuming it.
func (w *Wake) Pending() bool {
	return w.flag.Load()
}

// Petter pulses the watchdog done pin.
type Petter interface {
	// Pet issues a brief pulse on the done pin.
	Pet() error

	// Close releases petter resources.
	Close() error
}

// Default pins (BCM numbering).
const (
	DefaultPinDone = 5 // done pulse output
	DefaultPinWake = 6 // wake interrupt input, rising edge
)
