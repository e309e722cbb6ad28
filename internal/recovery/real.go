//go:build linux

package recovery

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/goburrow/serial"
	"github.com/warthog618/go-gpiocdev"
)

// DefaultPinHardReset is the BCM pin wired to the carrier board's power
// cutoff (active high).
const DefaultPinHardReset = 25

// modemResetCmd is a silent modem reset with network detach and SIM reset.
const modemResetCmd = "AT+CFUN=16\r\n"

// RealExecutor performs recovery actions on actual hardware.
type RealExecutor struct {
	pinHardReset int
	modemPort    string
}

// NewRealExecutor creates an executor. modemPort is the AT command serial
// device, e.g. /dev/ttyUSB2.
func NewRealExecutor(pinHardReset int, modemPort string) *RealExecutor {
	return &RealExecutor{pinHardReset: pinHardReset, modemPort: modemPort}
}

// Restart exits the process with a failure status; the service supervisor
// relaunches it, which re-runs storage validation and reconnection.
func (e *RealExecutor) Restart() {
	log.Printf("recovery: restarting process")
	os.Exit(1)
}

// PowerCycle drives the hard-reset line high. The carrier board cuts power
// to everything including us, so on success this never returns.
func (e *RealExecutor) PowerCycle() error {
	log.Printf("recovery: hard power cycle")
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return fmt.Errorf("open gpio chip: %w", err)
	}
	defer chip.Close()

	line, err := chip.RequestLine(e.pinHardReset, gpiocdev.AsOutput(1))
	if err != nil {
		return fmt.Errorf("request hard-reset pin %d: %w", e.pinHardReset, err)
	}
	defer line.Close()

	// Power drops before this elapses; the sleep just keeps the line high
	// until it does.
	time.Sleep(10 * time.Second)
	return fmt.Errorf("hard-reset line had no effect")
}

// ModemReset issues the silent modem reset over the AT port and restarts.
func (e *RealExecutor) ModemReset() error {
	log.Printf("recovery: full modem reset")
	port, err := serial.Open(&serial.Config{
		Address:  e.modemPort,
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open modem port %s: %w", e.modemPort, err)
	}

	_, werr := port.Write([]byte(modemResetCmd))
	if cerr := port.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("modem reset command: %w", werr)
	}

	// Give the modem a moment to detach before networking restarts.
	time.Sleep(time.Second)
	e.Restart()
	return nil
}
