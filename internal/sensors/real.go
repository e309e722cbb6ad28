//go:build linux

package sensors

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/wellhead-controller/internal/logic"
)

// Paths configures where the real reader finds the non-GPIO sensors.
type Paths struct {
	// PumpCurrentRaw is an IIO raw ADC file, e.g.
	// /sys/bus/iio/devices/iio:device0/in_voltage2_raw.
	PumpCurrentRaw string
	// TemperatureMilliC is a thermal zone or hwmon temp file (millidegrees C).
	TemperatureMilliC string
	// BatteryCapacity is a power_supply capacity file (percent).
	BatteryCapacity string
	// ACOnline is a power_supply online file; 0 means running on battery.
	ACOnline string
	// SignalQuality is a one-line status file maintained by the modem
	// helper, e.g. "LTE S:80%, Q:75%". Optional.
	SignalQuality string
}

// RealReader reads sensors from actual hardware.
type RealReader struct {
	chip     *gpiocdev.Chip
	ctrlLine *gpiocdev.Line
	lvlLine  *gpiocdev.Line
	auxLine  *gpiocdev.Line
	paths    Paths
}

// NewRealReader requests the sense lines and aux-power line on gpiochip0.
func NewRealReader(pinControlPower, pinLowLevel, pinAuxPower int, paths Paths) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	ctrl, err := chip.RequestLine(pinControlPower, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request control-power pin %d: %w", pinControlPower, err)
	}
	lvl, err := chip.RequestLine(pinLowLevel, gpiocdev.AsInput)
	if err != nil {
		ctrl.Close()
		chip.Close()
		return nil, fmt.Errorf("request low-level pin %d: %w", pinLowLevel, err)
	}
	// Aux power rail defaults on so the temperature sensor is alive.
	aux, err := chip.RequestLine(pinAuxPower, gpiocdev.AsOutput(1))
	if err != nil {
		lvl.Close()
		ctrl.Close()
		chip.Close()
		return nil, fmt.Errorf("request aux-power pin %d: %w", pinAuxPower, err)
	}

	return &RealReader{chip: chip, ctrlLine: ctrl, lvlLine: lvl, auxLine: aux, paths: paths}, nil
}

// Readings samples every sensor.
func (r *RealReader) Readings() (logic.Readings, error) {
	var out logic.Readings

	ctrl, err := r.ctrlLine.Value()
	if err != nil {
		return out, fmt.Errorf("read control-power pin: %w", err)
	}
	lvl, err := r.lvlLine.Value()
	if err != nil {
		return out, fmt.Errorf("read low-level pin: %w", err)
	}
	// Sense lines are active high when the monitored circuit is healthy.
	out.ControlPowerGood = ctrl != 0
	out.LowLevel = lvl == 0

	out.PumpCurrentRaw = readIntFile(r.paths.PumpCurrentRaw, 0)
	out.TemperatureF = readIntFile(r.paths.TemperatureMilliC, 20000)/1000*9/5 + 32
	out.StateOfCharge = readIntFile(r.paths.BatteryCapacity, 0)
	out.OnBattery = readIntFile(r.paths.ACOnline, 1) == 0
	out.SignalQuality = readLineFile(r.paths.SignalQuality, "unknown")

	return out, nil
}

// SetAuxPower switches the auxiliary sensor power rail.
func (r *RealReader) SetAuxPower(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.auxLine.SetValue(v); err != nil {
		return fmt.Errorf("set aux power: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	for _, line := range []*gpiocdev.Line{r.ctrlLine, r.lvlLine, r.auxLine} {
		if line != nil {
			if err := line.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// readIntFile reads a single integer from a sysfs-style file, returning def
// when the path is empty or unreadable. Sensor files come and go with
// hardware state; a missing one is not fatal to the sample.
func readIntFile(path string, def int) int {
	if path == "" {
		return def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return def
	}
	return n
}

func readLineFile(path, def string) string {
	if path == "" {
		return def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return def
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return def
	}
	return s
}
