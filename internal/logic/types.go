// Package logic contains the alert and measurement engine: pure decisions
// over sampled sensor values. This package has no hardware or network
// dependencies; time is always injectable via time.Time parameters, and
// persistence goes through the register.Store interface so tests run against
// the in-memory fake.
package logic

import "strings"

// AlertMask is the per-sample bitmask of active conditions. It is volatile:
// every bit is latched fresh on each sample, never sticky.
type AlertMask byte

// Alert bits. Positions match the deployed reporting format.
const (
	AlertControlPower AlertMask = 1 << 0 // control power lost
	AlertLowLevel     AlertMask = 1 << 1 // low level sensed
	AlertPumpOn       AlertMask = 1 << 2 // pump commanded on
	AlertOnBattery    AlertMask = 1 << 7 // running on battery power
)

// Summary renders the active alerts as the human-readable string published
// when a reporting cycle resolves a pending alert.
func (m AlertMask) Summary() string {
	var parts []string
	if m&AlertControlPower != 0 {
		parts = append(parts, "Control Power")
	}
	if m&AlertLowLevel != 0 {
		parts = append(parts, "Low Level")
	}
	if m&AlertPumpOn != 0 {
		parts = append(parts, "Pump On")
	}
	if m&AlertOnBattery != 0 {
		parts = append(parts, "Battery Power")
	}
	return strings.Join(parts, " - ")
}

// Readings is one set of raw sensor values handed to the engine. Acquisition
// (ADC scaling, fuel gauge, signal quality) happens outside this package.
type Readings struct {
	PumpCurrentRaw   int    // 0..4095 from the current sensor
	TemperatureF     int
	StateOfCharge    int    // battery percentage
	SignalQuality    string // human-readable modem signal description
	ControlPowerGood bool   // sense line: control circuit has power
	LowLevel         bool   // sense line: level switch tripped
	OnBattery        bool   // no external power present
}

// Sample is the engine's digest of one measurement pass.
type Sample struct {
	Alerts        AlertMask
	PumpAmps      int
	TemperatureF  int
	StateOfCharge int
	SignalQuality string

	// Significant is true when this sample differs enough from the last one
	// to justify a report ahead of the hourly cycle.
	Significant bool
}

// maxRawCount and maxAmps describe the current sensor: fairly linear from
// 0 to 32 amps across the 12-bit ADC range.
const (
	maxRawCount = 4095
	maxAmps     = 32
)

// ampsFromRaw maps a raw ADC count to whole amps.
func ampsFromRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > maxRawCount {
		raw = maxRawCount
	}
	return raw * maxAmps / maxRawCount
}
