package logic

import (
	"time"

	"github.com/sweeney/wellhead-controller/internal/register"
)

// ampsHysteresis is the minimum pump-current move (in amps) that counts as a
// significant change. Small ripples are not worth the bandwidth.
const ampsHysteresis = 2

// Engine builds the alert mask from sensor readings and owns the pump-session
// bookkeeping: the persistent Pumping bit, the session start time, and the
// daily minutes accumulator. The bit and the start time are always written
// together, so a crash between samples leaves at most one tick of
// inconsistency after the recovery re-read.
type Engine struct {
	store register.Store

	lastAlerts   AlertMask
	lastPumpAmps int
}

// NewEngine creates an Engine over the given register store.
func NewEngine(store register.Store) *Engine {
	return &Engine{store: store}
}

// Sample digests one set of readings. pumpOn is the software pump-on command
// state at the moment of the sample; it both sets the pump-running alert bit
// and drives the session bookkeeping.
func (e *Engine) Sample(r Readings, pumpOn bool, now time.Time) Sample {
	flags := e.store.ControlFlags()

	var alerts AlertMask
	if !r.ControlPowerGood {
		alerts |= AlertControlPower
	}
	if r.LowLevel {
		alerts |= AlertLowLevel
	}
	if r.OnBattery {
		alerts |= AlertOnBattery
	}

	pumpAmps := 0
	significant := false
	if pumpOn {
		alerts |= AlertPumpOn
		pumpAmps = ampsFromRaw(r.PumpCurrentRaw)
		if pumpAmps >= e.lastPumpAmps+ampsHysteresis || pumpAmps <= e.lastPumpAmps-ampsHysteresis {
			significant = true
		}
		if !flags.Pumping {
			// New session: start time and the pumping bit persist together.
			e.store.PutPumpingStart(now)
			flags.Pumping = true
			e.store.PutControlFlags(flags)
		}
	} else if flags.Pumping {
		// Session just closed: fold the elapsed whole minutes into the
		// daily total before the bit is cleared.
		flags.Pumping = false
		e.store.PutControlFlags(flags)
		elapsed := now.Sub(e.store.PumpingStart())
		mins := e.store.DailyPumpingMins() + uint16(elapsed/time.Minute)
		e.store.PutDailyPumpingMins(mins)
	}

	if alerts != e.lastAlerts {
		significant = true
	}

	e.lastAlerts = alerts
	e.lastPumpAmps = pumpAmps

	return Sample{
		Alerts:        alerts,
		PumpAmps:      pumpAmps,
		TemperatureF:  r.TemperatureF,
		StateOfCharge: r.StateOfCharge,
		SignalQuality: r.SignalQuality,
		Significant:   significant,
	}
}
