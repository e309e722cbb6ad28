// Package controller implements the wellhead control state machine: a
// tick-driven loop that sequences connectivity, sampling, alerting, pump
// actuation, reporting, and failure recovery, with its operational state
// held in the persistent register store so it survives resets and power loss.
package controller

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/sweeney/wellhead-controller/internal/cloud"
	"github.com/sweeney/wellhead-controller/internal/localtime"
	"github.com/sweeney/wellhead-controller/internal/logic"
	"github.com/sweeney/wellhead-controller/internal/pump"
	"github.com/sweeney/wellhead-controller/internal/recovery"
	"github.com/sweeney/wellhead-controller/internal/register"
	"github.com/sweeney/wellhead-controller/internal/sensors"
	"github.com/sweeney/wellhead-controller/internal/status"
	"github.com/sweeney/wellhead-controller/internal/watchdog"
)

// State is the controller's active state. Exactly one state runs per tick.
type State int

// Controller states. There is no terminal state: Error loops through the
// recovery ladder rather than halting.
const (
	StateInitialization State = iota
	StateError
	StateIdle
	StatePumping
	StateLowBattery
	StateReporting
	StateRespWait
)

var stateNames = [...]string{
	"Initialize", "Error", "Idle", "Pumping", "Low Battery", "Reporting", "Response Wait",
}

// String returns the human-readable state name used in transition events.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Config carries the controller's tunables. Zero values take the deployed
// defaults.
type Config struct {
	Release  string
	DeviceID string

	SampleInterval    time.Duration // cadence of measurement passes in Idle
	WebhookWait       time.Duration // budget for a report acknowledgment
	ResetWait         time.Duration // pause inside Error before escalating
	ConnectTimeout    time.Duration // link-ready plus cloud-connect budget
	DisconnectTimeout time.Duration
	ClockSyncTimeout  time.Duration

	LowBattLimit   int           // state-of-charge percentage
	PumpMaxRuntime time.Duration // failsafe bound on continuous pumping

	PumpCommandTopic string // inbound pump on/off channel
	ResponseTopic    string // inbound report-acknowledgment channel

	// AbnormalRestart is true when boot-reason detection says the previous
	// run ended in a watchdog or pin reset rather than a clean shutdown.
	AbnormalRestart bool

	// SyncClock, if set, is invoked during daily cleanup to discipline the
	// system clock within the given budget.
	SyncClock func(timeout time.Duration) error
}

func (c *Config) applyDefaults() {
	if c.SampleInterval == 0 {
		c.SampleInterval = 2 * time.Second
	}
	if c.WebhookWait == 0 {
		c.WebhookWait = 45 * time.Second
	}
	if c.ResetWait == 0 {
		c.ResetWait = 30 * time.Second
	}
	if c.ConnectTimeout == 0 {
		// 90s for the cellular link plus 30s for the cloud session.
		c.ConnectTimeout = 120 * time.Second
	}
	if c.DisconnectTimeout == 0 {
		c.DisconnectTimeout = 10 * time.Second
	}
	if c.ClockSyncTimeout == 0 {
		c.ClockSyncTimeout = 30 * time.Second
	}
	if c.LowBattLimit == 0 {
		c.LowBattLimit = 30
	}
	if c.PumpMaxRuntime == 0 {
		c.PumpMaxRuntime = 95 * time.Minute
	}
}

// Deps are the controller's collaborators.
type Deps struct {
	Store    register.Store
	Sensors  sensors.Reader
	Pump     pump.Actuator
	Cloud    cloud.Client
	Recovery recovery.Executor
	Wake     *watchdog.Wake
	Petter   watchdog.Petter
	Tracker  *status.Tracker // optional
}

// Controller is the state machine. All mutation happens on the tick
// goroutine; inbound commands and acknowledgments are queued in the inbox
// and drained at the top of each tick.
type Controller struct {
	cfg    Config
	store  register.Store
	engine *logic.Engine
	sense  sensors.Reader
	pump   pump.Actuator
	cloud  cloud.Client
	exec   recovery.Executor
	wake   *watchdog.Wake
	petter watchdog.Petter
	track  *status.Tracker
	clock  *localtime.Clock

	state    State
	oldState State

	verbose    bool
	lockout    bool
	pumpCalled bool

	resetCount    uint32
	dailyPumpMins uint16
	alerts        logic.AlertMask
	pumpAmps      int
	temperatureF  int
	stateOfCharge int
	signal        string

	currentHour  int       // local hour of the last report, -1 forces one
	lastSample   time.Time
	inFlight     bool
	sentAt       time.Time
	errorAt      time.Time
	failsafeAt   time.Time // zero while disarmed
	suspendUntil time.Time // low-battery hold, zero otherwise

	lastCleanupDay int // local year-day latches, -1 until first run
	lastDSTDay     int

	mu    sync.Mutex // guards inbox
	inbox inbox
}

// New creates a Controller in the Initialization state. The first Tick
// performs storage load and the connectivity attempt.
func New(cfg Config, d Deps) *Controller {
	cfg.applyDefaults()
	return &Controller{
		cfg:            cfg,
		store:          d.Store,
		engine:         logic.NewEngine(d.Store),
		sense:          d.Sensors,
		pump:           d.Pump,
		cloud:          d.Cloud,
		exec:           d.Recovery,
		wake:           d.Wake,
		petter:         d.Petter,
		track:          d.Tracker,
		state:          StateInitialization,
		oldState:       StateInitialization,
		currentHour:    -1,
		lastCleanupDay: -1,
		lastDSTDay:     -1,
	}
}

// State returns the active state.
func (c *Controller) State() State {
	return c.state
}

// Run drives the controller from a tick channel until a signal arrives.
func (c *Controller) Run(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil
		case t := <-tick:
			c.Tick(t.UTC())
		}
	}
}

// Tick evaluates exactly one state. now must be UTC.
func (c *Controller) Tick(now time.Time) {
	c.drainInbox(now)
	c.checkFailsafe(now)

	switch c.state {
	case StateInitialization:
		c.tickInitialization(now)
	case StateError:
		c.tickError(now)
	case StateIdle:
		c.tickIdle(now)
	case StatePumping:
		c.tickPumping(now)
	case StateLowBattery:
		c.tickLowBattery(now)
	case StateReporting:
		c.tickReporting(now)
	case StateRespWait:
		c.tickRespWait(now)
	}

	c.updateTracker(now)
}

// setState records a transition and, in verbose mode, publishes it.
// Transitions into Idle are steady-state noise and are not emitted.
func (c *Controller) setState(to State) {
	if to == c.state {
		return
	}
	c.oldState = c.state
	c.state = to
	if c.verbose && to != StateIdle {
		msg := fmt.Sprintf("From %s to %s", c.oldState, c.state)
		log.Printf("state transition: %s", msg)
		c.publish(cloud.EventStateTransition, msg)
	}
}

// publish sends an event if the link is up. Delivery failures are logged,
// never fatal: the reporting path has its own acknowledgment timeout.
func (c *Controller) publish(event, data string) {
	if !c.cloud.IsConnected() {
		return
	}
	if err := c.cloud.Publish(event, data); err != nil {
		log.Printf("publish %s: %v", event, err)
	}
}

func (c *Controller) pet() {
	if err := c.petter.Pet(); err != nil {
		log.Printf("watchdog pet: %v", err)
	}
}

// checkFailsafe bounds continuous pump runtime. Expiry clears the commanded
// flag so the next Pumping evaluation turns the output off, even if the
// remote "pump off" was lost.
func (c *Controller) checkFailsafe(now time.Time) {
	if c.failsafeAt.IsZero() || now.Before(c.failsafeAt) {
		return
	}
	c.failsafeAt = time.Time{}
	c.pumpCalled = false
	log.Printf("pump failsafe: max runtime reached, clearing pump command")
	c.publish(cloud.EventStatus, "Pump Max Runtime Reached")
}

func (c *Controller) tickInitialization(now time.Time) {
	c.resetCount = c.store.ResetCount()
	if c.cfg.AbnormalRestart {
		c.resetCount++
		c.store.PutResetCount(c.resetCount)
		log.Printf("abnormal restart detected, reset count now %d", c.resetCount)
	}

	flags := c.store.ControlFlags()
	c.verbose = flags.VerboseMode
	c.lockout = flags.PumpLockout
	c.dailyPumpMins = c.store.DailyPumpingMins()
	c.clock = localtime.NewClock(c.store.TimeZoneOffset(), now)

	if c.cfg.PumpCommandTopic != "" {
		err := c.cloud.Subscribe(c.cfg.PumpCommandTopic, func(p string) {
			if err := c.PumpControl(p); err != nil {
				log.Printf("pump command: %v", err)
			}
		})
		if err != nil {
			log.Printf("subscribe %s: %v", c.cfg.PumpCommandTopic, err)
		}
	}
	if c.cfg.ResponseTopic != "" {
		if err := c.cloud.Subscribe(c.cfg.ResponseTopic, c.HandleResponse); err != nil {
			log.Printf("subscribe %s: %v", c.cfg.ResponseTopic, err)
		}
	}

	if r, err := c.sense.Readings(); err == nil {
		c.stateOfCharge = r.StateOfCharge
		c.temperatureF = r.TemperatureF
		c.signal = r.SignalQuality
	} else {
		log.Printf("initial sensor read: %v", err)
	}

	// A unit booting on a low battery skips the connect attempt entirely;
	// Idle sends it straight to LowBattery.
	if c.stateOfCharge > c.cfg.LowBattLimit {
		if err := c.cloud.Connect(c.cfg.ConnectTimeout); err != nil {
			log.Printf("initial connect: %v", err)
		}
	}

	c.setState(StateIdle)
}

func (c *Controller) tickIdle(now time.Time) {
	if c.wake.TakeIfSet() {
		c.pet()
	}

	next := StateIdle
	local := c.clock.Local(now)
	if local.Hour() != c.currentHour {
		next = StateReporting
	}
	if c.stateOfCharge <= c.cfg.LowBattLimit {
		next = StateLowBattery
	}
	if c.pumpCalled || c.pump.IsOutputOn() {
		next = StatePumping
	}
	if now.Sub(c.lastSample) >= c.cfg.SampleInterval {
		c.lastSample = now
		if s, ok := c.takeSample(now); ok && s.Significant {
			// Worth reporting ahead of the hourly cycle.
			next = StateReporting
		}
	}
	c.setState(next)
}

func (c *Controller) takeSample(now time.Time) (logic.Sample, bool) {
	r, err := c.sense.Readings()
	if err != nil {
		log.Printf("sensor read: %v", err)
		return logic.Sample{}, false
	}
	s := c.engine.Sample(r, c.pumpCalled, now)
	c.alerts = s.Alerts
	c.pumpAmps = s.PumpAmps
	c.temperatureF = s.TemperatureF
	c.stateOfCharge = s.StateOfCharge
	c.signal = s.SignalQuality
	c.dailyPumpMins = c.store.DailyPumpingMins()
	return s, true
}

// tickPumping reconciles the output with the commanded state, then falls
// straight back to Idle; it is a one-shot state, not a wait.
func (c *Controller) tickPumping(now time.Time) {
	on := c.pump.IsOutputOn()
	switch {
	case c.pumpCalled && !on && !c.lockout:
		if err := c.pump.SetOutput(true); err != nil {
			log.Printf("pump on: %v", err)
		} else {
			c.failsafeAt = now.Add(c.cfg.PumpMaxRuntime)
		}
	case !c.pumpCalled && on:
		if err := c.pump.SetOutput(false); err != nil {
			log.Printf("pump off: %v", err)
		} else {
			c.failsafeAt = time.Time{}
		}
	}
	c.setState(StateIdle)
}

func (c *Controller) tickLowBattery(now time.Time) {
	if c.suspendUntil.IsZero() {
		if c.cloud.IsConnected() {
			if err := c.cloud.Disconnect(c.cfg.DisconnectTimeout); err != nil {
				log.Printf("disconnect: %v", err)
			}
		}
		// We cannot monitor the pump while suspended, so it goes off and
		// the command is dropped, as a hardware reset would drop it.
		c.pumpCalled = false
		c.failsafeAt = time.Time{}
		if err := c.pump.SetOutput(false); err != nil {
			log.Printf("pump off: %v", err)
		}
		if err := c.sense.SetAuxPower(false); err != nil {
			log.Printf("aux power off: %v", err)
		}
		local := c.clock.Local(now)
		c.suspendUntil = now.Add(localtime.SecondsToHour(local))
		log.Printf("low battery (%d%%): suspended until top of hour", c.stateOfCharge)
		return
	}

	if now.Before(c.suspendUntil) {
		return
	}

	c.suspendUntil = time.Time{}
	if err := c.sense.SetAuxPower(true); err != nil {
		log.Printf("aux power on: %v", err)
	}
	if r, err := c.sense.Readings(); err == nil {
		c.stateOfCharge = r.StateOfCharge
		c.temperatureF = r.TemperatureF
	}
	if c.stateOfCharge > c.cfg.LowBattLimit && !c.cloud.IsConnected() {
		if err := c.cloud.Connect(c.cfg.ConnectTimeout); err != nil {
			log.Printf("reconnect after low battery: %v", err)
		}
	}
	c.setState(StateIdle)
}

func (c *Controller) tickReporting(now time.Time) {
	c.pet()

	if !c.cloud.IsConnected() {
		c.raiseError(now, "Reporting While Disconnected")
		return
	}

	if c.inFlight {
		// The previous report has not been acknowledged yet; never stack
		// a second one on top of it.
		c.setState(StateRespWait)
		return
	}

	if c.alerts != 0 {
		c.resolveAlert()
	}

	data, err := cloud.FormatReport(cloud.Report{
		AlertValue: int(c.alerts),
		PumpAmps:   c.pumpAmps,
		PumpMins:   int(c.dailyPumpMins),
		Battery:    c.stateOfCharge,
		Temp:       c.temperatureF,
		Resets:     int(c.resetCount),
	})
	if err != nil {
		log.Printf("format report: %v", err)
		return
	}
	if err := c.cloud.Publish(cloud.EventReport, string(data)); err != nil {
		log.Printf("send report: %v", err)
		c.raiseError(now, "Report Publish Failed")
		return
	}

	c.inFlight = true
	c.sentAt = now
	c.currentHour = c.clock.Local(now).Hour()
	c.setState(StateRespWait)
}

// resolveAlert publishes the human-readable summary of the pending alerts.
func (c *Controller) resolveAlert() {
	if c.verbose {
		c.publish(cloud.EventAlerts, c.alerts.Summary())
	}
}

func (c *Controller) tickRespWait(now time.Time) {
	if !c.inFlight {
		// Acknowledged. Once per local day this transition also carries
		// the DST recomputation (02:00) and daily cleanup (00:00).
		local := c.clock.Local(now)
		if local.YearDay() != c.lastDSTDay && local.Hour() >= 2 {
			c.lastDSTDay = local.YearDay()
			c.clock.Recompute(now)
		}
		if local.YearDay() != c.lastCleanupDay && local.Hour() == 0 {
			c.lastCleanupDay = local.YearDay()
			c.dailyCleanup(now)
		}
		c.setState(StateIdle)
		return
	}

	if now.Sub(c.sentAt) >= c.cfg.WebhookWait {
		c.raiseError(now, "Response Timeout Error")
	}
}

func (c *Controller) raiseError(now time.Time, reason string) {
	c.errorAt = now
	log.Printf("error: %s", reason)
	if c.verbose {
		c.publish(cloud.EventState, reason)
	}
	c.setState(StateError)
}

// tickError escalates through the recovery ladder once the reset wait has
// elapsed. It never returns to Idle on its own: recovery restarts the
// process or power-cycles the unit.
func (c *Controller) tickError(now time.Time) {
	if now.Sub(c.errorAt) < c.cfg.ResetWait {
		return
	}

	action := recovery.Choose(c.resetCount, now.Sub(c.store.LastResponse()))
	c.publish(cloud.EventState, action.String())
	if action.ClearsResetCount() {
		c.resetCount = 0
		c.store.PutResetCount(0)
	}

	var err error
	switch action {
	case recovery.ActionRestart:
		c.exec.Restart()
	case recovery.ActionPowerCycle:
		err = c.exec.PowerCycle()
	case recovery.ActionModemReset:
		err = c.exec.ModemReset()
	}
	if err != nil {
		log.Printf("recovery %v: %v", action, err)
	}
	// On hardware these do not return. If an executor does, re-arm the
	// wait so escalation repeats on its own schedule.
	c.errorAt = now
}

// dailyCleanup runs at local midnight: verbose mode off, daily accumulator
// zeroed, system clock disciplined.
func (c *Controller) dailyCleanup(now time.Time) {
	c.publish(cloud.EventCleanup, "Running")

	c.verbose = false
	flags := c.store.ControlFlags()
	flags.VerboseMode = false
	c.store.PutControlFlags(flags)

	c.dailyPumpMins = 0
	c.store.PutDailyPumpingMins(0)

	if c.cfg.SyncClock != nil {
		if err := c.cfg.SyncClock(c.cfg.ClockSyncTimeout); err != nil {
			log.Printf("clock sync: %v", err)
		}
	}
}

func (c *Controller) updateTracker(now time.Time) {
	if c.track == nil {
		return
	}
	tz := ""
	if c.clock != nil {
		tz = c.clock.OffsetString()
	}
	c.track.Update(status.Snapshot{
		State:          c.state.String(),
		Alerts:         int(c.alerts),
		Signal:         c.signal,
		ResetCount:     int(c.resetCount),
		TemperatureF:   c.temperatureF,
		StateOfCharge:  c.stateOfCharge,
		PumpAmps:       c.pumpAmps,
		PumpMins:       int(c.dailyPumpMins),
		TimeZone:       tz,
		PumpCalled:     c.pumpCalled,
		PumpLockout:    c.lockout,
		CloudConnected: c.cloud.IsConnected(),
		Now:            now,
	})
}
