package controller

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/wellhead-controller/internal/cloud"
)

// inbox collects inbound commands and acknowledgments between ticks.
// Handlers run on the MQTT client's goroutines; they only queue here and
// the control loop applies everything at the top of the next tick.
type inbox struct {
	pumpCmd  *bool
	lockout  *bool
	verbose  *bool
	tzOffset *int
	respCode *int

	sendNow      bool
	resetCounts  bool
	eraseStorage bool
	hardReset    bool
}

func onOff(command string) (bool, error) {
	switch strings.TrimSpace(command) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("command must be 1 or 0, got %q", command)
}

func confirmed(command string) error {
	if strings.TrimSpace(command) != "1" {
		return fmt.Errorf("command requires payload 1, got %q", command)
	}
	return nil
}

// PumpControl queues a pump on ("1") or off ("0") command.
func (c *Controller) PumpControl(command string) error {
	v, err := onOff(command)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.pumpCmd = &v
	c.mu.Unlock()
	return nil
}

// SetLockout queues enabling ("1") or clearing ("0") the pump lockout.
// While locked out the pump output is never energized, whatever commands
// arrive.
func (c *Controller) SetLockout(command string) error {
	v, err := onOff(command)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.lockout = &v
	c.mu.Unlock()
	return nil
}

// SetVerboseMode queues enabling ("1") or clearing ("0") verbose mode.
func (c *Controller) SetVerboseMode(command string) error {
	v, err := onOff(command)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.verbose = &v
	c.mu.Unlock()
	return nil
}

// SetTimeZone queues a new base UTC offset in hours, e.g. "-5".
func (c *Controller) SetTimeZone(command string) error {
	v, err := strconv.Atoi(strings.TrimSpace(command))
	if err != nil {
		return fmt.Errorf("time zone offset: %v", err)
	}
	if v < -12 || v > 12 {
		return fmt.Errorf("time zone offset %d out of range", v)
	}
	c.mu.Lock()
	c.inbox.tzOffset = &v
	c.mu.Unlock()
	return nil
}

// SendNow queues an immediate reporting cycle.
func (c *Controller) SendNow(command string) error {
	if err := confirmed(command); err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.sendNow = true
	c.mu.Unlock()
	return nil
}

// ResetCounts queues zeroing of the reset count, the daily pumping minutes,
// and the pending alerts.
func (c *Controller) ResetCounts(command string) error {
	if err := confirmed(command); err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.resetCounts = true
	c.mu.Unlock()
	return nil
}

// ResetStorage queues an erase of the persistent register store back to
// its defaults.
func (c *Controller) ResetStorage(command string) error {
	if err := confirmed(command); err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.eraseStorage = true
	c.mu.Unlock()
	return nil
}

// HardResetNow queues an immediate hard power cycle of the unit.
func (c *Controller) HardResetNow(command string) error {
	if err := confirmed(command); err != nil {
		return err
	}
	c.mu.Lock()
	c.inbox.hardReset = true
	c.mu.Unlock()
	return nil
}

// HandleResponse queues a report acknowledgment. The payload's leading
// integer is the hook response code.
func (c *Controller) HandleResponse(payload string) {
	code, ok := cloud.ResponseCode(payload)
	if !ok {
		log.Printf("hook response with no code: %q", payload)
		return
	}
	c.mu.Lock()
	c.inbox.respCode = &code
	c.mu.Unlock()
}

// drainInbox applies every queued command on the control goroutine.
func (c *Controller) drainInbox(now time.Time) {
	c.mu.Lock()
	in := c.inbox
	c.inbox = inbox{}
	c.mu.Unlock()

	if in.hardReset {
		log.Printf("hard reset requested")
		c.publish(cloud.EventStatus, "Hard Reset")
		if err := c.exec.PowerCycle(); err != nil {
			log.Printf("hard reset: %v", err)
		}
	}

	if in.respCode != nil {
		code := *in.respCode
		if code == 200 || code == 201 {
			c.inFlight = false
			c.store.PutLastResponse(now)
			c.publish(cloud.EventState, "Response Received")
		} else {
			c.publish(cloud.EventHookResponse, strconv.Itoa(code))
		}
	}

	if in.pumpCmd != nil {
		c.pumpCalled = *in.pumpCmd
		if c.pumpCalled {
			c.publish(cloud.EventStatus, "Pump On Received")
		} else {
			c.publish(cloud.EventStatus, "Pump Off Received")
		}
	}

	if in.lockout != nil {
		c.lockout = *in.lockout
		flags := c.store.ControlFlags()
		flags.PumpLockout = c.lockout
		c.store.PutControlFlags(flags)
		if c.lockout {
			c.publish(cloud.EventMode, "Set Pump Lockout")
		} else {
			c.publish(cloud.EventMode, "Cleared Pump Lockout")
		}
	}

	if in.verbose != nil {
		c.verbose = *in.verbose
		flags := c.store.ControlFlags()
		flags.VerboseMode = c.verbose
		c.store.PutControlFlags(flags)
		if c.verbose {
			c.publish(cloud.EventMode, "Set Verbose Mode")
		} else {
			c.publish(cloud.EventMode, "Cleared Verbose Mode")
		}
	}

	if in.tzOffset != nil {
		c.store.PutTimeZoneOffset(*in.tzOffset)
		if c.clock != nil {
			c.clockSetBaseOffset(*in.tzOffset, now)
			c.publish(cloud.EventMode, "Time Zone Set to "+c.clock.OffsetString())
		}
	}

	if in.resetCounts {
		c.resetCount = 0
		c.store.PutResetCount(0)
		c.dailyPumpMins = 0
		c.store.PutDailyPumpingMins(0)
		c.alerts = 0
		c.inFlight = false
		c.publish(cloud.EventStatus, "Counts Reset")
	}

	if in.eraseStorage {
		c.store.Erase()
		flags := c.store.ControlFlags()
		c.verbose = flags.VerboseMode
		c.lockout = flags.PumpLockout
		c.resetCount = 0
		c.dailyPumpMins = 0
		c.clockSetBaseOffset(c.store.TimeZoneOffset(), now)
		c.publish(cloud.EventStatus, "Storage Reset")
	}

	if in.sendNow {
		c.setState(StateReporting)
	}
}

func (c *Controller) clockSetBaseOffset(hours int, now time.Time) {
	if c.clock == nil {
		return
	}
	c.clock.SetBaseOffset(hours)
	c.clock.Recompute(now)
}
