// Package status provides a thread-safe tracker for the controller's exposed
// read-only state. The controller writes it once per tick; HTTP handlers
// read point-in-time snapshots.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	Broker     string
	DeviceID   string
	SampleMs   int64
	TickMs     int64
	HTTPAddr   string
	RegisterDB string
}

// Snapshot is a point-in-time view of the controller's exposed state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State          string
	Alerts         int
	Signal         string
	ResetCount     int
	TemperatureF   int
	Release        string
	StateOfCharge  int
	PumpAmps       int
	PumpMins       int
	TimeZone       string
	PumpCalled     bool
	PumpLockout    bool
	CloudConnected bool
	StartTime      time.Time
	Now            time.Time
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the mutable snapshot behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, release identifier,
// and config.
func NewTracker(startTime time.Time, release string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Release:   release,
			Config:    cfg,
		},
	}
}

// Update replaces the variable fields of the snapshot. Called from the
// control loop on every tick.
func (t *Tracker) Update(s Snapshot) {
	t.mu.Lock()
	s.StartTime = t.snap.StartTime
	s.Release = t.snap.Release
	s.Config = t.snap.Config
	t.snap = s
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the state. The Now field is set
// to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
