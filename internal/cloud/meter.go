package cloud

import "time"

// Meter enforces the system-wide outbound budget of one message per second.
// It silently delays the caller by sleeping until the budget is available.
// Not safe for concurrent use; all publishes come from the control loop.
type Meter struct {
	interval time.Duration
	last     time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewMeter creates a Meter with the given minimum interval between messages.
func NewMeter(interval time.Duration) *Meter {
	return &Meter{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until the next message is allowed, then consumes the budget.
func (m *Meter) Wait() {
	t := m.now()
	if !m.last.IsZero() {
		if wait := m.interval - t.Sub(m.last); wait > 0 {
			m.sleep(wait)
			t = t.Add(wait)
		}
	}
	m.last = t
}
