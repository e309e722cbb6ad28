package logic

import (
	"testing"
	"time"

	"github.com/sweeney/wellhead-controller/internal/register"
)

func quietReadings() Readings {
	return Readings{ControlPowerGood: true}
}

func TestAlertBits(t *testing.T) {
	tests := []struct {
		name     string
		readings Readings
		pumpOn   bool
		want     AlertMask
	}{
		{"all clear", quietReadings(), false, 0},
		{"control power lost", Readings{}, false, AlertControlPower},
		{"low level", Readings{ControlPowerGood: true, LowLevel: true}, false, AlertLowLevel},
		{"pump on", quietReadings(), true, AlertPumpOn},
		{"on battery", Readings{ControlPowerGood: true, OnBattery: true}, false, AlertOnBattery},
		{"everything", Readings{LowLevel: true, OnBattery: true}, true,
			AlertControlPower | AlertLowLevel | AlertPumpOn | AlertOnBattery},
	}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(register.NewFakeStore())
			s := e.Sample(tt.readings, tt.pumpOn, now)
			if s.Alerts != tt.want {
				t.Errorf("Alerts = %08b, want %08b", s.Alerts, tt.want)
			}
		})
	}
}

func TestAlertBitsNotSticky(t *testing.T) {
	e := NewEngine(register.NewFakeStore())
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	s := e.Sample(Readings{ControlPowerGood: true, LowLevel: true}, false, now)
	if s.Alerts&AlertLowLevel == 0 {
		t.Fatal("low level bit should be set")
	}
	s = e.Sample(quietReadings(), false, now.Add(2*time.Second))
	if s.Alerts != 0 {
		t.Errorf("alerts should latch fresh each sample, got %08b", s.Alerts)
	}
}

func TestPumpingBitTracksSession(t *testing.T) {
	store := register.NewFakeStore()
	e := NewEngine(store)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	e.Sample(quietReadings(), false, now)
	if store.ControlFlags().Pumping {
		t.Fatal("pumping bit set with pump off")
	}

	// Pump turns on: bit and start time persist together.
	e.Sample(quietReadings(), true, now.Add(2*time.Second))
	if !store.ControlFlags().Pumping {
		t.Fatal("pumping bit not set after pump-on sample")
	}
	if !store.PumpingStart().Equal(now.Add(2 * time.Second)) {
		t.Errorf("PumpingStart = %v", store.PumpingStart())
	}

	// Stays set for the whole session.
	e.Sample(quietReadings(), true, now.Add(10*time.Minute))
	if !store.ControlFlags().Pumping {
		t.Fatal("pumping bit dropped mid-session")
	}

	// Pump turns off: bit clears, whole minutes accumulate.
	e.Sample(quietReadings(), false, now.Add(12*time.Minute+30*time.Second))
	if store.ControlFlags().Pumping {
		t.Fatal("pumping bit still set after pump-off sample")
	}
	if got := store.DailyPumpingMins(); got != 12 {
		t.Errorf("DailyPumpingMins = %d, want 12 (whole minutes only)", got)
	}
}

func TestCloseThenReopenKeepsMinutes(t *testing.T) {
	store := register.NewFakeStore()
	e := NewEngine(store)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	e.Sample(quietReadings(), true, now)
	e.Sample(quietReadings(), false, now.Add(5*time.Minute))
	e.Sample(quietReadings(), true, now.Add(20*time.Minute))
	e.Sample(quietReadings(), false, now.Add(27*time.Minute))

	if got := store.DailyPumpingMins(); got != 12 {
		t.Errorf("DailyPumpingMins = %d, want 12 (5 + 7)", got)
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	store := register.NewFakeStore()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	e := NewEngine(store)
	e.Sample(quietReadings(), true, now)

	// New engine over the same store, as after a watchdog reset. The open
	// session is still in persistent state, so closing it accrues the full
	// elapsed time.
	e = NewEngine(store)
	e.Sample(quietReadings(), false, now.Add(30*time.Minute))

	if got := store.DailyPumpingMins(); got != 30 {
		t.Errorf("DailyPumpingMins = %d, want 30", got)
	}
	if store.ControlFlags().Pumping {
		t.Error("pumping bit should be clear after session close")
	}
}

func TestPumpAmpsHysteresis(t *testing.T) {
	e := NewEngine(register.NewFakeStore())
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r := quietReadings()
	r.PumpCurrentRaw = 1280 // ~10 A
	s := e.Sample(r, true, now)
	if !s.Significant {
		t.Fatal("first pump-on sample should be significant (mask changed)")
	}
	base := s.PumpAmps

	// Small ripple: within +/-2 A, and the mask is unchanged.
	r.PumpCurrentRaw = 1350 // ~10 A still
	s = e.Sample(r, true, now.Add(2*time.Second))
	if s.PumpAmps != base {
		t.Fatalf("ripple moved amps from %d to %d; adjust test values", base, s.PumpAmps)
	}
	if s.Significant {
		t.Error("unchanged amps and mask should not be significant")
	}

	// Big move: beyond the 2 A hysteresis.
	r.PumpCurrentRaw = 2560 // ~20 A
	s = e.Sample(r, true, now.Add(4*time.Second))
	if !s.Significant {
		t.Errorf("amps move from %d to %d should be significant", base, s.PumpAmps)
	}
}

func TestMaskChangeIsSignificant(t *testing.T) {
	e := NewEngine(register.NewFakeStore())
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	e.Sample(quietReadings(), false, now)
	s := e.Sample(Readings{ControlPowerGood: true, LowLevel: true}, false, now.Add(2*time.Second))
	if !s.Significant {
		t.Error("new alert bit should be significant")
	}
	s = e.Sample(Readings{ControlPowerGood: true, LowLevel: true}, false, now.Add(4*time.Second))
	if s.Significant {
		t.Error("same mask twice should not be significant")
	}
}

func TestPumpAmpsZeroWhenOff(t *testing.T) {
	e := NewEngine(register.NewFakeStore())
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r := quietReadings()
	r.PumpCurrentRaw = 2000 // noise on the sense line
	s := e.Sample(r, false, now)
	if s.PumpAmps != 0 {
		t.Errorf("PumpAmps = %d with pump off, want 0", s.PumpAmps)
	}
}

func TestAlertSummary(t *testing.T) {
	tests := []struct {
		mask AlertMask
		want string
	}{
		{0, ""},
		{AlertControlPower, "Control Power"},
		{AlertControlPower | AlertLowLevel, "Control Power - Low Level"},
		{AlertPumpOn | AlertOnBattery, "Pump On - Battery Power"},
	}
	for _, tt := range tests {
		if got := tt.mask.Summary(); got != tt.want {
			t.Errorf("Summary(%08b) = %q, want %q", tt.mask, got, tt.want)
		}
	}
}

func TestAmpsFromRaw(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{0, 0},
		{4095, 32},
		{2048, 16},
		{-5, 0},
		{9999, 32},
	}
	for _, tt := range tests {
		if got := ampsFromRaw(tt.raw); got != tt.want {
			t.Errorf("ampsFromRaw(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
