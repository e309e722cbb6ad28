package status

import (
	"testing"
	"time"
)

func TestUpdatePreservesIdentityFields(t *testing.T) {
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(start, "1.50", Config{Broker: "tcp://broker:1883", DeviceID: "wellhead-1"})

	tracker.Update(Snapshot{
		State:         "Pumping",
		PumpAmps:      12,
		StateOfCharge: 77,
	})

	snap := tracker.Snapshot()
	if snap.State != "Pumping" || snap.PumpAmps != 12 {
		t.Errorf("variable fields not applied: %+v", snap)
	}
	if snap.Release != "1.50" {
		t.Errorf("release = %q, want 1.50", snap.Release)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time = %v, want %v", snap.StartTime, start)
	}
	if snap.Config.DeviceID != "wellhead-1" {
		t.Errorf("config device = %q", snap.Config.DeviceID)
	}
}

func TestSnapshotSetsNow(t *testing.T) {
	tracker := NewTracker(time.Now().Add(-time.Minute), "1.50", Config{})
	snap := tracker.Snapshot()
	if snap.Now.IsZero() {
		t.Fatal("snapshot should stamp Now")
	}
	if snap.Uptime() < time.Minute {
		t.Errorf("uptime = %v, want at least a minute", snap.Uptime())
	}
}
