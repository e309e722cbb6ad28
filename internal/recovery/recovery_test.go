package recovery

import (
	"testing"
	"time"
)

func TestChoose(t *testing.T) {
	tests := []struct {
		name             string
		resetCount       uint32
		sinceLastSuccess time.Duration
		want             Action
	}{
		{"fresh unit", 0, 0, ActionRestart},
		{"few resets, stale success", 3, 10 * time.Hour, ActionRestart},
		{"few resets, recent success", 2, time.Minute, ActionRestart},
		{"many resets, stale success", 4, 3 * time.Hour, ActionPowerCycle},
		{"many resets, recent success", 4, time.Hour, ActionModemReset},
		{"many resets, exactly two hours", 4, 2 * time.Hour, ActionModemReset},
		{"many resets, just past two hours", 4, 2*time.Hour + time.Second, ActionPowerCycle},
		{"boundary count", 3, 3 * time.Hour, ActionRestart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.resetCount, tt.sinceLastSuccess); got != tt.want {
				t.Errorf("Choose(%d, %v) = %v, want %v", tt.resetCount, tt.sinceLastSuccess, got, tt.want)
			}
		})
	}
}

func TestClearsResetCount(t *testing.T) {
	if ActionRestart.ClearsResetCount() {
		t.Error("Restart must preserve the reset count")
	}
	if !ActionPowerCycle.ClearsResetCount() {
		t.Error("PowerCycle must clear the reset count")
	}
	if !ActionModemReset.ClearsResetCount() {
		t.Error("ModemReset must clear the reset count")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionRestart, "Error State - Reset"},
		{ActionPowerCycle, "Error State - Power Cycle"},
		{ActionModemReset, "Error State - Full Modem Reset"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}
