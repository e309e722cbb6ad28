package cloud

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatReport(t *testing.T) {
	data, err := FormatReport(Report{
		AlertValue: 6,
		PumpAmps:   14,
		PumpMins:   85,
		Battery:    72,
		Temp:       68,
		Resets:     2,
	})
	if err != nil {
		t.Fatalf("FormatReport: %v", err)
	}

	// The webhook template indexes these exact keys.
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]int{
		"alertValue": 6,
		"pumpAmps":   14,
		"pumpMins":   85,
		"battery":    72,
		"temp":       68,
		"resets":     2,
	}
	if len(decoded) != len(want) {
		t.Errorf("payload has %d keys, want %d: %s", len(decoded), len(want), data)
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("%s = %d, want %d", k, decoded[k], v)
		}
	}
}

func TestResponseCode(t *testing.T) {
	tests := []struct {
		payload string
		code    int
		ok      bool
	}{
		{"200", 200, true},
		{"201", 201, true},
		{"404", 404, true},
		{" 200 ", 200, true},
		{"200 OK", 200, true},
		{"", 0, false},
		{"error", 0, false},
	}
	for _, tt := range tests {
		code, ok := ResponseCode(tt.payload)
		if code != tt.code || ok != tt.ok {
			t.Errorf("ResponseCode(%q) = (%d, %v), want (%d, %v)", tt.payload, code, ok, tt.code, tt.ok)
		}
	}
}

func TestMeterFirstMessageImmediate(t *testing.T) {
	m := NewMeter(time.Second)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	var slept time.Duration
	m.now = func() time.Time { return now }
	m.sleep = func(d time.Duration) { slept += d }

	m.Wait()
	if slept != 0 {
		t.Errorf("first message slept %v, want 0", slept)
	}
}

func TestMeterDelaysBurst(t *testing.T) {
	m := NewMeter(time.Second)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	var slept time.Duration
	m.now = func() time.Time { return now }
	m.sleep = func(d time.Duration) {
		slept += d
		now = now.Add(d)
	}

	m.Wait()
	m.Wait()
	m.Wait()
	if slept != 2*time.Second {
		t.Errorf("burst of 3 slept %v total, want 2s", slept)
	}
}

func TestMeterNoDelayAfterQuietPeriod(t *testing.T) {
	m := NewMeter(time.Second)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	var slept time.Duration
	m.now = func() time.Time { return now }
	m.sleep = func(d time.Duration) { slept += d }

	m.Wait()
	now = now.Add(5 * time.Second)
	m.Wait()
	if slept != 0 {
		t.Errorf("slept %v after quiet period, want 0", slept)
	}
}

func TestFakeClientDeliver(t *testing.T) {
	f := NewFakeClient()
	var got string
	if err := f.Subscribe("pump-control", func(p string) { got = p }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !f.Deliver("pump-control", "1") {
		t.Fatal("Deliver found no handler")
	}
	if got != "1" {
		t.Errorf("handler got %q, want \"1\"", got)
	}
	if f.Deliver("other", "x") {
		t.Error("Deliver to unknown topic should return false")
	}
}
