package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/wellhead-controller/internal/status"
)

func testTracker() *status.Tracker {
	tracker := status.NewTracker(time.Now(), "2.0", status.Config{
		Broker:   "tcp://broker:1883",
		DeviceID: "wellhead-3",
		HTTPAddr: ":8080",
	})
	tracker.Update(status.Snapshot{
		State:         "Idle",
		Alerts:        0b00000110,
		Signal:        "LTE S:80%, Q:75%",
		ResetCount:    2,
		TemperatureF:  68,
		StateOfCharge: 85,
		PumpAmps:      14,
		PumpMins:      42,
		TimeZone:      "UTC-4 (DST)",
		PumpCalled:    true,
	})
	return tracker
}

func TestStatusJSON(t *testing.T) {
	srv := New(":0", testTracker())

	req := httptest.NewRequest(http.MethodGet, "/status.json", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var sj StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.State != "Idle" {
		t.Errorf("state = %q", sj.Status.State)
	}
	if sj.Status.Alerts != 6 {
		t.Errorf("alerts = %d, want 6", sj.Status.Alerts)
	}
	if sj.Status.PumpAmps != 14 {
		t.Errorf("pump_amps = %d, want 14", sj.Status.PumpAmps)
	}
	if !sj.Status.PumpCalled {
		t.Error("pump_called should be true")
	}
	if sj.Status.Release != "2.0" {
		t.Errorf("release = %q", sj.Status.Release)
	}
	if sj.Status.Cloud.Broker != "tcp://broker:1883" {
		t.Errorf("broker = %q", sj.Status.Cloud.Broker)
	}
}

func TestIndexPlaintext(t *testing.T) {
	srv := New(":0", testTracker())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"state:", "Idle", "pump amps:", "14", "UTC-4 (DST)"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestIndexNotFoundForOtherPaths(t *testing.T) {
	srv := New(":0", testTracker())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
