package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/wellhead-controller/internal/cloud"
	"github.com/sweeney/wellhead-controller/internal/controller"
	"github.com/sweeney/wellhead-controller/internal/pump"
	"github.com/sweeney/wellhead-controller/internal/recovery"
	"github.com/sweeney/wellhead-controller/internal/register"
	"github.com/sweeney/wellhead-controller/internal/sensors"
	"github.com/sweeney/wellhead-controller/internal/watchdog"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectAbnormalRestartFirstRun(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "clean-shutdown")
	db := filepath.Join(dir, "registers.db")

	// No register file yet: a fresh install is never abnormal.
	if detectAbnormalRestart(marker, db) {
		t.Error("first run should not count as abnormal")
	}
}

func TestDetectAbnormalRestartAfterCleanShutdown(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "clean-shutdown")
	db := filepath.Join(dir, "registers.db")
	touch(t, db)
	touch(t, marker)

	if detectAbnormalRestart(marker, db) {
		t.Error("marker present should mean clean restart")
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("marker should be consumed")
	}
	// The marker is gone now, so a second start without a new marker is
	// abnormal.
	if !detectAbnormalRestart(marker, db) {
		t.Error("missing marker with existing registers should be abnormal")
	}
}

func TestWriteCleanShutdownMarker(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "nested", "clean-shutdown")

	writeCleanShutdownMarker(marker)

	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("marker not written: %v", err)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("WELLHEAD_TEST_KEY", "from-env")
	if got := envOr("WELLHEAD_TEST_KEY", "def"); got != "from-env" {
		t.Errorf("envOr = %q, want from-env", got)
	}
	if got := envOr("WELLHEAD_TEST_KEY_UNSET", "def"); got != "def" {
		t.Errorf("envOr = %q, want def", got)
	}
}

func TestSubscribeCommandsRoutesToController(t *testing.T) {
	client := cloud.NewFakeClient()
	ctl := controller.New(controller.Config{DeviceID: "wellhead-9"}, controller.Deps{
		Store:    register.NewFakeStore(),
		Sensors:  sensors.NewFakeReader(),
		Pump:     pump.NewFakeActuator(),
		Cloud:    client,
		Recovery: recovery.NewFakeExecutor(),
		Wake:     &watchdog.Wake{},
		Petter:   watchdog.NewFakePetter(),
	})

	subscribeCommands(client, "wellhead-9", ctl)

	for _, topic := range []string{
		"wellhead-9/cmd/lockout",
		"wellhead-9/cmd/verbose",
		"wellhead-9/cmd/tz",
		"wellhead-9/cmd/send-now",
		"wellhead-9/cmd/reset-counts",
		"wellhead-9/cmd/reset-storage",
		"wellhead-9/cmd/hard-reset",
	} {
		if _, ok := client.Handlers[topic]; !ok {
			t.Errorf("topic %s not subscribed", topic)
		}
	}

	// A bad payload must be rejected by the handler, not crash it.
	if !client.Deliver("wellhead-9/cmd/lockout", "banana") {
		t.Fatal("lockout handler missing")
	}
}
