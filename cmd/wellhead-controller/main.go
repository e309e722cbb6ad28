// Command wellhead-controller runs the cellular pump controller: it samples
// the wellhead sensors, drives the pump relay, reports to the monitoring
// endpoint over MQTT, and recovers itself when the link goes quiet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/wellhead-controller/internal/cloud"
	"github.com/sweeney/wellhead-controller/internal/controller"
	"github.com/sweeney/wellhead-controller/internal/pump"
	"github.com/sweeney/wellhead-controller/internal/recovery"
	"github.com/sweeney/wellhead-controller/internal/register"
	"github.com/sweeney/wellhead-controller/internal/sensors"
	"github.com/sweeney/wellhead-controller/internal/status"
	"github.com/sweeney/wellhead-controller/internal/watchdog"
	"github.com/sweeney/wellhead-controller/internal/web"
)

const release = "1.50"

// cleanShutdownMarker distinguishes an ordered restart from a watchdog or
// power-loss one; only the latter count against the recovery ladder.
const cleanShutdownMarker = "/run/wellhead-controller/clean-shutdown"

type options struct {
	broker   string
	device   string
	tick     time.Duration
	sample   time.Duration
	httpAddr string
	dbPath   string

	lowBatt    int
	maxRuntime time.Duration
	modemPort  string

	pinPump      int
	pinIndicator int
	pinCtrlPower int
	pinLowLevel  int
	pinAuxPower  int
	pinHardReset int
	pinWDDone    int
	pinWDWake    int

	paths sensors.Paths
}

func main() {
	// Optional env file for deployments that do not use a unit file.
	if err := godotenv.Load("/etc/wellhead-controller.env"); err == nil {
		log.Printf("loaded /etc/wellhead-controller.env")
	}

	var opts options
	flag.StringVar(&opts.broker, "broker", envOr("WELLHEAD_BROKER", "tcp://127.0.0.1:1883"), "MQTT broker address")
	flag.StringVar(&opts.device, "device", envOr("WELLHEAD_DEVICE", "wellhead-1"), "device ID and MQTT topic prefix")
	flag.DurationVar(&opts.tick, "tick", 100*time.Millisecond, "control loop tick interval")
	flag.DurationVar(&opts.sample, "sample", 2*time.Second, "measurement interval")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&opts.dbPath, "db", "/var/lib/wellhead-controller/registers.db", "register store path")
	flag.IntVar(&opts.lowBatt, "low-batt", 30, "state of charge (percent) that suspends operation")
	flag.DurationVar(&opts.maxRuntime, "max-runtime", 95*time.Minute, "pump failsafe runtime limit")
	flag.StringVar(&opts.modemPort, "modem-port", "/dev/ttyUSB2", "modem AT command serial port")

	flag.IntVar(&opts.pinPump, "pin-pump", pump.DefaultPinPump, "BCM pin for the pump relay")
	flag.IntVar(&opts.pinIndicator, "pin-indicator", pump.DefaultPinIndicator, "BCM pin for the pump indicator LED")
	flag.IntVar(&opts.pinCtrlPower, "pin-ctrl-power", sensors.DefaultPinControlPower, "BCM pin sensing control power")
	flag.IntVar(&opts.pinLowLevel, "pin-low-level", sensors.DefaultPinLowLevel, "BCM pin sensing the low-level float")
	flag.IntVar(&opts.pinAuxPower, "pin-aux-power", sensors.DefaultPinAuxPower, "BCM pin switching aux sensor power")
	flag.IntVar(&opts.pinHardReset, "pin-hard-reset", recovery.DefaultPinHardReset, "BCM pin driving the hard power cycle")
	flag.IntVar(&opts.pinWDDone, "pin-wd-done", watchdog.DefaultPinDone, "BCM pin for the watchdog done pulse")
	flag.IntVar(&opts.pinWDWake, "pin-wd-wake", watchdog.DefaultPinWake, "BCM pin for the watchdog wake interrupt")

	flag.StringVar(&opts.paths.PumpCurrentRaw, "adc-pump-current", "/sys/bus/iio/devices/iio:device0/in_voltage2_raw", "raw ADC file for pump current")
	flag.StringVar(&opts.paths.TemperatureMilliC, "temp-file", "/sys/class/thermal/thermal_zone0/temp", "temperature file (millidegrees C)")
	flag.StringVar(&opts.paths.BatteryCapacity, "battery-file", "/sys/class/power_supply/battery/capacity", "battery capacity file (percent)")
	flag.StringVar(&opts.paths.ACOnline, "ac-file", "/sys/class/power_supply/ac/online", "AC online file (0 means on battery)")
	flag.StringVar(&opts.paths.SignalQuality, "signal-file", "/run/wellhead/signal", "modem signal quality file")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	abnormal := detectAbnormalRestart(cleanShutdownMarker, opts.dbPath)

	store, err := register.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open register store: %w", err)
	}
	defer store.Close()

	sense, err := sensors.NewRealReader(opts.pinCtrlPower, opts.pinLowLevel, opts.pinAuxPower, opts.paths)
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer sense.Close()

	actuator, err := pump.NewRealActuator(opts.pinPump, opts.pinIndicator)
	if err != nil {
		return fmt.Errorf("init pump: %w", err)
	}
	defer actuator.Close()

	wake := &watchdog.Wake{}
	petter, err := watchdog.NewRealPetter(opts.pinWDDone, opts.pinWDWake, wake)
	if err != nil {
		return fmt.Errorf("init watchdog: %w", err)
	}
	defer petter.Close()

	client := cloud.NewRealClient(opts.broker, opts.device, opts.device)
	defer client.Close()

	tracker := status.NewTracker(time.Now(), release, status.Config{
		Broker:     opts.broker,
		DeviceID:   opts.device,
		SampleMs:   opts.sample.Milliseconds(),
		TickMs:     opts.tick.Milliseconds(),
		HTTPAddr:   opts.httpAddr,
		RegisterDB: opts.dbPath,
	})

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	ctl := controller.New(controller.Config{
		Release:          release,
		DeviceID:         opts.device,
		SampleInterval:   opts.sample,
		LowBattLimit:     opts.lowBatt,
		PumpMaxRuntime:   opts.maxRuntime,
		PumpCommandTopic: opts.device + "/cmd/pump",
		ResponseTopic:    opts.device + "/hook-response",
		AbnormalRestart:  abnormal,
		SyncClock:        syncClock,
	}, controller.Deps{
		Store:    store,
		Sensors:  sense,
		Pump:     actuator,
		Cloud:    client,
		Recovery: recovery.NewRealExecutor(opts.pinHardReset, opts.modemPort),
		Wake:     wake,
		Petter:   petter,
		Tracker:  tracker,
	})

	subscribeCommands(client, opts.device, ctl)

	log.Printf("started: device=%s broker=%s tick=%v sample=%v abnormal-restart=%v",
		opts.device, opts.broker, opts.tick, opts.sample, abnormal)

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = ctl.Run(ticker.C, sigCh)
	if err == nil {
		// Ordered shutdown. The pump relay keeps its level; the next start
		// reconciles it against the persisted command state.
		writeCleanShutdownMarker(cleanShutdownMarker)
	}
	return err
}

// subscribeCommands wires the per-device command topics to the controller.
// The pump and acknowledgment topics are subscribed by the controller itself.
func subscribeCommands(client cloud.Client, device string, ctl *controller.Controller) {
	cmds := map[string]func(string) error{
		"lockout":       ctl.SetLockout,
		"verbose":       ctl.SetVerboseMode,
		"tz":            ctl.SetTimeZone,
		"send-now":      ctl.SendNow,
		"reset-counts":  ctl.ResetCounts,
		"reset-storage": ctl.ResetStorage,
		"hard-reset":    ctl.HardResetNow,
	}
	for name, fn := range cmds {
		topic := device + "/cmd/" + name
		err := client.Subscribe(topic, func(payload string) {
			if err := fn(payload); err != nil {
				log.Printf("command %s: %v", name, err)
			}
		})
		if err != nil {
			log.Printf("subscribe %s: %v", topic, err)
		}
	}
}

// detectAbnormalRestart reports whether the previous run ended without an
// ordered shutdown. The marker is consumed so a crash after startup counts
// again. A missing register file means a first run, never abnormal.
func detectAbnormalRestart(marker, dbPath string) bool {
	if _, err := os.Stat(dbPath); err != nil {
		return false
	}
	if _, err := os.Stat(marker); err == nil {
		if err := os.Remove(marker); err != nil {
			log.Printf("remove shutdown marker: %v", err)
		}
		return false
	}
	return true
}

func writeCleanShutdownMarker(marker string) {
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		log.Printf("create marker dir: %v", err)
		return
	}
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		log.Printf("write shutdown marker: %v", err)
	}
}

// syncClock asks chrony to confirm the system clock is disciplined, waiting
// up to the given budget. The cellular link is the only time source in the
// field, so this runs right after the daily report is acknowledged.
func syncClock(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "chronyc", "waitsync", "1").CombinedOutput()
	if err != nil {
		return fmt.Errorf("chronyc waitsync: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
