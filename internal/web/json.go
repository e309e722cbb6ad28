package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/wellhead-controller/internal/status"
)

// StatusJSON is the JSON representation of the controller status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string      `json:"state"`
	Alerts        int         `json:"alerts"`
	Signal        string      `json:"signal"`
	ResetCount    int         `json:"reset_count"`
	TemperatureF  int         `json:"temperature_f"`
	Release       string      `json:"release"`
	StateOfCharge int         `json:"state_of_charge"`
	PumpAmps      int         `json:"pump_amps"`
	PumpMins      int         `json:"pump_mins"`
	TimeZone      string      `json:"time_zone"`
	PumpCalled    bool        `json:"pump_called"`
	PumpLockout   bool        `json:"pump_lockout"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Cloud         CloudStatus `json:"cloud"`
	Config        ConfigJSON  `json:"config"`
}

// CloudStatus reports the cloud link state.
type CloudStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeviceID   string `json:"device_id"`
	SampleMs   int64  `json:"sample_ms"`
	TickMs     int64  `json:"tick_ms"`
	HTTPAddr   string `json:"http_addr"`
	RegisterDB string `json:"register_db"`
}

func formatJSON(snap status.Snapshot) []byte {
	state := snap.State
	if state == "" {
		state = "Initialize"
	}

	sj := StatusJSON{
		Status: StatusInner{
			State:         state,
			Alerts:        snap.Alerts,
			Signal:        snap.Signal,
			ResetCount:    snap.ResetCount,
			TemperatureF:  snap.TemperatureF,
			Release:       snap.Release,
			StateOfCharge: snap.StateOfCharge,
			PumpAmps:      snap.PumpAmps,
			PumpMins:      snap.PumpMins,
			TimeZone:      snap.TimeZone,
			PumpCalled:    snap.PumpCalled,
			PumpLockout:   snap.PumpLockout,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			Cloud:         CloudStatus{Connected: snap.CloudConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
				DeviceID:   snap.Config.DeviceID,
				SampleMs:   snap.Config.SampleMs,
				TickMs:     snap.Config.TickMs,
				HTTPAddr:   snap.Config.HTTPAddr,
				RegisterDB: snap.Config.RegisterDB,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
