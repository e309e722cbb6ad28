// Package web provides an HTTP view of the controller's read-only state.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/sweeney/wellhead-controller/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "wellhead-controller %s\n\n", snap.Release)
	fmt.Fprintf(w, "state:        %s\n", snap.State)
	fmt.Fprintf(w, "alerts:       %08b\n", snap.Alerts)
	fmt.Fprintf(w, "signal:       %s\n", snap.Signal)
	fmt.Fprintf(w, "resets:       %d\n", snap.ResetCount)
	fmt.Fprintf(w, "temperature:  %d F\n", snap.TemperatureF)
	fmt.Fprintf(w, "battery:      %d%%\n", snap.StateOfCharge)
	fmt.Fprintf(w, "pump amps:    %d\n", snap.PumpAmps)
	fmt.Fprintf(w, "pump mins:    %d\n", snap.PumpMins)
	fmt.Fprintf(w, "pump called:  %v\n", snap.PumpCalled)
	fmt.Fprintf(w, "pump lockout: %v\n", snap.PumpLockout)
	fmt.Fprintf(w, "time zone:    %s\n", snap.TimeZone)
	fmt.Fprintf(w, "cloud:        connected=%v broker=%s\n", snap.CloudConnected, snap.Config.Broker)
	fmt.Fprintf(w, "uptime:       %v\n", snap.Uptime())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(snap))
}
