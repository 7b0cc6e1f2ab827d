// Package monitor serves live measurement status over HTTP and renders
// measurement series as charts and PNG plots.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	sqlite "github.com/banshee-data/bodyslice/internal/body/storage/sqlite"
	"github.com/banshee-data/bodyslice/internal/httputil"
	"github.com/banshee-data/bodyslice/internal/monitoring"
	"github.com/banshee-data/bodyslice/internal/timeutil"
	"github.com/banshee-data/bodyslice/internal/units"
	"github.com/banshee-data/bodyslice/internal/version"
)

// PassLister reads stored passes. *sqlite.Store implements it.
type PassLister interface {
	ListPasses(sessionID string, kind l3measure.Kind, limit int) ([]sqlite.Measurement, error)
}

// WebServer handles the HTTP interface for monitoring measurements.
type WebServer struct {
	address   string
	history   *History
	store     PassLister
	sessionID string
	units     string
	clock     timeutil.Clock
	server    *http.Server
}

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address string
	History *History
	// Store and SessionID enable /api/body/passes; both are optional.
	Store     PassLister
	SessionID string
	// Units is the length unit of reported diameters (default cm).
	Units string
	Clock timeutil.Clock
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:   config.Address,
		history:   config.History,
		store:     config.Store,
		sessionID: config.SessionID,
		units:     config.Units,
		clock:     config.Clock,
	}
	if ws.history == nil {
		ws.history = NewHistory(1)
	}
	if !units.IsValid(ws.units) {
		ws.units = units.Centimetres
	}
	if ws.clock == nil {
		ws.clock = timeutil.RealClock{}
	}

	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.setupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Handler returns the route multiplexer.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns early with an error if the listener cannot be started.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}

	monitoring.Logf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/body/latest", ws.handleLatest)
	mux.HandleFunc("/api/body/summary", ws.handleSummary)
	mux.HandleFunc("/api/body/passes", ws.handlePasses)
	mux.HandleFunc("/debug/body/chart", ws.handleChart)

	return mux
}

type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
	Subject   uint64          `json:"subject"`
	Passes    int             `json:"history_len"`
	Ticks     l3measure.Stats `json:"ticks"`
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireGet(w, r) {
		return
	}
	subject, stats := ws.history.Stats()
	httputil.WriteJSONOK(w, healthResponse{
		Status:    "ok",
		Service:   "bodyslice",
		Version:   version.Version,
		Timestamp: ws.clock.Now().UTC().Format(time.RFC3339),
		Subject:   subject,
		Passes:    ws.history.Len(),
		Ticks:     stats,
	})
}

func (ws *WebServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireGet(w, r) {
		return
	}
	set, ok := ws.history.Latest()
	if !ok {
		httputil.NotFound(w, "no measurements yet")
		return
	}
	httputil.WriteJSONOK(w, NewSetJSON(&set, ws.requestUnits(r)))
}

func (ws *WebServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireGet(w, r) {
		return
	}
	unit := ws.requestUnits(r)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"units": unit,
		"kinds": Summarize(ws.history.Sets(), unit),
	})
}

// handlePasses returns stored passes of one kind for the current session.
// Query params:
//
//	kind (required), limit (optional, default all), units (optional)
func (ws *WebServer) handlePasses(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireGet(w, r) {
		return
	}
	if ws.store == nil || ws.sessionID == "" {
		httputil.NotFound(w, "no database configured")
		return
	}
	kind, err := l3measure.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			httputil.BadRequest(w, fmt.Sprintf("invalid limit %q", s))
			return
		}
	}
	passes, err := ws.store.ListPasses(ws.sessionID, kind, limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list passes: %v", err))
		return
	}

	unit := ws.requestUnits(r)
	type passJSON struct {
		TimestampNanos int64 `json:"timestamp_ns"`
		RecordJSON
	}
	out := make([]passJSON, 0, len(passes))
	for _, p := range passes {
		out = append(out, passJSON{TimestampNanos: p.TimestampNanos, RecordJSON: NewRecordJSON(kind, p.Record, unit)})
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"session_id": ws.sessionID,
		"units":      unit,
		"passes":     out,
	})
}

// requestUnits returns the units query parameter when valid, else the
// server default.
func (ws *WebServer) requestUnits(r *http.Request) string {
	if u := r.URL.Query().Get("units"); units.IsValid(u) {
		return u
	}
	return ws.units
}

// Close stops the server immediately.
func (ws *WebServer) Close() error {
	return ws.server.Close()
}
