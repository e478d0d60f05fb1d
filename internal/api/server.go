// Package api provides the HTTP dispatcher (C8): a single POST /run/{op}
// endpoint fanning out to the operation table, plus plain health/help
// endpoints and an optional Prometheus /metrics mount. Grounded on the
// teacher's internal/api/server.go router/middleware shape
// (chi + RequestID/RealIP/Recoverer/Timeout/CORS, writeJSON/writeError
// helpers), generalized from TuTu's model-server routes to MCE's single
// dispatch route.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artifactengine/mce/internal/engine"
)

// Version is reported by the get_version operation and the root endpoint.
const Version = "0.1.0"

// envelope is the uniform response shape every /run/{op} call returns
// (spec.md §4.7): code 0 on success, -1 on an operation error, -2 on a
// framework-level error such as a malformed request body or unknown op.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Server is the engine's HTTP API surface.
type Server struct {
	engine         *engine.Engine
	ops            map[string]Operation
	metricsEnabled bool
}

// NewServer builds a Server dispatching against e.
func NewServer(e *engine.Engine) *Server {
	return &Server{
		engine:         e,
		ops:            buildOperations(e),
		metricsEnabled: e.Config.MetricsEnabled,
	}
}

// EnableMetrics force-enables the /metrics endpoint regardless of config,
// mirroring the teacher's explicit toggle for callers that want it on
// independent of the boot file.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("managed computation engine running, version " + Version + "\n"))
	})

	r.Get("/help", s.handleHelp)
	r.Post("/run/{op}", s.handleRun)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHelp renders one line per registered operation, in registration
// order, mirroring the original's help() text dump.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, name := range operationOrder {
		h := operationHelp[name]
		w.Write([]byte(h.signature + " — " + h.description + "\n"))
	}
}

// handleRun dispatches the named operation, decoding the request body (if
// any) as the operation's kwargs.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	fn, ok := s.ops[op]
	if !ok {
		metricErrors.WithLabelValues("unknown").Inc()
		writeJSON(w, http.StatusNotFound, envelope{Code: -2, Msg: "unknown operation: " + op})
		return
	}

	kwargs := map[string]any{}
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&kwargs); err != nil {
			metricErrors.WithLabelValues(op).Inc()
			writeJSON(w, http.StatusBadRequest, envelope{Code: -2, Msg: "malformed request body: " + err.Error()})
			return
		}
	}

	start := time.Now()
	result, err := fn(r.Context(), kwargs)
	metricLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metricErrors.WithLabelValues(op).Inc()
		writeJSON(w, http.StatusOK, envelope{Code: -1, Msg: err.Error()})
		return
	}
	metricCalls.WithLabelValues(op).Inc()
	writeJSON(w, http.StatusOK, envelope{Code: 0, Data: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope directly, for handlers that
// never reach the operation table (malformed routes, etc).
func writeError(w http.ResponseWriter, status int, code int, msg string) {
	writeJSON(w, status, envelope{Code: code, Msg: msg})
}

// corsMiddleware adds permissive CORS headers, carried over from the
// teacher unchanged: this is a local/internal-network service, not a
// public multi-tenant API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
