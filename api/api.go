package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheckResponse is returned by /health
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// New creates a new mux router with the health and metrics routes and the
// request metrics middleware installed
func New(m *Metrics) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods("GET")
	r.Use(MetricsMiddleware(m))

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
