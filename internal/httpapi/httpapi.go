// Package httpapi is the coordinator's operator-facing HTTP surface
// (health, metrics, a debug table listing), grounded on the go-chi usage
// seen in the pack's lsmdb repo and kept separate from the gRPC query
// surface the way the teacher keeps its profile/pprof mux apart from the
// RPC server (cmd/cmd.go).
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nipatil-cybage/nebula/internal/queryfanout"
)

// Router builds the admin mux. query is used for /debug/tables; registry
// backs /metrics.
func Router(query *queryfanout.Service, registry *prometheus.Registry) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Get("/debug/tables", func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit = parseLimit(v)
		}
		names := query.ListTables(limit)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(names)
	})

	return r
}

func parseLimit(v string) int {
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
