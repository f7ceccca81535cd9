// control/admin.go
// Author: momentics <momentics@gmail.com>
//
// Admin HTTP surface on its own listener: Prometheus metrics, debug probes
// and a liveness check. The bridge socket itself never speaks net/http.

package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminRouter mounts /metrics, /debug/state and /healthz.
func NewAdminRouter(gatherer prometheus.Gatherer, probes *DebugProbes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if probes != nil {
		r.Method(http.MethodGet, "/debug/state", probes)
	}
	return r
}
