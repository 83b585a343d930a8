package rest

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Reports            *ReportHandler
	Health             *HealthHandler
	Metrics            http.Handler
	Collectors         *metrics.Collectors
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter builds the HTTP handler: probes and metrics at the root, the
// read models under /v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(recovery(cfg.Logger))
	if cfg.Collectors != nil {
		r.Use(instrument(cfg.Collectors))
	}

	r.HandleFunc("/healthz", cfg.Health.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", cfg.Health.readiness).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/v1/tenants/{tenant_id}/consumers/{consumer_id}").Subrouter()
	api.HandleFunc("", cfg.Reports.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/scheduled-payments", cfg.Reports.ScheduledPayments).Methods(http.MethodGet)
	api.HandleFunc("/transactions", cfg.Reports.Transactions).Methods(http.MethodGet)

	if len(cfg.CORSAllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	}).Handler(r)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// instrument labels requests by route template to keep cardinality bounded.
func instrument(c *metrics.Collectors) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			c.ObserveHTTP(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}

func recovery(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic in HTTP handler",
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
