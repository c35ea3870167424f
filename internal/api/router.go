// Package api wires the HTTP surface: routing, middleware, and the
// handlers over the domain services.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/easypark/server/internal/api/handlers"
	"github.com/easypark/server/internal/api/middleware"
	"github.com/easypark/server/internal/config"
	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/jobs"
	"github.com/easypark/server/internal/domain/payments"
	"github.com/easypark/server/internal/domain/reservations"
	"github.com/easypark/server/internal/domain/spaces"
	"github.com/easypark/server/internal/metrics"
	"github.com/easypark/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter builds the full handler chain. statusCache may be nil, in
// which case occupancy reads always hit the database.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, repo *postgres.Repository, statusCache spaces.StatusCache) http.Handler {
	facilitiesService := facilities.NewService(postgres.NewFacilityStore(repo))
	spacesService := spaces.NewService(repo.Spaces(), statusCache, logger)
	reservationsService := reservations.NewService(repo.Reservations())
	paymentsService := payments.NewService(postgres.NewPaymentStore(repo))
	jobsService := jobs.NewService(repo.Jobs(), logger)

	env := cfg.Environment
	facilitiesHandler := handlers.NewFacilitiesHandler(facilitiesService, spacesService, env)
	spacesHandler := handlers.NewSpacesHandler(spacesService, env)
	reservationsHandler := handlers.NewReservationsHandler(reservationsService, env)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsService, env)
	jobsHandler := handlers.NewJobsHandler(jobsService, env)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/estacionamentos", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(facilitiesHandler.List),
		http.MethodPost: http.HandlerFunc(facilitiesHandler.Create),
	}))
	mux.Handle("/api/estacionamentos/search", http.HandlerFunc(facilitiesHandler.Search))
	mux.Handle("/api/estacionamentos/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(facilitiesHandler.Get),
		http.MethodPut:    http.HandlerFunc(facilitiesHandler.Update),
		http.MethodDelete: http.HandlerFunc(facilitiesHandler.Delete),
	}))
	mux.Handle("/api/estacionamentos/{id}/vagas", http.HandlerFunc(facilitiesHandler.ListSpaces))

	mux.Handle("/api/vagas", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(spacesHandler.List),
		http.MethodPost: http.HandlerFunc(spacesHandler.Create),
	}))
	mux.Handle("/api/vagas/search", http.HandlerFunc(spacesHandler.Search))
	mux.Handle("/api/vagas/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(spacesHandler.Get),
		http.MethodPut:    http.HandlerFunc(spacesHandler.Update),
		http.MethodDelete: http.HandlerFunc(spacesHandler.Delete),
	}))
	mux.Handle("/api/vagas/{id}/status", http.HandlerFunc(spacesHandler.Status))

	mux.Handle("/api/reservas", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(reservationsHandler.Create),
	}))
	mux.Handle("/api/reservas/search", http.HandlerFunc(reservationsHandler.Search))
	mux.Handle("/api/reservas/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(reservationsHandler.Get),
		http.MethodPut:    http.HandlerFunc(reservationsHandler.Update),
		http.MethodDelete: http.HandlerFunc(reservationsHandler.Delete),
	}))

	mux.Handle("/api/pagamentos", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(paymentsHandler.Create),
	}))
	mux.Handle("/api/pagamentos/search", http.HandlerFunc(paymentsHandler.Search))
	mux.Handle("/api/pagamentos/{id}", http.HandlerFunc(paymentsHandler.Get))

	mux.Handle("/api/jobs/reservas/timeouts", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(jobsHandler.ReservationTimeouts),
	}))
	mux.Handle("/api/jobs/prereservas/timeouts", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(jobsHandler.PreReservationTimeouts),
	}))
	mux.Handle("/api/jobs/reservas/{id}/eta", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(jobsHandler.UpdateETA),
	}))

	var handler http.Handler = mux
	handler = metrics.InstrumentHTTP(handler)
	handler = middleware.RateLimit(cfg.RateLimit.PublicPerMinute)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
