package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/wareki-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET /health
//	GET /metrics                              (X-API-Key when API_KEY is set)
//	GET /api/v1/eras
//	GET /api/v1/eras/current
//	GET /api/v1/eras/year/{year}
//	GET /api/v1/eras/{key}/{eraYear}
//	GET /api/v1/minguo/year/{year}
//	GET /api/v1/minguo/{minguoYear}
//	GET /api/v1/diff?start=&end=
//	GET /api/v1/holidays[?year=]
//	GET /api/v1/holidays/next[?date=]
//	GET /api/v1/holidays/{year}.ics
//	GET /api/v1/tables/japanese[?era=]
//	GET /api/v1/tables/minguo
//	GET /api/v1/tables/export.xlsx
//
// Every /api/v1 route accepts ?lang=ja|zh-TW|en and is rate limited per
// client when RATE_LIMIT_RPS > 0.
func SetupRoutes(handlers *Handlers, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	for _, mw := range baseMiddleware(log) {
		r.Use(mw)
	}
	if handlers.metrics != nil {
		r.Use(handlers.metrics.Middleware())
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Operational routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)
	if handlers.metrics != nil {
		r.With(AuthMiddleware(cfg, log)).Method(http.MethodGet, "/metrics", handlers.metrics.Handler())
	}

	// ==========================================================================
	// Conversion API
	// ==========================================================================
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimited() {
			r.Use(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(handlers.TooManyRequests))
		}

		r.Get("/eras", handlers.ListEras)
		r.Get("/eras/current", handlers.CurrentEra)
		r.Get("/eras/year/{year}", handlers.EraByYear)
		r.Get("/eras/{key}/{eraYear}", handlers.YearByEra)

		r.Get("/minguo/year/{year}", handlers.MinguoByYear)
		r.Get("/minguo/{minguoYear}", handlers.YearByMinguo)

		r.Get("/diff", handlers.Diff)

		r.Get("/holidays", handlers.ListHolidays)
		r.Get("/holidays/next", handlers.NextHoliday)
		r.Get("/holidays/{year}.ics", handlers.HolidayFeed)

		r.Get("/tables/japanese", handlers.JapaneseTable)
		r.Get("/tables/minguo", handlers.MinguoTable)
		r.Get("/tables/export.xlsx", handlers.ExportTables)
	})

	return r
}

// baseMiddleware is the chain every request passes through, outermost first.
// The request ID is attached before recovery so panic logs carry it.
func baseMiddleware(log *slog.Logger) []Middleware {
	return []Middleware{
		RequestIDMiddleware(),
		RecoveryMiddleware(log),
		LoggingMiddleware(log),
		CORSMiddleware(),
	}
}
