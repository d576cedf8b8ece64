// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/api"
	"github.com/vaxxnz/vaxx-web/internal/api/apiutil"
	"github.com/vaxxnz/vaxx-web/internal/api/bookings"
	"github.com/vaxxnz/vaxx-web/internal/api/outbound"
	"github.com/vaxxnz/vaxx-web/internal/config"
	"github.com/vaxxnz/vaxx-web/internal/ratelimit"
)

type routeOptions struct {
	limiter  *ratelimit.Limiter
	registry *prometheus.Registry
}

func newServer(cfg *config.Config, opts routeOptions) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithCacheControl(api.PageCacheControl),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router, cfg.App.StaticDir, opts)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, staticDir string, opts routeOptions) {
	mux.HandleFunc("GET /", bookings.HandleRoot)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.registry, promhttp.HandlerOpts{}))
	}

	// Pages
	mux.HandleFunc("GET /bookings/{date}", bookings.HandleBookingsPage)
	mux.HandleFunc("GET /locations/{slug}", bookings.HandleLocationPage)
	mux.HandleFunc("GET /cookie-policy", bookings.HandleCookiePolicy)
	mux.HandleFunc("GET /privacy-policy", bookings.HandlePrivacyPolicy)

	// Fragments
	mux.HandleFunc("GET /api/v1/bookings/{date}/locations/{extId}/card", bookings.HandleCard)

	// Outbound links
	var out http.Handler = http.HandlerFunc(outbound.HandleOutbound)
	if opts.limiter != nil {
		out = opts.limiter.Middleware(out)
	}
	mux.Handle("GET /out/{kind}", out)

	// Static file handling
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
