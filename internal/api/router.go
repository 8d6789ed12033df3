// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablewise/menucast/internal/middleware"
)

// Router wires handlers and middleware into the Chi mux.
type Router struct {
	handlers   *Handlers
	middleware *ChiMiddleware
}

// NewRouter creates a router from the handler set and middleware factory.
func NewRouter(handlers *Handlers, mw *ChiMiddleware) *Router {
	return &Router{
		handlers:   handlers,
		middleware: mw,
	}
}

// SetupChi builds the full route tree.
//
// Global middleware applies to every route; each route group then adds
// its own rate-limit class. The public menu group additionally gets
// gzip compression since menu JSON is large and repetitive, while
// admin groups skip it in favor of always-fresh uncompressed responses.
func (router *Router) SetupChi() *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	h := router.handlers
	m := router.middleware

	// Public menu
	r.Route("/api/v1/menu", func(r chi.Router) {
		r.Use(m.RateLimitCustom(RateLimitMenu))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/", h.HandleGetMenu)
	})

	// Admin surface
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimitCustom(RateLimitAPI))

			r.Get("/menu", h.HandleGetAdminMenu)
			r.Get("/sync/status", h.HandleGetSyncStatus)
			r.Get("/scheduler/status", h.HandleSchedulerStatus)
			r.Get("/display-categories", h.HandleListDisplayCategories)
			r.Get("/combo-categories", h.HandleListComboCategories)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimitCustom(RateLimitSync))

			r.Post("/sync", h.HandleTriggerSync)
			r.Post("/scheduler/start", h.HandleSchedulerStart)
			r.Post("/scheduler/stop", h.HandleSchedulerStop)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimitCustom(RateLimitWrite))

			r.Patch("/items/{id}/sold-out", h.HandleSetSoldOut)
			r.Post("/items/sold-out", h.HandleSetSoldOutBulk)

			r.Post("/display-categories", h.HandleCreateDisplayCategory)
			r.Put("/display-categories/{id}", h.HandleUpdateDisplayCategory)
			r.Delete("/display-categories/{id}", h.HandleDeleteDisplayCategory)
			r.Post("/display-categories/{id}/items", h.HandleAssignDisplayItem)
			r.Delete("/display-categories/{id}/items/{itemId}", h.HandleUnassignDisplayItem)

			r.Post("/combo-categories", h.HandleCreateComboCategory)
			r.Put("/combo-categories/{id}", h.HandleUpdateComboCategory)
			r.Delete("/combo-categories/{id}", h.HandleDeleteComboCategory)
			r.Post("/combo-categories/{id}/items", h.HandleAssignComboItem)
			r.Delete("/combo-categories/{id}/items/{itemId}", h.HandleUnassignComboItem)
		})
	})

	// Health and metrics
	r.Group(func(r chi.Router) {
		r.Use(m.RateLimitCustom(RateLimitHealth))

		r.Get("/health", h.HandleHealth)
		r.Handle("/metrics", promhttp.Handler())
	})

	return r
}

// chiMiddleware adapts an http.HandlerFunc middleware to the
// func(http.Handler) http.Handler shape Chi expects.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}
