// Package server assembles the HTTP router.
package server

import (
	"context"
	"net/http"
	"time"

	catH "github.com/fekuna/omnipos-menu-service/internal/category/handler"
	"github.com/fekuna/omnipos-menu-service/internal/httpx"
	orderH "github.com/fekuna/omnipos-menu-service/internal/order/handler"
	"github.com/fekuna/omnipos-menu-service/internal/pkg/logger"
	prodH "github.com/fekuna/omnipos-menu-service/internal/product/handler"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Categories *catH.CategoryHandler
	Products   *prodH.ProductHandler
	Orders     *orderH.OrderHandler
}

type RouterConfig struct {
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, h Handlers, db Pinger, log logger.ZapLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpx.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(db, log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "route not found", log)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", log)
	})

	r.Route("/categories", h.Categories.Routes)
	r.Route("/products", h.Products.Routes)
	r.Route("/orders", h.Orders.Routes)

	return r
}

func healthHandler(db Pinger, log logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, log)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, log)
	}
}
