package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter assembles the HTTP surface.
func NewRouter(h *Handler, logger *logrus.Entry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/popup-orders", h.popupOrders)
		r.Post("/popup-orders/refresh", h.refreshPopupOrders)
		r.Get("/pending-count", h.pendingCount)
		r.Get("/refresh-seq", h.refreshSeq)
		r.Post("/orders/{id}/accept", h.acceptOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
		r.Post("/orders/{id}/dismiss", h.dismissOrder)
		r.Post("/orders/{id}/show", h.showOrder)
		r.Get("/sound", h.getSound)
		r.Put("/sound", h.setSound)
		r.Get("/mode", h.mode)
	})

	return r
}

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			}).Debug("http request")
		})
	}
}
