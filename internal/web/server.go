package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/currencies", handler.ListCurrencies)
		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders/{identifier}", handler.GetOrder)
		r.Post("/orders/{identifier}/payment-method", handler.SelectPaymentMethod)
	})

	r.Get("/ws/{identifier}", handler.StreamEvents)

	// Navigation targets for terminal statuses.
	r.Get("/payment/payment-success", handler.PaymentSuccess)
	r.Get("/payment/payment-failure", handler.PaymentFailure)

	return &Server{Router: r}
}
