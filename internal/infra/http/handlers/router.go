package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edureach360/leads-api/internal/infra/http/middleware"
)

type RouterConfig struct {
	Leads       *LeadHandler
	Payments    *PaymentHandler
	Webhook     *WebhookHandler
	Chat        *ChatHandler
	Health      *HealthHandler
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(90 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.With(cfg.RateLimiter.Handler).Post("/", cfg.Leads.Upsert)
			r.Get("/", cfg.Leads.List)
			r.Post("/rescore", cfg.Leads.RescoreAll)
			r.Post("/{id}/score", cfg.Leads.Recompute)
		})

		r.Route("/razorpay", func(r chi.Router) {
			r.Post("/create-order", cfg.Payments.CreateOrder)
			r.Post("/verify-payment", cfg.Payments.VerifyPayment)
			r.Post("/webhook", cfg.Webhook.Handle)
		})

		r.Route("/ai", func(r chi.Router) {
			r.With(cfg.RateLimiter.Handler).Post("/chat", cfg.Chat.Chat)
			r.Get("/conversation", cfg.Chat.Conversation)
		})
	})

	return r
}
