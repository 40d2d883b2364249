package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bhavisyaji/backend/internal/handlers"
	mW "github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/services"
)

type routerDeps struct {
	db             *sql.DB
	auth           *mW.Authenticator
	credits        *handlers.CreditsHandler
	payments       *handlers.PaymentHandler
	webhooks       *handlers.WebhookHandler
	qr             *handlers.QRHandler
	chat           *handlers.ChatHandler
	allowedOrigins []string
	requestTimeout time.Duration
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if d.requestTimeout > 0 {
		r.Use(middleware.Timeout(d.requestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Razorpay-Signature", "X-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.db.PingContext(ctx); err != nil {
				services.SendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		services.SendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/payments/webhook", d.webhooks.HandlePayment)
		r.Get("/credit-packages", d.payments.ListPackages)
		r.Get("/credit-packages/{packageId}/qr", d.qr.PackageQR)

		r.Group(func(r chi.Router) {
			r.Use(d.auth.Middleware)

			r.Get("/credits/balance", d.credits.GetBalance)
			r.Get("/credits/transactions", d.credits.ListTransactions)
			r.Post("/credits/debit", d.credits.Debit)

			r.Post("/orders", d.payments.CreateOrder)
			r.Post("/payments/verify", d.payments.VerifyPayment)

			r.Post("/chat", d.chat.Send)
		})
	})

	return r
}
