package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bhavisyaji/backend/docs"
	"github.com/bhavisyaji/backend/internal/audit"
	"github.com/bhavisyaji/backend/internal/config"
	"github.com/bhavisyaji/backend/internal/database"
	"github.com/bhavisyaji/backend/internal/handlers"
	mW "github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/services"
)

// @title Bhavisyaji Credits API
// @version 1.0
// @description Credit ledger, payment orders and webhook reconciliation for the Bhavisyaji astrology chat
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	var (
		db          *sql.DB
		ledgerStore services.LedgerStore
		orderStore  services.OrderStore
	)
	switch cfg.Ledger.Store {
	case "memory":
		logger.Warn("using in-memory ledger, balances are lost on restart")
		ledgerStore = services.NewMemoryLedgerStore()
		orderStore = services.NewMemoryOrderStore()
	default:
		var err error
		db, err = database.InitDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(ctx, db, "up"); err != nil {
				return err
			}
		}
		ledgerStore = services.NewPostgresLedgerStore(db)
		orderStore = services.NewPostgresOrderStore(db)
	}

	redisClient := database.InitRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	events, closeEvents, err := newEventPublisher(cfg.Events, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	auditLog := audit.NewLogger(logger)
	ledger := services.NewCreditLedgerService(ledgerStore, services.LedgerOptions{
		MaxAttempts: cfg.Ledger.MaxAttempts,
		RetryBase:   cfg.Ledger.RetryBase,
		RetryJitter: cfg.Ledger.RetryJitter,
	}, events, auditLog, logger)

	gateway := services.NewRazorpayClient(services.RazorpayConfig{
		KeyID:         cfg.Payment.KeyID,
		KeySecret:     cfg.Payment.KeySecret,
		WebhookSecret: cfg.Payment.WebhookSecret,
		BaseURL:       cfg.Payment.BaseURL,
		Timeout:       cfg.Payment.Timeout,
	})
	catalog := services.NewPackageCatalog()
	orders := services.NewOrderService(gateway, orderStore, catalog, cfg.Payment.Currency, logger)
	reconciler := services.NewWebhookReconciler(gateway.WebhookSecret(), ledger, orderStore, services.ReconcilerOptions{
		CreditStatuses: services.ParseCreditStatuses(cfg.Payment.CreditStatuses),
		LedgerTimeout:  cfg.Payment.LedgerTimeout,
	}, auditLog, logger)

	chat := services.NewChatService(ledger,
		services.NewOpenAIClient(cfg.Chat.APIKey, cfg.Chat.BaseURL, cfg.Chat.Timeout),
		services.ChatOptions{
			MessageCost:        cfg.Chat.MessageCost,
			DefaultModel:       cfg.Chat.DefaultModel,
			DefaultMaxTokens:   cfg.Chat.DefaultMaxTokens,
			DefaultTemperature: cfg.Chat.DefaultTemperature,
		}, logger)
	if cfg.Chat.APIKey == "" {
		logger.Warn("LLM_API_KEY not set, chat messages will be refunded")
	}

	handler := newRouter(routerDeps{
		db:             db,
		auth:           mW.NewAuthenticator(cfg.JWT.SecretKey),
		credits:        handlers.NewCreditsHandler(ledger, logger),
		payments:       handlers.NewPaymentHandler(orders, catalog, logger),
		webhooks:       handlers.NewWebhookHandler(reconciler, logger),
		qr:             handlers.NewQRHandler(services.NewQRService(catalog, redisClient, logger), logger),
		chat:           handlers.NewChatHandler(chat, logger),
		allowedOrigins: cfg.Server.AllowedOrigins,
		requestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("ledger_store", cfg.Ledger.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Reconcile.Enabled {
		worker := services.NewReconciliationWorker(orderStore, gateway, reconciler, services.ReconciliationOptions{
			Interval:    cfg.Reconcile.Interval,
			BatchSize:   cfg.Reconcile.BatchSize,
			MinAge:      cfg.Reconcile.MinAge,
			Workers:     cfg.Reconcile.Workers,
			OrderExpiry: cfg.Reconcile.OrderExpiry,
		}, logger)
		g.Go(func() error { return worker.Start(gctx) })
	}

	return g.Wait()
}

func newEventPublisher(cfg config.EventsConfig, rdb *redis.Client, logger *zap.Logger) (services.EventPublisher, func(), error) {
	switch cfg.Bus {
	case "nats":
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("bhavisyaji-ledger"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		logger.Info("publishing ledger events to nats", zap.String("url", cfg.NatsURL))
		return services.NewNatsEventPublisher(nc), func() { nc.Drain() }, nil
	case "redis":
		if rdb != nil {
			return services.NewRedisEventPublisher(rdb), func() {}, nil
		}
		logger.Warn("redis unavailable, ledger events disabled")
	}
	return services.NoopEventPublisher{}, func() {}, nil
}
