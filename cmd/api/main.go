package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edureach360/leads-api/internal/config"
	"github.com/edureach360/leads-api/internal/infra/database"
	"github.com/edureach360/leads-api/internal/infra/http/handlers"
	"github.com/edureach360/leads-api/internal/infra/http/middleware"
	"github.com/edureach360/leads-api/internal/infra/integration/kommo"
	"github.com/edureach360/leads-api/internal/infra/integration/openai"
	"github.com/edureach360/leads-api/internal/infra/integration/razorpay"
	"github.com/edureach360/leads-api/internal/infra/mail"
	"github.com/edureach360/leads-api/internal/infra/queue"
	"github.com/edureach360/leads-api/internal/infra/worker"
	"github.com/edureach360/leads-api/internal/logger"
	"github.com/edureach360/leads-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}
		log.Info("migrations applied", slog.Int("count", applied))
	}

	// 2. Repositories
	leadRepo := database.NewLeadRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	conversationRepo := database.NewConversationRepository(db)
	planRepo := database.NewPlanRepository(db)

	// 3. Notifications: SMTP directly, or through RabbitMQ when configured
	mailSender := mail.NewEmailSender(mail.Config{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		User:     cfg.MailUser,
		Password: cfg.MailPass,
		From:     cfg.MailFrom,
	}, log)
	mailNotifier := mail.NewNotifier(mailSender, cfg.AdminEmail, interactionRepo, log)

	var (
		notifier       usecase.Notifier = mailNotifier
		broker         handlers.BrokerConn
		notificationWk *queue.Worker
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		consumerCh, err := rabbit.Conn.Channel()
		if err != nil {
			return err
		}
		notifier = queue.NewProducer(rabbit.Ch)
		notificationWk = queue.NewWorker(consumerCh, mailNotifier, log)
		notificationWk.OnResult = middleware.RecordNotificationSent
		broker = rabbit.Conn
	} else {
		log.Warn("RABBITMQ_URL not set, sending notifications inline")
	}

	dispatcher := usecase.NewAsyncDispatcher(log, 0)
	dispatcher.OnResult(middleware.RecordNotificationDispatch)

	// 4. Gateways
	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayURL)
	completer := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIURL,
		Model:   cfg.OpenAIModel,
	})
	crm := kommo.NewClient(kommo.Config{
		Token:    cfg.KommoToken,
		BaseURL:  cfg.KommoURL,
		StatusID: cfg.KommoStatusID,
	})

	// 5. Use cases
	calculator := usecase.NewScoreCalculator(interactionRepo, conversationRepo)
	upsertUC := usecase.NewUpsertLeadUseCase(leadRepo, planRepo, calculator, dispatcher, notifier, log)
	recomputeUC := usecase.NewRecomputeScoreUseCase(leadRepo, interactionRepo, conversationRepo, calculator, log)
	rescoreUC := usecase.NewRescoreAllUseCase(leadRepo, recomputeUC, log)
	listUC := usecase.NewListLeadsUseCase(leadRepo)
	createOrderUC := usecase.NewCreateOrderUseCase(leadRepo, interactionRepo, gateway, log)
	verifyUC := usecase.NewVerifyPaymentUseCase(leadRepo, interactionRepo, gateway, recomputeUC, dispatcher, notifier, log)
	if crm.Configured() {
		verifyUC.CRM = crm
	}
	chatUC := usecase.NewChatUseCase(completer, conversationRepo, log)
	conversationUC := usecase.NewGetConversationUseCase(conversationRepo)

	// 6. HTTP
	router := handlers.NewRouter(handlers.RouterConfig{
		Leads:    handlers.NewLeadHandler(upsertUC, listUC, recomputeUC, rescoreUC, log),
		Payments: handlers.NewPaymentHandler(createOrderUC, verifyUC, log),
		Webhook:  handlers.NewWebhookHandler(cfg.RazorpayWebhook, verifyUC, log),
		Chat:     handlers.NewChatHandler(chatUC, conversationUC, log),
		Health: handlers.NewHealthHandler(db, broker, map[string]bool{
			"razorpay": cfg.RazorpayKeyID != "",
			"openai":   cfg.OpenAIAPIKey != "",
			"smtp":     cfg.MailHost != "",
			"kommo":    crm.Configured(),
		}),
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitPerMinute),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rescoreWk := worker.NewRescoreWorker(rescoreUC, cfg.RescoreCron, log)
	rescoreWk.OnRun(func(_ usecase.RescoreResult, err error) { middleware.RecordRescoreRun(err) })

	// 7. Lifecycle
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return rescoreWk.Start(gctx)
	})

	if notificationWk != nil {
		g.Go(func() error {
			return notificationWk.Start(gctx)
		})
	}

	err = g.Wait()
	dispatcher.Wait()
	log.Info("shutdown complete")
	return err
}
