// Command rescore recomputes the score and status of every lead once and
// prints the batch result as JSON.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edureach360/leads-api/internal/config"
	"github.com/edureach360/leads-api/internal/infra/database"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	leadRepo := database.NewLeadRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	conversationRepo := database.NewConversationRepository(db)

	calculator := usecase.NewScoreCalculator(interactionRepo, conversationRepo)
	recomputeUC := usecase.NewRecomputeScoreUseCase(leadRepo, interactionRepo, conversationRepo, calculator, log)
	rescoreUC := usecase.NewRescoreAllUseCase(leadRepo, recomputeUC, log)

	result, err := rescoreUC.Execute(ctx)
	if err != nil {
		log.Error("rescore failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	_ = json.NewEncoder(os.Stdout).Encode(result)
}
