package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edureach360/leads-api/internal/entity"
)

type RecomputeScoreUseCase struct {
	Leads         LeadRepository
	Interactions  InteractionRepository
	Conversations ConversationRepository
	Calculator    *ScoreCalculator
	Logger        *slog.Logger
}

func NewRecomputeScoreUseCase(
	leads LeadRepository,
	interactions InteractionRepository,
	conversations ConversationRepository,
	calculator *ScoreCalculator,
	logger *slog.Logger,
) *RecomputeScoreUseCase {
	return &RecomputeScoreUseCase{
		Leads:         leads,
		Interactions:  interactions,
		Conversations: conversations,
		Calculator:    calculator,
		Logger:        logger,
	}
}

// Execute rescores a single lead from its stored history and writes the score
// together with the status the transition policy derives from it.
func (uc *RecomputeScoreUseCase) Execute(ctx context.Context, leadID string) (*RecomputeScoreOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, leadNotFound(leadID)
	}
	if err != nil {
		return nil, databaseError("failed to load lead", err)
	}

	interactions, err := uc.Interactions.FindRecentByLeadID(ctx, lead.ID, RecentInteractionsLimit)
	if err != nil {
		return nil, databaseError("failed to load interactions", err)
	}
	conversations, err := uc.Conversations.FindByLeadID(ctx, lead.ID)
	if err != nil {
		return nil, databaseError("failed to load conversations", err)
	}

	score, err := uc.Calculator.Calculate(ctx, ScoringInput{
		Lead:          lead,
		Interactions:  nonNil(interactions),
		Conversations: nonNil(conversations),
	})
	if err != nil {
		return nil, fmt.Errorf("score lead %s: %w", lead.ID, err)
	}

	next := entity.NextStatus(score, lead.Status)
	if err := uc.Leads.UpdateScore(ctx, lead.ID, score, next); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(leadID)
		}
		return nil, databaseError("failed to persist lead score", err)
	}

	if next != lead.Status {
		uc.Logger.Info("lead status changed by score",
			slog.String("lead_id", lead.ID),
			slog.Int("score", score),
			slog.String("from", string(lead.Status)),
			slog.String("to", string(next)),
		)
	}

	return &RecomputeScoreOutput{
		LeadID:         lead.ID,
		Score:          score,
		PreviousStatus: lead.Status,
		Status:         next,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
