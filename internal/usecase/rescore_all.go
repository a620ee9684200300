package usecase

import (
	"context"
	"log/slog"
)

type RescoreAllUseCase struct {
	Leads    LeadRepository
	Rescorer LeadRescorer
	Logger   *slog.Logger
}

func NewRescoreAllUseCase(leads LeadRepository, rescorer LeadRescorer, logger *slog.Logger) *RescoreAllUseCase {
	return &RescoreAllUseCase{Leads: leads, Rescorer: rescorer, Logger: logger}
}

// Execute rescores every lead one at a time. A failing lead is logged and
// skipped; only failing to enumerate the leads aborts the run.
func (uc *RescoreAllUseCase) Execute(ctx context.Context) (RescoreResult, error) {
	ids, err := uc.Leads.ListIDs(ctx)
	if err != nil {
		return RescoreResult{}, databaseError("failed to list leads", err)
	}

	result := RescoreResult{Total: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			uc.Logger.Warn("lead rescoring interrupted",
				slog.Int("total", result.Total),
				slog.Int("updated", result.Updated),
			)
			break
		}

		if _, err := uc.Rescorer.Execute(ctx, id); err != nil {
			uc.Logger.Error("lead rescoring failed",
				slog.String("lead_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Updated++
	}

	uc.Logger.Info("lead rescoring finished",
		slog.Int("total", result.Total),
		slog.Int("updated", result.Updated),
	)
	return result, nil
}
