package usecase

import (
	"context"
	"strings"

	"github.com/edureach360/leads-api/internal/entity"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type ListLeadsUseCase struct {
	Leads LeadRepository
}

func NewListLeadsUseCase(leads LeadRepository) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	status := entity.LeadStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if status != "" && !status.Valid() {
		return nil, validationFailed([]ValidationError{{"status", "must be one of new, contacted, qualified, converted, lost"}})
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	page := max(input.Page, 1)

	leads, total, err := uc.Leads.List(ctx, entity.LeadFilter{
		Status: status,
		Search: strings.TrimSpace(input.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	return &ListLeadsOutput{
		Data: leads,
		Meta: ListLeadsMeta{
			Total:      total,
			Page:       page,
			TotalPages: (total + limit - 1) / limit,
			Limit:      limit,
		},
	}, nil
}
