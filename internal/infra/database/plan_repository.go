package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edureach360/leads-api/internal/entity"
)

type PlanRepository struct {
	DB *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.MembershipPlan, error) {
	query := `SELECT id, name, price_monthly, price_annual, currency FROM membership_plans WHERE id = $1`

	var plan entity.MembershipPlan
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.PriceMonthly,
		&plan.PriceAnnual,
		&plan.Currency,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
