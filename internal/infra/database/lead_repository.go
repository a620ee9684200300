package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/edureach360/leads-api/internal/entity"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const leadColumns = `
	l.id, l.name, l.email, l.phone, l.role, l.experience, l.goals, l.interests,
	l.learning_style, l.budget, l.international, l.preferred_contact,
	l.plan_interest, l.hear_about_us, l.quiz_answers, l.ai_score, l.status,
	l.source, l.payment_status, l.payment_id, l.order_id, l.amount, l.currency,
	l.membership_plan_id, l.created_at, l.updated_at,
	p.id, p.name, p.price_monthly, p.price_annual, p.currency`

const leadFrom = `FROM leads l LEFT JOIN membership_plans p ON p.id = l.membership_plan_id`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.email = $1`, email)
	return scanLead(row)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1`, id)
	return scanLead(row)
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	quiz, err := marshalJSON(lead.QuizAnswers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (
			id, name, email, phone, role, experience, goals, interests,
			learning_style, budget, international, preferred_contact,
			plan_interest, hear_about_us, quiz_answers, ai_score, status, source,
			payment_status, payment_id, order_id, amount, currency,
			membership_plan_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Role, lead.Experience,
		lead.Goals, pq.Array(interestsOrEmpty(lead.Interests)), lead.LearningStyle,
		lead.Budget, lead.International, lead.PreferredContact, lead.PlanInterest,
		lead.HearAboutUs, quiz, lead.AIScore, lead.Status, lead.Source,
		lead.PaymentStatus, lead.PaymentID, lead.OrderID, lead.Amount,
		lead.Currency, lead.MembershipPlanID, lead.CreatedAt, lead.UpdatedAt,
	)
	return mapWriteError(err)
}

// Update writes the profile fields of lead. Status is left to the row so a
// concurrent transition survives, except that a lost lead re-engages as new.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	if !validID(lead.ID) {
		return entity.ErrLeadNotFound
	}
	quiz, err := marshalJSON(lead.QuizAnswers)
	if err != nil {
		return err
	}

	query := `
		UPDATE leads SET
			name = $2, phone = $3, role = $4, experience = $5, goals = $6,
			interests = $7, learning_style = $8, budget = $9, international = $10,
			preferred_contact = $11, plan_interest = $12, hear_about_us = $13,
			quiz_answers = $14,
			status = CASE WHEN status = 'lost' THEN 'new' ELSE status END,
			payment_status = $15, payment_id = $16, order_id = $17,
			amount = $18, currency = $19, membership_plan_id = $20,
			updated_at = $21
		WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Role, lead.Experience, lead.Goals,
		pq.Array(interestsOrEmpty(lead.Interests)), lead.LearningStyle, lead.Budget,
		lead.International, lead.PreferredContact, lead.PlanInterest,
		lead.HearAboutUs, quiz, lead.PaymentStatus, lead.PaymentID,
		lead.OrderID, lead.Amount, lead.Currency, lead.MembershipPlanID,
		lead.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOneRow(res)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int, status entity.LeadStatus) error {
	if !validID(id) {
		return entity.ErrLeadNotFound
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET ai_score = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		id, score, status,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *LeadRepository) UpdatePayment(ctx context.Context, id string, p entity.PaymentUpdate) error {
	if !validID(id) {
		return entity.ErrLeadNotFound
	}
	query := `
		UPDATE leads SET
			payment_status = COALESCE(NULLIF($2, ''), payment_status),
			payment_id     = COALESCE(NULLIF($3, ''), payment_id),
			order_id       = COALESCE(NULLIF($4, ''), order_id),
			amount         = COALESCE($5, amount),
			currency       = COALESCE(NULLIF($6, ''), currency),
			plan_interest  = COALESCE(NULLIF($7, ''), plan_interest),
			updated_at     = NOW()
		WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, p.Status, p.PaymentID, p.OrderID, p.Amount, p.Currency, p.Plan)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *LeadRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM leads ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LeadRepository) List(ctx context.Context, f entity.LeadFilter) ([]*entity.Lead, int, error) {
	where := `
		WHERE ($1 = '' OR l.status = $1)
		  AND ($2 = '' OR l.name ILIKE '%' || $2 || '%'
		               OR l.email ILIKE '%' || $2 || '%'
		               OR l.role ILIKE '%' || $2 || '%'
		               OR l.phone LIKE '%' || $2 || '%')`

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) `+leadFrom+where, string(f.Status), f.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` `+leadFrom+where+` ORDER BY l.created_at DESC LIMIT $3 OFFSET $4`,
		string(f.Status), f.Search, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l         entity.Lead
		interests pq.StringArray
		quiz      []byte
		status    string
		planID    sql.NullString
		planName  sql.NullString
		monthly   sql.NullInt64
		annual    sql.NullInt64
		planCur   sql.NullString
	)

	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Role, &l.Experience, &l.Goals,
		&interests, &l.LearningStyle, &l.Budget, &l.International,
		&l.PreferredContact, &l.PlanInterest, &l.HearAboutUs, &quiz, &l.AIScore,
		&status, &l.Source, &l.PaymentStatus, &l.PaymentID, &l.OrderID,
		&l.Amount, &l.Currency, &l.MembershipPlanID, &l.CreatedAt, &l.UpdatedAt,
		&planID, &planName, &monthly, &annual, &planCur,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	l.Status = entity.LeadStatus(status)
	l.Interests = []string(interests)
	if l.Interests == nil {
		l.Interests = []string{}
	}
	if len(quiz) > 0 && string(quiz) != "null" {
		if err := json.Unmarshal(quiz, &l.QuizAnswers); err != nil {
			return nil, fmt.Errorf("decode quiz answers of lead %s: %w", l.ID, err)
		}
	}
	if planID.Valid {
		l.MembershipPlan = &entity.MembershipPlan{
			ID:           planID.String,
			Name:         planName.String,
			PriceMonthly: monthly.Int64,
			PriceAnnual:  annual.Int64,
			Currency:     planCur.String,
		}
	}
	return &l, nil
}

func interestsOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// marshalJSON encodes v for a jsonb column; a nil map is stored as SQL NULL.
func marshalJSON[T any](v map[string]T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

// mapLeadReference turns a foreign key violation on lead_id into
// entity.ErrLeadNotFound.
func mapLeadReference(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return entity.ErrLeadNotFound
	}
	return err
}

// validID reports whether id can match a uuid primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}
