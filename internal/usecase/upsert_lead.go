package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
)

// ScoreHysteresis is the minimum score change persisted by an upsert.
const ScoreHysteresis = 5

const (
	TaskAdminNotification = "admin-notification"
	TaskWelcomeEmail      = "welcome"
	TaskPaymentConfirmed  = "payment-confirmation"
	TaskCRMSync           = "crm-sync"
)

type UpsertLeadUseCase struct {
	Leads      LeadRepository
	Plans      PlanRepository
	Calculator *ScoreCalculator
	Dispatcher Dispatcher
	Notifier   Notifier
	Logger     *slog.Logger
}

func NewUpsertLeadUseCase(
	leads LeadRepository,
	plans PlanRepository,
	calculator *ScoreCalculator,
	dispatcher Dispatcher,
	notifier Notifier,
	logger *slog.Logger,
) *UpsertLeadUseCase {
	return &UpsertLeadUseCase{
		Leads:      leads,
		Plans:      plans,
		Calculator: calculator,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Logger:     logger,
	}
}

func (uc *UpsertLeadUseCase) Execute(ctx context.Context, input UpsertLeadInput) (*UpsertLeadOutput, error) {
	if errs := ValidateUpsertLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if input.Phone.Set && !input.Phone.Null {
		input.Phone.Value = NormalizePhone(input.Phone.Value)
	}

	plan, err := uc.resolvePlan(ctx, input.MembershipPlanID)
	if err != nil {
		return nil, err
	}

	email := entity.NormalizeEmail(input.Email)
	existing, err := uc.Leads.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
		return nil, databaseError("failed to look up lead by email", err)
	}

	var (
		lead          *entity.Lead
		created       bool
		interactions  []*entity.Interaction
		conversations []*entity.Conversation
	)

	if existing != nil {
		lead = existing
		applyUpsertInput(lead, input)
		lead.Name = strings.TrimSpace(input.Name)
		if lead.Status == entity.StatusLost {
			lead.Status = entity.StatusNew
		}
		lead.UpdatedAt = time.Now()

		if err := uc.Leads.Update(ctx, lead); err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, leadNotFound(lead.ID)
			}
			return nil, databaseError("failed to update lead", err)
		}
		// Left nil so the calculator loads the stored history.
	} else {
		lead = entity.NewLead(input.Name, email)
		applyUpsertInput(lead, input)

		if err := uc.Leads.Create(ctx, lead); err != nil {
			if errors.Is(err, entity.ErrEmailAlreadyExists) {
				return nil, &DomainError{
					Code:    CodeLeadConflict,
					Message: entity.ErrEmailAlreadyExists.Error(),
					Err:     err,
				}
			}
			return nil, databaseError("failed to create lead", err)
		}
		created = true
		interactions = []*entity.Interaction{}
		conversations = []*entity.Conversation{}
	}

	if plan != nil {
		lead.MembershipPlan = plan
	}

	uc.refreshScore(ctx, lead, interactions, conversations)

	snapshot := lead.Snapshot()
	uc.Dispatcher.Dispatch(ctx, NotificationTask{
		Name:   TaskAdminNotification,
		LeadID: lead.ID,
		Run: func(ctx context.Context) error {
			return uc.Notifier.NotifyLeadSaved(ctx, snapshot)
		},
	})
	if created {
		leadID, to, name := lead.ID, lead.Email, lead.Name
		uc.Dispatcher.Dispatch(ctx, NotificationTask{
			Name:   TaskWelcomeEmail,
			LeadID: leadID,
			Run: func(ctx context.Context) error {
				return uc.Notifier.NotifyWelcome(ctx, leadID, to, name)
			},
		})
	}

	return &UpsertLeadOutput{Lead: lead, Created: created}, nil
}

// refreshScore recomputes the score and persists it when it moved by at least
// ScoreHysteresis points. Failures are logged; the upsert itself has succeeded.
func (uc *UpsertLeadUseCase) refreshScore(ctx context.Context, lead *entity.Lead, interactions []*entity.Interaction, conversations []*entity.Conversation) {
	score, err := uc.Calculator.Calculate(ctx, ScoringInput{
		Lead:          lead,
		Interactions:  interactions,
		Conversations: conversations,
	})
	if err != nil {
		uc.Logger.Error("lead score calculation failed",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if scoreDelta(lead.StoredScore(), score) < ScoreHysteresis {
		return
	}

	if err := uc.Leads.UpdateScore(ctx, lead.ID, score, lead.Status); err != nil {
		uc.Logger.Error("lead score update failed",
			slog.String("lead_id", lead.ID),
			slog.Int("score", score),
			slog.String("error", err.Error()),
		)
		return
	}
	lead.AIScore = &score
}

func (uc *UpsertLeadUseCase) resolvePlan(ctx context.Context, id Optional[string]) (*entity.MembershipPlan, error) {
	if !id.Set || id.Null || strings.TrimSpace(id.Value) == "" || uc.Plans == nil {
		return nil, nil
	}

	plan, err := uc.Plans.FindByID(ctx, strings.TrimSpace(id.Value))
	if errors.Is(err, entity.ErrPlanNotFound) {
		return nil, validationFailed([]ValidationError{{"membership_plan_id", "refers to an unknown plan"}})
	}
	if err != nil {
		return nil, databaseError("failed to load membership plan", err)
	}
	return plan, nil
}

// applyUpsertInput merges the submitted form over the lead. Absent fields are
// kept, null or empty values clear the field.
func applyUpsertInput(lead *entity.Lead, in UpsertLeadInput) {
	mergeString(&lead.Phone, in.Phone)
	mergeString(&lead.Role, in.Role)
	mergeString(&lead.Experience, in.Experience)
	mergeString(&lead.Goals, in.Goals)
	mergeString(&lead.LearningStyle, in.LearningStyle)
	mergeString(&lead.Budget, in.Budget)
	mergeString(&lead.International, in.International)
	mergeString(&lead.HearAboutUs, in.HearAboutUs)
	mergeString(&lead.PlanInterest, in.PlanInterest)
	mergeString(&lead.PaymentStatus, in.PaymentStatus)
	mergeString(&lead.PaymentID, in.PaymentID)
	mergeString(&lead.OrderID, in.OrderID)
	mergeString(&lead.MembershipPlanID, in.MembershipPlanID)

	if in.Interests.Set {
		lead.Interests = cleanInterests(in.Interests.Value)
		if in.Interests.Null {
			lead.Interests = []string{}
		}
	}

	if in.QuizAnswers.Set {
		lead.QuizAnswers = in.QuizAnswers.Value
		if in.QuizAnswers.Null {
			lead.QuizAnswers = nil
		}
	}

	if in.Amount.Set {
		if in.Amount.Null || in.Amount.Value == 0 {
			lead.Amount = nil
		} else {
			v := in.Amount.Value
			lead.Amount = &v
		}
	}

	if in.PreferredContact.Set {
		lead.PreferredContact = entity.ContactEmail
		if v := strings.ToLower(strings.TrimSpace(in.PreferredContact.Value)); !in.PreferredContact.Null && v != "" {
			lead.PreferredContact = v
		}
	}

	if in.Currency.Set {
		lead.Currency = entity.DefaultCurrency
		if v := strings.ToUpper(strings.TrimSpace(in.Currency.Value)); !in.Currency.Null && v != "" {
			lead.Currency = v
		}
	}

	if lead.MembershipPlanID == nil {
		lead.MembershipPlan = nil
	}
}

func mergeString(dst **string, o Optional[string]) {
	if !o.Set {
		return
	}
	v := strings.TrimSpace(o.Value)
	if o.Null || v == "" {
		*dst = nil
		return
	}
	*dst = &v
}

func cleanInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
