package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/memory"
	"github.com/edureach360/leads-api/internal/usecase"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// recordingDispatcher keeps tasks instead of running them.
type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []usecase.NotificationTask
}

func (d *recordingDispatcher) Dispatch(_ context.Context, task usecase.NotificationTask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.tasks))
	for _, t := range d.tasks {
		out = append(out, t.Name)
	}
	return out
}

// runAll executes the recorded tasks synchronously.
func (d *recordingDispatcher) runAll(ctx context.Context) []error {
	d.mu.Lock()
	tasks := append([]usecase.NotificationTask(nil), d.tasks...)
	d.mu.Unlock()

	var errs []error
	for _, t := range tasks {
		errs = append(errs, t.Run(ctx))
	}
	return errs
}

type noopNotifier struct {
	mu       sync.Mutex
	saved    []entity.LeadSnapshot
	welcomed []string
	paid     []entity.LeadSnapshot
}

func (n *noopNotifier) NotifyLeadSaved(_ context.Context, s entity.LeadSnapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.saved = append(n.saved, s)
	return nil
}

func (n *noopNotifier) NotifyWelcome(_ context.Context, _, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, email)
	return nil
}

func (n *noopNotifier) NotifyPaymentConfirmed(_ context.Context, s entity.LeadSnapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, s)
	return nil
}

type fixture struct {
	store      *memory.Store
	calculator *usecase.ScoreCalculator
	dispatcher *recordingDispatcher
	notifier   *noopNotifier
}

func newFixture(plans ...*entity.MembershipPlan) *fixture {
	store := memory.NewStore(plans...)
	calc := usecase.NewScoreCalculator(store.Interactions(), store.Conversations())
	calc.Now = func() time.Time { return fixedNow }
	return &fixture{
		store:      store,
		calculator: calc,
		dispatcher: &recordingDispatcher{},
		notifier:   &noopNotifier{},
	}
}

func (f *fixture) upsertUC() *usecase.UpsertLeadUseCase {
	return usecase.NewUpsertLeadUseCase(f.store.Leads(), f.store.Plans(), f.calculator, f.dispatcher, f.notifier, discardLogger())
}

func (f *fixture) recomputeUC() *usecase.RecomputeScoreUseCase {
	return usecase.NewRecomputeScoreUseCase(f.store.Leads(), f.store.Interactions(), f.store.Conversations(), f.calculator, discardLogger())
}

// fullProfile fills every profile and marketing field: 43 points.
func fullProfile(l *entity.Lead) {
	l.Phone = strPtr("+919876543210")
	l.Role = strPtr("Primary teacher")
	l.Experience = strPtr("5-10 years")
	l.Goals = strPtr("Become a coordinator")
	l.Interests = []string{"edtech"}
	l.LearningStyle = strPtr("visual")
	l.Budget = strPtr("5000-10000")
	l.International = strPtr("yes")
	l.PlanInterest = strPtr("premium")
	l.QuizAnswers = map[string]any{"q1": "a"}
}

func (f *fixture) seedLead(name, email string, mutate func(*entity.Lead)) *entity.Lead {
	l := entity.NewLead(name, email)
	if mutate != nil {
		mutate(l)
	}
	if err := f.store.Leads().Create(context.Background(), l); err != nil {
		panic(err)
	}
	return l
}

func (f *fixture) addInteraction(leadID string, at time.Time) {
	in := entity.NewInteraction(leadID, entity.InteractionEmailSent, "", nil)
	in.CreatedAt = at
	if err := f.store.Interactions().Create(context.Background(), in); err != nil {
		panic(err)
	}
}

func (f *fixture) addConversation(leadID string, messages int) {
	msgs := make([]entity.Message, 0, messages)
	for i := range messages {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		msgs = append(msgs, entity.Message{Role: role, Content: "msg", Timestamp: fixedNow})
	}
	if err := f.store.Conversations().Create(context.Background(), entity.NewConversation(leadID, msgs)); err != nil {
		panic(err)
	}
}
