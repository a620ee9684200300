package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/usecase"
)

func interactionsAt(times ...time.Time) []*entity.Interaction {
	out := make([]*entity.Interaction, 0, len(times))
	for _, at := range times {
		in := entity.NewInteraction("lead", entity.InteractionEmailSent, "", nil)
		in.CreatedAt = at
		out = append(out, in)
	}
	return out
}

func conversationWith(messages int) *entity.Conversation {
	return entity.NewConversation("lead", make([]entity.Message, messages))
}

func TestScoreLead_EmptyLeadScoresZero(t *testing.T) {
	lead := entity.NewLead("Asha", "asha@school.in")
	assert.Equal(t, 0, usecase.ScoreLead(lead, nil, nil, fixedNow))
}

func TestScoreLead_ProfileWeights(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*entity.Lead)
		want   int
	}{
		{"phone", func(l *entity.Lead) { l.Phone = strPtr("+919876543210") }, 5},
		{"role", func(l *entity.Lead) { l.Role = strPtr("teacher") }, 3},
		{"experience", func(l *entity.Lead) { l.Experience = strPtr("2 years") }, 3},
		{"goals", func(l *entity.Lead) { l.Goals = strPtr("grow") }, 5},
		{"interests", func(l *entity.Lead) { l.Interests = []string{"stem"} }, 2},
		{"learning style", func(l *entity.Lead) { l.LearningStyle = strPtr("visual") }, 2},
		{"budget", func(l *entity.Lead) { l.Budget = strPtr("high") }, 4},
		{"international", func(l *entity.Lead) { l.International = strPtr("yes") }, 1},
		{"plan interest", func(l *entity.Lead) { l.PlanInterest = strPtr("premium") }, 8},
		{"empty quiz answers still count", func(l *entity.Lead) { l.QuizAnswers = map[string]any{} }, 10},
		{"payment id", func(l *entity.Lead) { l.PaymentID = strPtr("pay_1") }, 20},
		{"completed payment", func(l *entity.Lead) { l.PaymentStatus = strPtr(entity.PaymentCompleted) }, 25},
		{"pending payment", func(l *entity.Lead) { l.PaymentStatus = strPtr(entity.PaymentPending) }, 0},
		{"blank text is absent", func(l *entity.Lead) { l.Role = strPtr("   ") }, 0},
		{"full profile", fullProfile, 43},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := entity.NewLead("Asha", "asha@school.in")
			tc.mutate(lead)
			assert.Equal(t, tc.want, usecase.ScoreLead(lead, nil, nil, fixedNow))
		})
	}
}

func TestScoreLead_Engagement(t *testing.T) {
	lead := entity.NewLead("Asha", "asha@school.in")

	t.Run("single recent interaction", func(t *testing.T) {
		got := usecase.ScoreLead(lead, interactionsAt(fixedNow.Add(-time.Hour)), nil, fixedNow)
		assert.Equal(t, 10, got)
	})

	t.Run("several stale interactions", func(t *testing.T) {
		old := fixedNow.Add(-8 * 24 * time.Hour)
		got := usecase.ScoreLead(lead, interactionsAt(old, old.Add(-time.Hour)), nil, fixedNow)
		assert.Equal(t, 15, got)
	})

	t.Run("recency uses the newest interaction regardless of order", func(t *testing.T) {
		old := fixedNow.Add(-30 * 24 * time.Hour)
		got := usecase.ScoreLead(lead, interactionsAt(old, fixedNow.Add(-24*time.Hour)), nil, fixedNow)
		assert.Equal(t, 25, got)
	})

	t.Run("one conversation with messages", func(t *testing.T) {
		got := usecase.ScoreLead(lead, nil, []*entity.Conversation{conversationWith(5)}, fixedNow)
		assert.Equal(t, 12+2, got)
	})

	t.Run("message bonus caps at 10", func(t *testing.T) {
		got := usecase.ScoreLead(lead, nil, []*entity.Conversation{conversationWith(20), conversationWith(30)}, fixedNow)
		assert.Equal(t, 12+8+10, got)
	})
}

func TestScoreLead_ClampsAt100(t *testing.T) {
	lead := entity.NewLead("Asha", "asha@school.in")
	fullProfile(lead)
	lead.PaymentID = strPtr("pay_1")
	lead.PaymentStatus = strPtr(entity.PaymentCompleted)

	interactions := interactionsAt(fixedNow.Add(-time.Hour), fixedNow.Add(-2*time.Hour))
	conversations := []*entity.Conversation{conversationWith(0), conversationWith(0)}

	// 43 profile + 25 interactions + 20 conversations + 45 payment = 133 raw.
	assert.Equal(t, 100, usecase.ScoreLead(lead, interactions, conversations, fixedNow))
}

func TestScoreLead_IdempotentAndMonotonic(t *testing.T) {
	lead := entity.NewLead("Asha", "asha@school.in")
	lead.Role = strPtr("teacher")
	interactions := interactionsAt(fixedNow.Add(-time.Hour))

	first := usecase.ScoreLead(lead, interactions, nil, fixedNow)
	assert.Equal(t, first, usecase.ScoreLead(lead, interactions, nil, fixedNow))

	steps := []func(*entity.Lead){
		func(l *entity.Lead) { l.Phone = strPtr("+919876543210") },
		func(l *entity.Lead) { l.Goals = strPtr("grow") },
		func(l *entity.Lead) { l.PlanInterest = strPtr("premium") },
		func(l *entity.Lead) { l.QuizAnswers = map[string]any{"q": 1} },
		func(l *entity.Lead) { l.PaymentID = strPtr("pay_1") },
	}
	prev := first
	for _, step := range steps {
		step(lead)
		next := usecase.ScoreLead(lead, interactions, nil, fixedNow)
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestScoreCalculator_LoadsMissingHistory(t *testing.T) {
	f := newFixture()
	lead := f.seedLead("Asha", "asha@school.in", nil)
	f.addInteraction(lead.ID, fixedNow.Add(-time.Hour))
	f.addInteraction(lead.ID, fixedNow.Add(-2*time.Hour))
	f.addConversation(lead.ID, 4)

	score, err := f.calculator.Calculate(context.Background(), usecase.ScoringInput{Lead: lead})
	require.NoError(t, err)
	assert.Equal(t, 15+10+12+2, score)

	// Empty, non-nil collections mean "already loaded": nothing is fetched.
	score, err = f.calculator.Calculate(context.Background(), usecase.ScoringInput{
		Lead:          lead,
		Interactions:  []*entity.Interaction{},
		Conversations: []*entity.Conversation{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestScoreCalculator_NilLead(t *testing.T) {
	_, err := newFixture().calculator.Calculate(context.Background(), usecase.ScoringInput{})
	assert.Error(t, err)
}
