package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
)

const (
	maxScore              = 100
	recentInteractionDays = 7
	maxMessageBonus       = 10
)

// Points per signal. Each applies at most once. The weights add up to more
// than maxScore on purpose: a fully engaged, paying lead saturates at 100.
var scoreWeights = struct {
	Phone, Role, Experience, Goals, Interests, LearningStyle, Budget, International int
	PlanInterest, QuizAnswers                                                       int
	MultipleInteractions, RecentInteraction                                         int
	Conversation, MultipleConversations                                             int
	PaymentInfo, CompletedPayment                                                   int
}{
	Phone:                 5,
	Role:                  3,
	Experience:            3,
	Goals:                 5,
	Interests:             2,
	LearningStyle:         2,
	Budget:                4,
	International:         1,
	PlanInterest:          8,
	QuizAnswers:           10,
	MultipleInteractions:  15,
	RecentInteraction:     10,
	Conversation:          12,
	MultipleConversations: 8,
	PaymentInfo:           20,
	CompletedPayment:      25,
}

// ScoringInput is a lead plus its engagement history. A nil slice means the
// collection was not loaded; an empty slice means it was loaded and is empty.
type ScoringInput struct {
	Lead          *entity.Lead
	Interactions  []*entity.Interaction
	Conversations []*entity.Conversation
}

type ScoreCalculator struct {
	Interactions  InteractionRepository
	Conversations ConversationRepository
	Now           func() time.Time
}

func NewScoreCalculator(interactions InteractionRepository, conversations ConversationRepository) *ScoreCalculator {
	return &ScoreCalculator{
		Interactions:  interactions,
		Conversations: conversations,
		Now:           time.Now,
	}
}

// Calculate fills in any collection that was not supplied and scores the lead.
func (c *ScoreCalculator) Calculate(ctx context.Context, in ScoringInput) (int, error) {
	if in.Lead == nil {
		return 0, fmt.Errorf("score calculator: nil lead")
	}

	interactions := in.Interactions
	if interactions == nil {
		found, err := c.Interactions.FindRecentByLeadID(ctx, in.Lead.ID, RecentInteractionsLimit)
		if err != nil {
			return 0, fmt.Errorf("load interactions for lead %s: %w", in.Lead.ID, err)
		}
		interactions = found
	}

	conversations := in.Conversations
	if conversations == nil {
		found, err := c.Conversations.FindByLeadID(ctx, in.Lead.ID)
		if err != nil {
			return 0, fmt.Errorf("load conversations for lead %s: %w", in.Lead.ID, err)
		}
		conversations = found
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return ScoreLead(in.Lead, interactions, conversations, now()), nil
}

// ScoreLead is the pure weighted sum over a lead snapshot, clamped to [0, 100].
func ScoreLead(lead *entity.Lead, interactions []*entity.Interaction, conversations []*entity.Conversation, now time.Time) int {
	w := scoreWeights
	score := 0

	award := func(ok bool, points int) {
		if ok {
			score += points
		}
	}

	award(entity.Present(lead.Phone), w.Phone)
	award(entity.Present(lead.Role), w.Role)
	award(entity.Present(lead.Experience), w.Experience)
	award(entity.Present(lead.Goals), w.Goals)
	award(len(lead.Interests) > 0, w.Interests)
	award(entity.Present(lead.LearningStyle), w.LearningStyle)
	award(entity.Present(lead.Budget), w.Budget)
	award(entity.Present(lead.International), w.International)
	award(entity.Present(lead.PlanInterest), w.PlanInterest)
	award(lead.QuizAnswers != nil, w.QuizAnswers)

	award(len(interactions) > 1, w.MultipleInteractions)
	if latest, ok := latestInteraction(interactions); ok {
		award(now.Sub(latest) < recentInteractionDays*24*time.Hour, w.RecentInteraction)
	}

	if len(conversations) > 0 {
		score += w.Conversation
		award(len(conversations) > 1, w.MultipleConversations)

		totalMessages := 0
		for _, conv := range conversations {
			if conv != nil {
				totalMessages += len(conv.Messages)
			}
		}
		score += min(totalMessages/2, maxMessageBonus)
	}

	award(entity.Present(lead.PaymentID), w.PaymentInfo)
	award(lead.HasCompletedPayment(), w.CompletedPayment)

	return max(0, min(score, maxScore))
}

func latestInteraction(interactions []*entity.Interaction) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, in := range interactions {
		if in == nil {
			continue
		}
		if !found || in.CreatedAt.After(latest) {
			latest = in.CreatedAt
			found = true
		}
	}
	return latest, found
}

func scoreDelta(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
