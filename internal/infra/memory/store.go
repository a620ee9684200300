// Package memory is an in-process implementation of the lead, engagement and
// plan stores. It backs the use case tests and local runs without Postgres.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edureach360/leads-api/internal/entity"
)

type Store struct {
	mu            sync.RWMutex
	leads         map[string]*entity.Lead
	byEmail       map[string]string
	interactions  map[string][]*entity.Interaction
	conversations map[string]*entity.Conversation
	plans         map[string]*entity.MembershipPlan
}

func NewStore(plans ...*entity.MembershipPlan) *Store {
	s := &Store{
		leads:         map[string]*entity.Lead{},
		byEmail:       map[string]string{},
		interactions:  map[string][]*entity.Interaction{},
		conversations: map[string]*entity.Conversation{},
		plans:         map[string]*entity.MembershipPlan{},
	}
	for _, p := range plans {
		cp := *p
		s.plans[p.ID] = &cp
	}
	return s
}

// Leads, Interactions, Conversations and Plans expose the store through the
// repository method sets, which overlap on Create.

func (s *Store) Leads() *LeadStore                 { return &LeadStore{s} }
func (s *Store) Interactions() *InteractionStore   { return &InteractionStore{s} }
func (s *Store) Conversations() *ConversationStore { return &ConversationStore{s} }
func (s *Store) Plans() *PlanStore                 { return &PlanStore{s} }

type LeadStore struct{ s *Store }

func (r *LeadStore) FindByEmail(_ context.Context, email string) (*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return r.s.leadCopy(id), nil
}

func (r *LeadStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.leads[id]; !ok {
		return nil, entity.ErrLeadNotFound
	}
	return r.s.leadCopy(id), nil
}

func (r *LeadStore) Create(_ context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.byEmail[lead.Email]; dup {
		return entity.ErrEmailAlreadyExists
	}
	r.s.leads[lead.ID] = cloneLead(lead)
	r.s.byEmail[lead.Email] = lead.ID
	return nil
}

func (r *LeadStore) Update(_ context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.leads[lead.ID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if owner, taken := r.s.byEmail[lead.Email]; taken && owner != lead.ID {
		return entity.ErrEmailAlreadyExists
	}

	next := cloneLead(lead)
	next.AIScore = stored.AIScore
	next.CreatedAt = stored.CreatedAt
	next.Status = stored.Status
	if next.Status == entity.StatusLost {
		next.Status = entity.StatusNew
	}
	delete(r.s.byEmail, stored.Email)
	r.s.leads[lead.ID] = next
	r.s.byEmail[next.Email] = lead.ID
	return nil
}

func (r *LeadStore) UpdateScore(_ context.Context, id string, score int, status entity.LeadStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lead, ok := r.s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	lead.AIScore = &score
	lead.Status = status
	lead.UpdatedAt = time.Now()
	return nil
}

func (r *LeadStore) UpdatePayment(_ context.Context, id string, p entity.PaymentUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lead, ok := r.s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	p.Apply(lead)
	lead.UpdatedAt = time.Now()
	return nil
}

func (r *LeadStore) ListIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	leads := r.s.sortedLeads()
	ids := make([]string, 0, len(leads))
	for i := len(leads) - 1; i >= 0; i-- {
		ids = append(ids, leads[i].ID)
	}
	return ids, nil
}

func (r *LeadStore) List(_ context.Context, f entity.LeadFilter) ([]*entity.Lead, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := []*entity.Lead{}
	for _, l := range r.s.sortedLeads() {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		matched = append(matched, l)
	}

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	page := make([]*entity.Lead, 0, end-start)
	for _, l := range matched[start:end] {
		page = append(page, r.s.leadCopy(l.ID))
	}
	return page, total, nil
}

type InteractionStore struct{ s *Store }

func (r *InteractionStore) Create(_ context.Context, in *entity.Interaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leads[in.LeadID]; !ok {
		return entity.ErrLeadNotFound
	}
	cp := *in
	r.s.interactions[in.LeadID] = append(r.s.interactions[in.LeadID], &cp)
	return nil
}

func (r *InteractionStore) FindRecentByLeadID(_ context.Context, leadID string, limit int) ([]*entity.Interaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := slices.Clone(r.s.interactions[leadID])
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]*entity.Interaction, 0, len(all))
	for _, in := range all {
		cp := *in
		out = append(out, &cp)
	}
	return out, nil
}

type ConversationStore struct{ s *Store }

func (r *ConversationStore) Create(_ context.Context, c *entity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leads[c.LeadID]; !ok {
		return entity.ErrLeadNotFound
	}
	r.s.conversations[c.ID] = cloneConversation(c)
	return nil
}

func (r *ConversationStore) AppendMessages(_ context.Context, id, leadID string, messages []entity.Message) (*entity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.conversations[id]
	if !ok || c.LeadID != leadID {
		return nil, entity.ErrConversationNotFound
	}
	c.Messages = append(c.Messages, messages...)
	c.UpdatedAt = time.Now()
	return cloneConversation(c), nil
}

func (r *ConversationStore) FindByLeadID(_ context.Context, leadID string) ([]*entity.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*entity.Conversation{}
	for _, c := range r.s.conversations {
		if c.LeadID == leadID {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *ConversationStore) FindLatestByLeadEmail(_ context.Context, email string) (*entity.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	leadID, ok := r.s.byEmail[email]
	if !ok {
		return nil, entity.ErrConversationNotFound
	}

	var latest *entity.Conversation
	for _, c := range r.s.conversations {
		if c.LeadID != leadID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, entity.ErrConversationNotFound
	}
	return cloneConversation(latest), nil
}

type PlanStore struct{ s *Store }

func (r *PlanStore) FindByID(_ context.Context, id string) (*entity.MembershipPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plans[id]
	if !ok {
		return nil, entity.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

// leadCopy must be called with the lock held.
func (s *Store) leadCopy(id string) *entity.Lead {
	l := cloneLead(s.leads[id])
	l.MembershipPlan = nil
	if l.MembershipPlanID != nil {
		if p, ok := s.plans[*l.MembershipPlanID]; ok {
			cp := *p
			l.MembershipPlan = &cp
		}
	}
	return l
}

// sortedLeads returns stored leads newest first; call with the lock held.
func (s *Store) sortedLeads() []*entity.Lead {
	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(l *entity.Lead, search string) bool {
	return strings.Contains(strings.ToLower(l.Name), search) ||
		strings.Contains(strings.ToLower(l.Email), search) ||
		strings.Contains(strings.ToLower(entity.StringValue(l.Role)), search) ||
		strings.Contains(entity.StringValue(l.Phone), search)
}

func cloneLead(l *entity.Lead) *entity.Lead {
	cp := *l
	cp.Interests = slices.Clone(l.Interests)
	if l.QuizAnswers != nil {
		cp.QuizAnswers = make(map[string]any, len(l.QuizAnswers))
		for k, v := range l.QuizAnswers {
			cp.QuizAnswers[k] = v
		}
	}
	cp.Phone = cloneString(l.Phone)
	cp.Role = cloneString(l.Role)
	cp.Experience = cloneString(l.Experience)
	cp.Goals = cloneString(l.Goals)
	cp.LearningStyle = cloneString(l.LearningStyle)
	cp.Budget = cloneString(l.Budget)
	cp.International = cloneString(l.International)
	cp.PlanInterest = cloneString(l.PlanInterest)
	cp.HearAboutUs = cloneString(l.HearAboutUs)
	cp.PaymentStatus = cloneString(l.PaymentStatus)
	cp.PaymentID = cloneString(l.PaymentID)
	cp.OrderID = cloneString(l.OrderID)
	cp.MembershipPlanID = cloneString(l.MembershipPlanID)
	if l.AIScore != nil {
		v := *l.AIScore
		cp.AIScore = &v
	}
	if l.Amount != nil {
		v := *l.Amount
		cp.Amount = &v
	}
	return &cp
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	cp := *c
	cp.Messages = slices.Clone(c.Messages)
	if cp.Messages == nil {
		cp.Messages = []entity.Message{}
	}
	return &cp
}
