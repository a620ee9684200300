package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrConversationNotFound = errors.New("conversation not found")

const (
	InteractionEmailSent        = "email_sent"
	InteractionPaymentCompleted = "payment_completed"
	InteractionOrderCreated     = "order_created"
)

// Interaction is an append-only event in a lead's history.
type Interaction struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead_id"`
	Type      string         `json:"type"`
	Content   *string        `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewInteraction(leadID, kind string, content string, metadata map[string]any) *Interaction {
	in := &Interaction{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Type:      kind,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if content != "" {
		in.Content = &content
	}
	return in
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a chat transcript between a lead and the assistant.
type Conversation struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(leadID string, messages []Message) *Conversation {
	now := time.Now()
	if messages == nil {
		messages = []Message{}
	}
	return &Conversation{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
