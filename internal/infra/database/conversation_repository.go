package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edureach360/leads-api/internal/entity"
)

const conversationColumns = `c.id, c.lead_id, c.messages, c.created_at, c.updated_at`

type ConversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

func (r *ConversationRepository) Create(ctx context.Context, c *entity.Conversation) error {
	if !validID(c.LeadID) {
		return entity.ErrLeadNotFound
	}
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO conversations (id, lead_id, messages, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.LeadID, string(messages), c.CreatedAt, c.UpdatedAt,
	)
	return mapLeadReference(err)
}

// AppendMessages concatenates onto the stored jsonb array in a single statement.
// A conversation owned by another lead is reported as not found.
func (r *ConversationRepository) AppendMessages(ctx context.Context, id, leadID string, messages []entity.Message) (*entity.Conversation, error) {
	if !validID(id) || !validID(leadID) {
		return nil, entity.ErrConversationNotFound
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE conversations c
		SET messages = c.messages || $2::jsonb, updated_at = NOW()
		WHERE c.id = $1 AND c.lead_id = $3
		RETURNING `+conversationColumns, id, string(payload), leadID)
	return scanConversation(row)
}

func (r *ConversationRepository) FindByLeadID(ctx context.Context, leadID string) ([]*entity.Conversation, error) {
	if !validID(leadID) {
		return []*entity.Conversation{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		WHERE c.lead_id = $1
		ORDER BY c.updated_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConversationRepository) FindLatestByLeadEmail(ctx context.Context, email string) (*entity.Conversation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		JOIN leads l ON l.id = c.lead_id
		WHERE l.email = $1
		ORDER BY c.created_at DESC
		LIMIT 1`, email)
	return scanConversation(row)
}

func scanConversation(row rowScanner) (*entity.Conversation, error) {
	var (
		c        entity.Conversation
		messages []byte
	)
	err := row.Scan(&c.ID, &c.LeadID, &messages, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(messages, &c.Messages); err != nil {
		return nil, fmt.Errorf("decode messages of conversation %s: %w", c.ID, err)
	}
	if c.Messages == nil {
		c.Messages = []entity.Message{}
	}
	return &c, nil
}
