package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/edureach360/leads-api/internal/entity"
)

// The repositories below have no *sql.DB: a malformed id must be answered
// before any query is sent.

func TestLeadRepository_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &LeadRepository{}

	lead, err := repo.FindByID(ctx, "abc")
	assert.Nil(t, lead)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	assert.ErrorIs(t, repo.UpdateScore(ctx, "abc", 40, entity.StatusNew), entity.ErrLeadNotFound)
	assert.ErrorIs(t, repo.UpdatePayment(ctx, "not-a-uuid", entity.PaymentUpdate{Status: entity.PaymentCompleted}), entity.ErrLeadNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Lead{ID: "abc", Email: "a@example.com"}), entity.ErrLeadNotFound)
}

func TestEngagementRepositories_MalformedLeadID(t *testing.T) {
	ctx := context.Background()
	conversations := &ConversationRepository{}
	interactions := &InteractionRepository{}

	assert.ErrorIs(t, conversations.Create(ctx, &entity.Conversation{ID: uuid.NewString(), LeadID: "abc"}), entity.ErrLeadNotFound)
	assert.ErrorIs(t, interactions.Create(ctx, &entity.Interaction{ID: uuid.NewString(), LeadID: "abc"}), entity.ErrLeadNotFound)

	_, err := conversations.AppendMessages(ctx, uuid.NewString(), "abc", nil)
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
	_, err = conversations.AppendMessages(ctx, "abc", uuid.NewString(), nil)
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)

	convs, err := conversations.FindByLeadID(ctx, "abc")
	assert.NoError(t, err)
	assert.Empty(t, convs)

	recent, err := interactions.FindRecentByLeadID(ctx, "abc", 10)
	assert.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMapWriteError(t *testing.T) {
	dup := fmt.Errorf("insert lead: %w", &pgconn.PgError{Code: uniqueViolation})
	other := errors.New("connection reset")

	assert.NoError(t, mapWriteError(nil))
	assert.ErrorIs(t, mapWriteError(dup), entity.ErrEmailAlreadyExists)
	assert.Equal(t, other, mapWriteError(other))
}

func TestMapLeadReference(t *testing.T) {
	missing := fmt.Errorf("insert conversation: %w", &pgconn.PgError{Code: foreignKeyViolation})
	dup := &pgconn.PgError{Code: uniqueViolation}

	assert.NoError(t, mapLeadReference(nil))
	assert.ErrorIs(t, mapLeadReference(missing), entity.ErrLeadNotFound)
	assert.Equal(t, error(dup), mapLeadReference(dup))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID(""))
	assert.False(t, validID("abc"))
}
