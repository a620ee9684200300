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

func TestRecomputeScore_UpgradesStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead := f.seedLead("Asha", "asha@school.in", func(l *entity.Lead) {
		fullProfile(l)
		l.PaymentID = strPtr("pay_1")
	})
	f.addInteraction(lead.ID, fixedNow.Add(-time.Hour))

	out, err := f.recomputeUC().Execute(ctx, lead.ID)
	require.NoError(t, err)

	// 43 profile + 10 recent interaction + 20 payment info.
	assert.Equal(t, 73, out.Score)
	assert.Equal(t, entity.StatusNew, out.PreviousStatus)
	assert.Equal(t, entity.StatusContacted, out.Status)

	stored, err := f.store.Leads().FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 73, stored.StoredScore())
	assert.Equal(t, entity.StatusContacted, stored.Status)
}

func TestRecomputeScore_PersistsSmallChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead := f.seedLead("Asha", "asha@school.in", func(l *entity.Lead) { l.Role = strPtr("teacher") })

	out, err := f.recomputeUC().Execute(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Score)

	stored, err := f.store.Leads().FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.StoredScore())
}

func TestRecomputeScore_DoesNotDowngradeOrTouchTerminal(t *testing.T) {
	for _, status := range []entity.LeadStatus{entity.StatusQualified, entity.StatusConverted, entity.StatusLost} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			lead := f.seedLead("Asha", "asha@school.in", func(l *entity.Lead) { l.Status = status })

			out, err := f.recomputeUC().Execute(context.Background(), lead.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, out.Score)
			assert.Equal(t, status, out.Status)
		})
	}
}

func TestRecomputeScore_Idempotent(t *testing.T) {
	f := newFixture()
	lead := f.seedLead("Asha", "asha@school.in", fullProfile)
	f.addConversation(lead.ID, 6)
	uc := f.recomputeUC()

	first, err := uc.Execute(context.Background(), lead.ID)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), lead.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Status, second.Status)
}

func TestRecomputeScore_UnknownLead(t *testing.T) {
	_, err := newFixture().recomputeUC().Execute(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, usecase.CodeLeadNotFound, usecase.ErrorCode(err))
}
