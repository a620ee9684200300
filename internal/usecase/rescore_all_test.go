package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/usecase"
)

type mockRescorer struct {
	mock.Mock
}

func (m *mockRescorer) Execute(ctx context.Context, leadID string) (*usecase.RecomputeScoreOutput, error) {
	args := m.Called(ctx, leadID)
	out, _ := args.Get(0).(*usecase.RecomputeScoreOutput)
	return out, args.Error(1)
}

// failingLeads breaks lead enumeration and delegates nothing else.
type failingLeads struct {
	usecase.LeadRepository
}

func (failingLeads) ListIDs(context.Context) ([]string, error) {
	return nil, errors.New("connection reset")
}

func TestRescoreAll_SkipsFailingLeads(t *testing.T) {
	f := newFixture()
	a := f.seedLead("A", "a@school.in", nil)
	b := f.seedLead("B", "b@school.in", nil)
	c := f.seedLead("C", "c@school.in", nil)

	rescorer := &mockRescorer{}
	rescorer.On("Execute", mock.Anything, a.ID).Return(&usecase.RecomputeScoreOutput{LeadID: a.ID}, nil)
	rescorer.On("Execute", mock.Anything, b.ID).Return(nil, errors.New("boom"))
	rescorer.On("Execute", mock.Anything, c.ID).Return(&usecase.RecomputeScoreOutput{LeadID: c.ID}, nil)

	result, err := usecase.NewRescoreAllUseCase(f.store.Leads(), rescorer, discardLogger()).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, usecase.RescoreResult{Total: 3, Updated: 2}, result)
	rescorer.AssertNumberOfCalls(t, "Execute", 3)
}

func TestRescoreAll_EndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	hot := f.seedLead("Hot", "hot@school.in", func(l *entity.Lead) {
		fullProfile(l)
		l.PaymentID = strPtr("pay_1")
		l.PaymentStatus = strPtr(entity.PaymentCompleted)
	})
	cold := f.seedLead("Cold", "cold@school.in", nil)

	result, err := usecase.NewRescoreAllUseCase(f.store.Leads(), f.recomputeUC(), discardLogger()).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.RescoreResult{Total: 2, Updated: 2}, result)

	stored, err := f.store.Leads().FindByID(ctx, hot.ID)
	require.NoError(t, err)
	assert.Equal(t, 88, stored.StoredScore())
	assert.Equal(t, entity.StatusQualified, stored.Status)

	stored, err = f.store.Leads().FindByID(ctx, cold.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, stored.Status)
}

func TestRescoreAll_EmptyStore(t *testing.T) {
	f := newFixture()
	rescorer := &mockRescorer{}

	result, err := usecase.NewRescoreAllUseCase(f.store.Leads(), rescorer, discardLogger()).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.RescoreResult{}, result)
	rescorer.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRescoreAll_ListFailureAborts(t *testing.T) {
	rescorer := &mockRescorer{}

	_, err := usecase.NewRescoreAllUseCase(failingLeads{}, rescorer, discardLogger()).Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, usecase.CodeDatabase, usecase.ErrorCode(err))
	rescorer.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRescoreAll_StopsOnCancellation(t *testing.T) {
	f := newFixture()
	f.seedLead("A", "a@school.in", nil)
	f.seedLead("B", "b@school.in", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rescorer := &mockRescorer{}
	result, err := usecase.NewRescoreAllUseCase(f.store.Leads(), rescorer, discardLogger()).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Updated)
}
