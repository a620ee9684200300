package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/usecase"
)

func TestListLeads_PaginatesAndFilters(t *testing.T) {
	f := newFixture()
	for i := range 7 {
		status := entity.StatusNew
		if i%2 == 0 {
			status = entity.StatusContacted
		}
		f.seedLead(fmt.Sprintf("Teacher %d", i), fmt.Sprintf("t%d@school.in", i), func(l *entity.Lead) { l.Status = status })
	}
	uc := usecase.NewListLeadsUseCase(f.store.Leads())

	out, err := uc.Execute(context.Background(), usecase.ListLeadsInput{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, out.Data, 3)
	assert.Equal(t, usecase.ListLeadsMeta{Total: 7, Page: 2, TotalPages: 3, Limit: 3}, out.Meta)

	out, err = uc.Execute(context.Background(), usecase.ListLeadsInput{Status: "Contacted"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Meta.Total)
	assert.Equal(t, 50, out.Meta.Limit)
	for _, l := range out.Data {
		assert.Equal(t, entity.StatusContacted, l.Status)
	}

	out, err = uc.Execute(context.Background(), usecase.ListLeadsInput{Search: "t3@"})
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "Teacher 3", out.Data[0].Name)
}

func TestListLeads_Bounds(t *testing.T) {
	f := newFixture()
	uc := usecase.NewListLeadsUseCase(f.store.Leads())

	out, err := uc.Execute(context.Background(), usecase.ListLeadsInput{Page: -4, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Meta.Page)
	assert.Equal(t, 100, out.Meta.Limit)
	assert.NotNil(t, out.Data)
	assert.Equal(t, 0, out.Meta.TotalPages)
}

func TestListLeads_InvalidStatus(t *testing.T) {
	_, err := usecase.NewListLeadsUseCase(newFixture().store.Leads()).Execute(context.Background(), usecase.ListLeadsInput{Status: "hot"})
	assert.Equal(t, usecase.CodeValidation, usecase.ErrorCode(err))
}
