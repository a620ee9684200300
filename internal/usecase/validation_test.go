package usecase_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edureach360/leads-api/internal/usecase"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"98765 43210":     "+919876543210",
		"+91 98765-43210": "+919876543210",
		"+1 650 253 0000": "+16502530000",
		"  not a phone  ": "not a phone",
		"":                "",
		"12":              "12",
	}
	for in, want := range cases {
		assert.Equal(t, want, usecase.NormalizePhone(in), "input %q", in)
	}
}

func TestValidateUpsertLeadInput_ReportsEveryField(t *testing.T) {
	errs := usecase.ValidateUpsertLeadInput(usecase.UpsertLeadInput{
		Email:            "nope",
		PreferredContact: usecase.Some("fax"),
	})

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email", "preferred_contact"}, fields)
}

func TestValidateUpsertLeadInput_AcceptsMinimalForm(t *testing.T) {
	assert.Empty(t, usecase.ValidateUpsertLeadInput(usecase.UpsertLeadInput{Name: "Asha", Email: "asha@school.in"}))
}

func TestUpsertLeadInput_DecodesAbsentAndNull(t *testing.T) {
	var in usecase.UpsertLeadInput
	body := `{"name":"Asha","email":"asha@school.in","phone":null,"role":"teacher","amount":1500}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	assert.True(t, in.Phone.Set)
	assert.True(t, in.Phone.Null)
	assert.Equal(t, usecase.Some("teacher"), in.Role)
	assert.Equal(t, usecase.Some(int64(1500)), in.Amount)
	assert.False(t, in.Goals.Set)
	assert.False(t, in.QuizAnswers.Set)
}
