package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/textproto"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/edureach360/leads-api/internal/entity"
)

type fakeDialer struct {
	errs []error
	sent []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	var err error
	if len(d.errs) > 0 {
		err, d.errs = d.errs[0], d.errs[1:]
	}
	if err == nil {
		d.sent = append(d.sent, m...)
	}
	return err
}

type recordedInteractions struct {
	items []*entity.Interaction
}

func (r *recordedInteractions) Create(_ context.Context, in *entity.Interaction) error {
	r.items = append(r.items, in)
	return nil
}

func newTestSender(d *fakeDialer) *EmailSender {
	return &EmailSender{
		from:   "hello@edureach.in",
		dialer: d,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxSendRetries, retry.NewConstant(time.Millisecond))
		},
	}
}

func TestEmailSender_RetriesTemporaryFailures(t *testing.T) {
	d := &fakeDialer{errs: []error{
		&textproto.Error{Code: 421, Msg: "try again"},
		&textproto.Error{Code: 451, Msg: "busy"},
	}}
	sender := newTestSender(d)

	err := sender.SendWelcome(context.Background(), "asha@school.in", "Asha")

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"asha@school.in"}, d.sent[0].GetHeader("To"))
}

func TestEmailSender_GivesUpAfterMaxRetries(t *testing.T) {
	temp := &textproto.Error{Code: 450, Msg: "mailbox busy"}
	d := &fakeDialer{errs: []error{temp, temp, temp, temp, temp}}

	err := newTestSender(d).SendWelcome(context.Background(), "asha@school.in", "Asha")

	require.Error(t, err)
	assert.Empty(t, d.sent)
	assert.Len(t, d.errs, 1, "one initial attempt plus three retries")
}

func TestEmailSender_PermanentFailureIsNotRetried(t *testing.T) {
	d := &fakeDialer{errs: []error{&textproto.Error{Code: 550, Msg: "no such user"}, nil}}

	err := newTestSender(d).SendWelcome(context.Background(), "ghost@school.in", "Ghost")

	require.Error(t, err)
	assert.Len(t, d.errs, 1)
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, isTemporary(&textproto.Error{Code: 452}))
	assert.False(t, isTemporary(&textproto.Error{Code: 554}))
	assert.False(t, isTemporary(errors.New("boom")))
}

func TestNotifier_RecordsEmailInteraction(t *testing.T) {
	d := &fakeDialer{}
	rec := &recordedInteractions{}
	n := NewNotifier(newTestSender(d), "admin@edureach.in", rec, slog.New(slog.NewTextHandler(io.Discard, nil)))

	snapshot := entity.LeadSnapshot{LeadID: "lead-1", Name: "Asha", Email: "asha@school.in", AIScore: 42, Currency: "INR", Amount: 49900}
	require.NoError(t, n.NotifyLeadSaved(context.Background(), snapshot))
	require.NoError(t, n.NotifyPaymentConfirmed(context.Background(), snapshot))

	require.Len(t, d.sent, 2)
	assert.Equal(t, []string{"admin@edureach.in"}, d.sent[0].GetHeader("To"))
	require.Len(t, rec.items, 2)
	assert.Equal(t, entity.InteractionEmailSent, rec.items[0].Type)
	assert.Equal(t, KindPaymentConfirmation, *rec.items[1].Content)
}

func TestSnapshotData_AmountDisplay(t *testing.T) {
	assert.Equal(t, "INR 499.00", snapshotData{entity.LeadSnapshot{Amount: 49900, Currency: "INR"}}.AmountDisplay())
	assert.Equal(t, "-", snapshotData{}.AmountDisplay())
}
