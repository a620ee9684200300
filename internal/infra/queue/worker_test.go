package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/mail"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) NotifyLeadSaved(ctx context.Context, lead entity.LeadSnapshot) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockDeliverer) NotifyWelcome(ctx context.Context, leadID, email, name string) error {
	return m.Called(ctx, leadID, email, name).Error(0)
}

func (m *MockDeliverer) NotifyPaymentConfirmed(ctx context.Context, lead entity.LeadSnapshot) error {
	return m.Called(ctx, lead).Error(0)
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

type capturePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *capturePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func newTestWorker(d Deliverer) *Worker {
	return &Worker{Deliverer: d, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestProducer_PublishesPersistentMessage(t *testing.T) {
	pub := &capturePublisher{}
	producer := NewProducer(pub)

	err := producer.NotifyLeadSaved(context.Background(), entity.LeadSnapshot{LeadID: "lead-1", Email: "asha@school.in", AIScore: 57})
	require.NoError(t, err)

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var msg NotificationMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &msg))
	assert.Equal(t, mail.KindAdminNotification, msg.Kind)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, 57, msg.Snapshot.AIScore)
}

func TestProducer_PublishError(t *testing.T) {
	producer := NewProducer(&capturePublisher{err: errors.New("channel closed")})

	err := producer.NotifyWelcome(context.Background(), "lead-1", "asha@school.in", "Asha")
	assert.ErrorContains(t, err, "channel closed")
}

func TestWorker_HandleDeliversAndAcks(t *testing.T) {
	d := new(MockDeliverer)
	d.On("NotifyWelcome", mock.Anything, "lead-1", "asha@school.in", "Asha").Return(nil)

	var results []string
	w := newTestWorker(d)
	w.OnResult = func(kind string, err error) {
		results = append(results, kind)
		assert.NoError(t, err)
	}

	body, _ := json.Marshal(NotificationMessage{Kind: mail.KindWelcome, LeadID: "lead-1", Email: "asha@school.in", Name: "Asha"})
	ack := &fakeAck{}
	w.Handle(context.Background(), body, ack)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, []string{mail.KindWelcome}, results)
	d.AssertExpectations(t)
}

func TestWorker_HandleFailureDeadLetters(t *testing.T) {
	d := new(MockDeliverer)
	d.On("NotifyPaymentConfirmed", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	body, _ := json.Marshal(NotificationMessage{
		Kind:     mail.KindPaymentConfirmation,
		LeadID:   "lead-1",
		Snapshot: &entity.LeadSnapshot{LeadID: "lead-1"},
	})
	ack := &fakeAck{}
	newTestWorker(d).Handle(context.Background(), body, ack)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestWorker_HandleMalformed(t *testing.T) {
	d := new(MockDeliverer)
	w := newTestWorker(d)

	for _, body := range []string{`{not json`, `{"kind":"sms"}`, `{"kind":"admin-notification"}`} {
		ack := &fakeAck{}
		w.Handle(context.Background(), []byte(body), ack)
		assert.True(t, ack.nacked, body)
		assert.False(t, ack.requeued, body)
	}
	d.AssertNotCalled(t, "NotifyLeadSaved", mock.Anything, mock.Anything)
}
