package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blogilista/pkg/helpers"
	"github.com/oksasatya/blogilista/pkg/mailer"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.EmailJob
	err  error
}

func (f *fakeSender) Send(_ context.Context, job mailer.EmailJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, job)
	return nil
}

type fakeAck struct {
	mu     sync.Mutex
	acked  []uint64
	nacked map[uint64]bool // tag -> requeue
}

func (a *fakeAck) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked[tag] = requeue
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func newWorker(s mailer.Sender) *Worker {
	return &Worker{AppName: "blogilista", To: "ops@example.test", Sender: s, Logger: helpers.NewDiscardLogger()}
}

func event(t *testing.T, typ string, data map[string]any) []byte {
	t.Helper()
	b, err := helpers.EncodeEvent(typ, data, time.Now())
	require.NoError(t, err)
	return b
}

func TestHandle(t *testing.T) {
	s := &fakeSender{}
	w := newWorker(s)

	out := w.Handle(context.Background(), event(t, "blog_created", map[string]any{"username": "user1", "title": "blogi"}))
	assert.Equal(t, Ack, out)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "ops@example.test", s.sent[0].To)
	assert.Contains(t, s.sent[0].Subject, "blogi")

	assert.Equal(t, Drop, w.Handle(context.Background(), []byte("{not json")))
	assert.Equal(t, Drop, w.Handle(context.Background(), []byte(`{"data":{}}`)))
	assert.Equal(t, Ack, w.Handle(context.Background(), event(t, "blog_liked", nil)))
	assert.Len(t, s.sent, 1)

	s.err = errors.New("mailgun 503")
	assert.Equal(t, Requeue, w.Handle(context.Background(), event(t, "user_registered", map[string]any{"username": "u"})))
}

func TestConsume(t *testing.T) {
	ack := &fakeAck{nacked: map[uint64]bool{}}
	w := newWorker(&fakeSender{})

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: event(t, "user_registered", map[string]any{"username": "u"})}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("garbage")}
	close(deliveries)

	w.Consume(context.Background(), deliveries)

	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, map[uint64]bool{2: false}, ack.nacked)
}
