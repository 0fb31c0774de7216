package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retry struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeRepo struct {
	pending  []outbox.OutboxMessage
	fetchErr error
	asOf     time.Time
	limit    int
	deleted  []int64
	retries  []retry
}

func (r *fakeRepo) Insert(context.Context, outbox.OutboxMessage) (int64, error) { return 0, nil }

func (r *fakeRepo) GetPendingMessages(_ context.Context, now time.Time, limit int) ([]outbox.OutboxMessage, error) {
	r.asOf, r.limit = now, limit

	return r.pending, r.fetchErr
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	r.retries = append(r.retries, retry{id, retryCount, lastError, nextRetryAt})

	return nil
}

type fakePublisher struct {
	failFor   map[string]error
	published []amqp.Publishing
	keys      []string
}

func (p *fakePublisher) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if err := p.failFor[msg.MessageId]; err != nil {
		return err
	}
	p.keys = append(p.keys, key)
	p.published = append(p.published, msg)

	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWorker(repo *fakeRepo, pub *fakePublisher) *Worker {
	viper.Reset()
	w := NewWorker(repo, pub)
	w.now = func() time.Time { return fixedNow }

	return w
}

func TestProcessMessages_PublishesAndDeletes(t *testing.T) {
	repo := &fakeRepo{pending: []outbox.OutboxMessage{
		{ID: 1, AggregateID: "order-1", EventType: "order.created", RoutingKey: "orders.created",
			ContentType: "application/json", Payload: []byte(`{"order_id":"order-1"}`)},
		{ID: 2, AggregateID: "order-2", EventType: "order.created", RoutingKey: "orders.created",
			ContentType: "application/json", Payload: []byte(`{"order_id":"order-2"}`)},
	}}
	pub := &fakePublisher{}

	newTestWorker(repo, pub).processMessages(context.Background())

	assert.Equal(t, fixedNow, repo.asOf)
	assert.Equal(t, 100, repo.limit)
	assert.Equal(t, []int64{1, 2}, repo.deleted)
	assert.Empty(t, repo.retries)
	require.Len(t, pub.published, 2)
	assert.Equal(t, []string{"orders.created", "orders.created"}, pub.keys)
	assert.Equal(t, "order.created", pub.published[0].Type)
	assert.Equal(t, "order-1", pub.published[0].MessageId)
	assert.Equal(t, amqp.Persistent, pub.published[0].DeliveryMode)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(pub.published[0].Body))
}

func TestProcessMessages_SchedulesRetryOnFailure(t *testing.T) {
	repo := &fakeRepo{pending: []outbox.OutboxMessage{
		{ID: 7, AggregateID: "order-7", RetryCount: 1},
		{ID: 8, AggregateID: "order-8"},
	}}
	pub := &fakePublisher{failFor: map[string]error{"order-7": errors.New("channel closed")}}

	newTestWorker(repo, pub).processMessages(context.Background())

	assert.Equal(t, []int64{8}, repo.deleted)
	require.Len(t, repo.retries, 1)
	assert.Equal(t, retry{
		id:          7,
		retryCount:  2,
		lastError:   "channel closed",
		nextRetryAt: fixedNow.Add(120 * time.Second),
	}, repo.retries[0])
}

func TestProcessMessages_FetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	pub := &fakePublisher{}

	newTestWorker(repo, pub).processMessages(context.Background())

	assert.Empty(t, pub.published)
	assert.Empty(t, repo.deleted)
}

func TestNextRetryAt_DoublesInterval(t *testing.T) {
	w := newTestWorker(&fakeRepo{}, &fakePublisher{})

	assert.Equal(t, fixedNow.Add(60*time.Second), w.nextRetryAt(1))
	assert.Equal(t, fixedNow.Add(240*time.Second), w.nextRetryAt(3))
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	w := newTestWorker(&fakeRepo{}, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
