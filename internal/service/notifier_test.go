package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/internal/repository"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
)

type publisherStub struct {
	mu       sync.Mutex
	failures int
	messages []interface{}
	done     chan struct{}
}

func (p *publisherStub) Publish(ctx context.Context, channel string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("redis unavailable")
	}
	p.messages = append(p.messages, payload)
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	return nil
}

func TestRedisNotifierPublishesOnChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	sub := client.Subscribe(ctx, "waitlist:offers")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewRedisNotifier(repository.NewCacheRepository(client, nil), "", nil, nil)
	offer := models.WaitlistOffer{EntryID: "w1", BarberID: "fabio", Date: "2025-03-08", Time: "10:00", CustomerEmail: "anna@example.com"}
	require.NoError(t, notifier.NotifyOffer(ctx, offer))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got models.WaitlistOffer
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, "w1", got.EntryID)
	assert.Equal(t, "10:00", got.Time)
}

func TestRedisNotifierRetriesThroughQueue(t *testing.T) {
	publisher := &publisherStub{failures: 1, done: make(chan struct{})}
	metrics := NewMetricsService()
	notifier := NewRedisNotifier(publisher, "offers", metrics, nil)
	queue := jobs.NewQueue("notifications", notifier.Handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
		Limiter:    rate.NewLimiter(rate.Inf, 1),
	})
	notifier.Attach(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, notifier.NotifyOffer(context.Background(), models.WaitlistOffer{EntryID: "w2"}))

	select {
	case <-publisher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("offer was not delivered")
	}
	assert.Eventually(t, func() bool {
		return metrics.Snapshot().NotificationsSent == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRedisNotifierCountsDroppedOffers(t *testing.T) {
	publisher := &publisherStub{failures: 10, done: make(chan struct{})}
	metrics := NewMetricsService()
	notifier := NewRedisNotifier(publisher, "offers", metrics, nil)
	dropped := make(chan string, 1)
	queue := jobs.NewQueue("notifications", notifier.Handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		OnDrop: func(job jobs.Job, err error) {
			notifier.Dropped(job, err)
			dropped <- job.ID
		},
	})
	notifier.Attach(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, notifier.NotifyOffer(context.Background(), models.WaitlistOffer{EntryID: "w3"}))

	select {
	case id := <-dropped:
		assert.Equal(t, "w3", id)
	case <-time.After(2 * time.Second):
		t.Fatal("offer was not dropped")
	}
	assert.Zero(t, metrics.Snapshot().NotificationsSent)
}
