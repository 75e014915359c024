package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/jobs"
)

// JobTypeWaitlistOffer identifies offer deliveries on the notification queue.
const JobTypeWaitlistOffer = "waitlist.offer"

type offerPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// RedisNotifier publishes waitlist offers on a Redis channel consumed by the push service.
// When a queue is attached deliveries are asynchronous and retried.
type RedisNotifier struct {
	publisher offerPublisher
	channel   string
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRedisNotifier constructs a notifier.
func NewRedisNotifier(publisher offerPublisher, channel string, metrics *MetricsService, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "waitlist:offers"
	}
	return &RedisNotifier{publisher: publisher, channel: channel, metrics: metrics, logger: logger}
}

// Attach routes deliveries through queue. The queue must use Handle as its handler.
func (n *RedisNotifier) Attach(queue *jobs.Queue) {
	n.queue = queue
}

// NotifyOffer delivers an offer.
func (n *RedisNotifier) NotifyOffer(ctx context.Context, offer models.WaitlistOffer) error {
	if n.queue == nil {
		return n.publish(ctx, offer)
	}
	return n.queue.Enqueue(jobs.Job{ID: offer.EntryID, Type: JobTypeWaitlistOffer, Payload: offer})
}

// Handle is the queue handler performing the actual publish.
func (n *RedisNotifier) Handle(ctx context.Context, job jobs.Job) error {
	offer, ok := job.Payload.(models.WaitlistOffer)
	if !ok {
		n.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	return n.publish(ctx, offer)
}

// Dropped is the queue drop callback. The offer stays open until the sweep expires it.
func (n *RedisNotifier) Dropped(job jobs.Job, err error) {
	n.metrics.RecordNotificationDropped()
	n.logger.Warn("offer notification abandoned",
		zap.String("entry_id", job.ID),
		zap.Int("attempts", job.Attempt),
		zap.Error(err))
}

func (n *RedisNotifier) publish(ctx context.Context, offer models.WaitlistOffer) error {
	err := n.publisher.Publish(ctx, n.channel, offer)
	n.metrics.RecordNotification(err)
	if err != nil {
		return fmt.Errorf("publish offer %s: %w", offer.EntryID, err)
	}
	n.logger.Debug("offer published", zap.String("entry_id", offer.EntryID), zap.String("channel", n.channel))
	return nil
}
