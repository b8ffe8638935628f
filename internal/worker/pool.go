package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotifications  = "jobs:notifications"
	maxDeliveryAttempts = 3
	retryBackoff        = 2 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueNotification pushes a notification job to Redis.
func (d *Dispatcher) EnqueueNotification(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueNotifications, "notification", payload)
}

// Notify satisfies the reminder scheduler's Notifier interface.
func (d *Dispatcher) Notify(ctx context.Context, subject, body string) error {
	return d.EnqueueNotification(ctx, NotificationPayload{Subject: subject, Body: body})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the
// notification queue. Each goroutine blocks on BRPOP — zero CPU when
// idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, nw *NotifyWorker, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, nw, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, nw *NotifyWorker, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNotifications).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, nw, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, nw *NotifyWorker, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "notification":
		var err error
		for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
			if err = nw.Process(ctx, job.Payload); err == nil {
				return
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("notification delivery failed")
			if attempt < maxDeliveryAttempts {
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryBackoff):
				}
			}
		}
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), maxDeliveryAttempts)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
