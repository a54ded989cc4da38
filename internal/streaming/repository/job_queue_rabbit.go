package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/database"

	"github.com/streadway/amqp"
)

type rabbitJobQueue struct {
	ch          database.RabbitRepo
	name        string
	prefetch    int
	pollTimeout time.Duration
	closer      func() error

	once       sync.Once
	consumeErr error
	deliveries <-chan amqp.Delivery
}

// NewRabbitJobQueue durable queue, manual ack. prefetch is the number of unacked
// deliveries the broker hands this consumer and must match the worker pool size.
// closer releases the channel/connection, may be nil.
func NewRabbitJobQueue(ch database.RabbitRepo, name string, prefetch int, pollTimeout time.Duration, closer func() error) (JobQueue, error) {
	if prefetch < 1 {
		prefetch = 1
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}
	return &rabbitJobQueue{ch: ch, name: name, prefetch: prefetch, pollTimeout: pollTimeout, closer: closer}, nil
}

func (q *rabbitJobQueue) Enqueue(ctx context.Context, job domain.TranscodeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	return q.ch.Publish("", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.EnqueuedAt,
		Body:         data,
	})
}

func (q *rabbitJobQueue) consume() error {
	q.once.Do(func() {
		if err := q.ch.Qos(q.prefetch, 0, false); err != nil {
			q.consumeErr = fmt.Errorf("set qos: %w", err)
			return
		}
		q.deliveries, q.consumeErr = q.ch.Consume(q.name, "", false, false, false, false, nil)
	})
	return q.consumeErr
}

func (q *rabbitJobQueue) Dequeue(ctx context.Context) (domain.JobDelivery, error) {
	if err := q.consume(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(q.pollTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrQueueEmpty
	case d, ok := <-q.deliveries:
		if !ok {
			return nil, errors.New("rabbitmq delivery channel closed")
		}
		var job domain.TranscodeJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			// 解析失敗的訊息不重新排入佇列
			_ = d.Nack(false, false)
			return nil, fmt.Errorf("decode job %s: %w", d.MessageId, err)
		}
		return &rabbitDelivery{d: d, job: job}, nil
	}
}

// Status the broker keeps no per-job history
func (q *rabbitJobQueue) Status(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	return nil, ErrStatusUnsupported
}

// RecoverStale unacked deliveries go back to the queue when the channel closes
func (q *rabbitJobQueue) RecoverStale(ctx context.Context) (int, error) {
	return 0, nil
}

func (q *rabbitJobQueue) Close() error {
	if q.closer == nil {
		return nil
	}
	return q.closer()
}

type rabbitDelivery struct {
	d   amqp.Delivery
	job domain.TranscodeJob
}

func (r *rabbitDelivery) Job() domain.TranscodeJob { return r.job }

func (r *rabbitDelivery) Complete() error {
	return r.d.Ack(false)
}

// Fail drops the message, failed jobs are not redelivered
func (r *rabbitDelivery) Fail(cause error) error {
	return r.d.Nack(false, false)
}
