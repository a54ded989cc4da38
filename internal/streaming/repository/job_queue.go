package repository

import (
	"context"
	"errors"

	"video_stream_service/internal/streaming/domain"
)

var (
	// ErrQueueEmpty Dequeue timed out without a job
	ErrQueueEmpty = errors.New("queue empty")
	// ErrStatusUnsupported the backend keeps no per-job state
	ErrStatusUnsupported = errors.New("job status not supported by queue backend")
)

// JobQueue durable at-least-once transcode job queue, the only owner of job state
type JobQueue interface {
	Enqueue(ctx context.Context, job domain.TranscodeJob) error
	// Dequeue blocks up to the poll timeout, ErrQueueEmpty when nothing arrived
	Dequeue(ctx context.Context) (domain.JobDelivery, error)
	Status(ctx context.Context, jobID string) (*domain.JobStatus, error)
	// RecoverStale puts deliveries abandoned by a crashed worker back in line
	RecoverStale(ctx context.Context) (int, error)
	Close() error
}

// JobEventPublisher operator facing job.completed / job.failed channel
type JobEventPublisher interface {
	Publish(ctx context.Context, event domain.JobEvent) error
	Close() error
}
