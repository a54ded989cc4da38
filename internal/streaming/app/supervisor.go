package app

import (
	"context"
	"errors"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy how many times a job body runs, MaxAttempts 1 means run once
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Supervisor owns the retry policy around a JobRunner
type Supervisor struct {
	runner JobRunner
	policy RetryPolicy
}

// NewSupervisor create Supervisor
func NewSupervisor(runner JobRunner, policy RetryPolicy) *Supervisor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Supervisor{runner: runner, policy: policy}
}

// retryable failures that cannot change on another attempt are permanent
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrInputMissing) && !errors.Is(err, domain.ErrValidation)
}

func (s *Supervisor) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if s.policy.InitialInterval > 0 {
		eb.InitialInterval = s.policy.InitialInterval
	}
	if s.policy.MaxInterval > 0 {
		eb.MaxInterval = s.policy.MaxInterval
	}
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.policy.MaxAttempts-1)), ctx)
}

// Execute runs the job until it succeeds or the policy gives up, returns the attempts used
func (s *Supervisor) Execute(ctx context.Context, job domain.TranscodeJob) (*domain.Video, int, error) {
	var (
		video    *domain.Video
		attempts int
	)
	op := func() error {
		attempts++
		v, err := s.runner.Run(ctx, job)
		if err == nil {
			video = v
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Log.Warn("job attempt failed, retrying",
			zap.String("job_id", job.ID),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, s.backOff(ctx), notify); err != nil {
		return nil, attempts, err
	}
	return video, attempts, nil
}
