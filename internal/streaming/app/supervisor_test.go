package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestSupervisorRunsOnceByDefault(t *testing.T) {
	logger.SetNewNop()
	runner := new(MockJobRunner)
	runner.On("Run", "job-1").Return(nil, domain.ErrEncode)

	_, attempts, err := NewSupervisor(runner, fastPolicy).Execute(context.Background(), domain.TranscodeJob{ID: "job-1"})
	assert.ErrorIs(t, err, domain.ErrEncode)
	assert.Equal(t, 1, attempts)
	runner.AssertNumberOfCalls(t, "Run", 1)
}

func TestSupervisorRetriesUpToMaxAttempts(t *testing.T) {
	logger.SetNewNop()
	policy := fastPolicy
	policy.MaxAttempts = 3

	runner := new(MockJobRunner)
	runner.On("Run", "job-1").Return(nil, errors.New("transient")).Twice()
	runner.On("Run", "job-1").Return(&domain.Video{ID: "v1"}, nil).Once()

	video, attempts, err := NewSupervisor(runner, policy).Execute(context.Background(), domain.TranscodeJob{ID: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", video.ID)
	assert.Equal(t, 3, attempts)
}

func TestSupervisorGivesUp(t *testing.T) {
	logger.SetNewNop()
	policy := fastPolicy
	policy.MaxAttempts = 2

	runner := new(MockJobRunner)
	runner.On("Run", "job-1").Return(nil, domain.ErrPersistence)

	_, attempts, err := NewSupervisor(runner, policy).Execute(context.Background(), domain.TranscodeJob{ID: "job-1"})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 2, attempts)
}

func TestSupervisorInputMissingIsPermanent(t *testing.T) {
	logger.SetNewNop()
	policy := fastPolicy
	policy.MaxAttempts = 5

	runner := new(MockJobRunner)
	runner.On("Run", "job-1").Return(nil, domain.ErrInputMissing)

	_, attempts, err := NewSupervisor(runner, policy).Execute(context.Background(), domain.TranscodeJob{ID: "job-1"})
	assert.ErrorIs(t, err, domain.ErrInputMissing)
	assert.Equal(t, 1, attempts)
}
