package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultWorkerLease how long a worker's active list survives without a heartbeat
const DefaultWorkerLease = 30 * time.Second

// job hash fields
const (
	fieldData       = "data"
	fieldState      = "state"
	fieldError      = "error"
	fieldAttempts   = "attempts"
	fieldUpdatedAt  = "updated_at"
	fieldFinishedAt = "finished_at"
)

type redisJobQueue struct {
	rdb         *redis.Client
	name        string
	pollTimeout time.Duration
	now         func() time.Time

	// owner names this process' active list <name>:active:<owner>,
	// kept alive by <name>:worker:<owner> while the process dequeues
	owner string
	lease time.Duration

	beatOnce sync.Once
	beatErr  error
	stopBeat context.CancelFunc
	beatDone chan struct{}
}

// NewRedisJobQueue one wait list, one active list per worker process and one hash per job under <name>:*
func NewRedisJobQueue(rdb *redis.Client, name string, pollTimeout time.Duration) JobQueue {
	return newRedisJobQueue(rdb, name, pollTimeout, DefaultWorkerLease)
}

func newRedisJobQueue(rdb *redis.Client, name string, pollTimeout, lease time.Duration) *redisJobQueue {
	return &redisJobQueue{
		rdb:         rdb,
		name:        name,
		pollTimeout: pollTimeout,
		now:         time.Now,
		owner:       uuid.NewString(),
		lease:       lease,
	}
}

func (q *redisJobQueue) waitKey() string { return q.name + ":wait" }
func (q *redisJobQueue) activePrefix() string {
	return q.name + ":active:"
}
func (q *redisJobQueue) activeKey() string { return q.activePrefix() + q.owner }
func (q *redisJobQueue) workerKey(owner string) string {
	return q.name + ":worker:" + owner
}
func (q *redisJobQueue) jobKey(id string) string {
	return q.name + ":job:" + id
}

// heartbeat registers the worker before its first dequeue and refreshes the lease until Close
func (q *redisJobQueue) heartbeat(ctx context.Context) error {
	q.beatOnce.Do(func() {
		if q.beatErr = q.rdb.Set(ctx, q.workerKey(q.owner), q.now().UnixMilli(), q.lease).Err(); q.beatErr != nil {
			return
		}
		bctx, cancel := context.WithCancel(context.Background())
		q.stopBeat = cancel
		q.beatDone = make(chan struct{})
		go func() {
			defer close(q.beatDone)
			ticker := time.NewTicker(q.lease / 3)
			defer ticker.Stop()
			for {
				select {
				case <-bctx.Done():
					return
				case <-ticker.C:
					if err := q.rdb.Set(bctx, q.workerKey(q.owner), q.now().UnixMilli(), q.lease).Err(); err != nil && bctx.Err() == nil {
						logger.Log.Warn("worker heartbeat failed", zap.String("owner", q.owner), zap.Error(err))
					}
				}
			}
		}()
	})
	return q.beatErr
}

func (q *redisJobQueue) Enqueue(ctx context.Context, job domain.TranscodeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(job.ID),
			fieldData, data,
			fieldState, string(domain.JobWaiting),
			fieldAttempts, 0,
			fieldUpdatedAt, q.now().UnixMilli(),
		)
		pipe.LPush(ctx, q.waitKey(), job.ID)
		return nil
	})
	return err
}

func (q *redisJobQueue) Dequeue(ctx context.Context) (domain.JobDelivery, error) {
	if err := q.heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("register worker %s: %w", q.owner, err)
	}
	id, err := q.rdb.BRPopLPush(ctx, q.waitKey(), q.activeKey(), q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	data, err := q.rdb.HGet(ctx, q.jobKey(id), fieldData).Bytes()
	if err != nil {
		q.rdb.LRem(ctx, q.activeKey(), 1, id)
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	var job domain.TranscodeJob
	if err := json.Unmarshal(data, &job); err != nil {
		q.settle(ctx, id, domain.JobFailed, "undecodable payload")
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(id), fieldState, string(domain.JobActive), fieldUpdatedAt, q.now().UnixMilli())
		pipe.HIncrBy(ctx, q.jobKey(id), fieldAttempts, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &redisDelivery{q: q, job: job}, nil
}

// settle moves the job out of the active list into a terminal state
func (q *redisJobQueue) settle(ctx context.Context, id string, state domain.JobState, errMsg string) error {
	now := q.now().UnixMilli()
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.activeKey(), 1, id)
		pipe.HSet(ctx, q.jobKey(id),
			fieldState, string(state),
			fieldError, errMsg,
			fieldUpdatedAt, now,
			fieldFinishedAt, now,
		)
		return nil
	})
	return err
}

func (q *redisJobQueue) Status(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	fields, err := q.rdb.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}

	status := &domain.JobStatus{
		ID:    jobID,
		State: domain.JobState(fields[fieldState]),
		Error: fields[fieldError],
	}
	status.Attempts, _ = strconv.Atoi(fields[fieldAttempts])
	status.UpdatedAt = fromMillis(fields[fieldUpdatedAt])
	status.FinishedAt = fromMillis(fields[fieldFinishedAt])

	var job domain.TranscodeJob
	if err := json.Unmarshal([]byte(fields[fieldData]), &job); err == nil {
		status.VideoID = job.VideoID
		status.GroupID = job.GroupID
	}
	return status, nil
}

// RecoverStale requeues the active lists of workers whose lease expired.
// Lists of live workers, this one included, are left alone.
func (q *redisJobQueue) RecoverStale(ctx context.Context) (int, error) {
	var stale []string
	iter := q.rdb.Scan(ctx, 0, q.activePrefix()+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		owner := strings.TrimPrefix(key, q.activePrefix())
		if owner == q.owner {
			continue
		}
		alive, err := q.rdb.Exists(ctx, q.workerKey(owner)).Result()
		if err != nil {
			return 0, err
		}
		if alive == 0 {
			stale = append(stale, key)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}

	n := 0
	for _, key := range stale {
		for {
			id, err := q.rdb.RPopLPush(ctx, key, q.waitKey()).Result()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				return n, err
			}
			if err := q.rdb.HSet(ctx, q.jobKey(id), fieldState, string(domain.JobWaiting), fieldUpdatedAt, q.now().UnixMilli()).Err(); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// Close stops the heartbeat and drops the lease, call it after the pool drained
func (q *redisJobQueue) Close() error {
	if q.stopBeat != nil {
		q.stopBeat()
		<-q.beatDone
		q.rdb.Del(context.Background(), q.workerKey(q.owner))
	}
	return q.rdb.Close()
}

func fromMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type redisDelivery struct {
	q   *redisJobQueue
	job domain.TranscodeJob
}

func (d *redisDelivery) Job() domain.TranscodeJob { return d.job }

func (d *redisDelivery) Complete() error {
	return d.q.settle(context.Background(), d.job.ID, domain.JobCompleted, "")
}

func (d *redisDelivery) Fail(cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return d.q.settle(context.Background(), d.job.ID, domain.JobFailed, msg)
}
