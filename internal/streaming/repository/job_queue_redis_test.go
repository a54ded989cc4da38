package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	logger.SetNewNop()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return m, rdb
}

// newTestRedisQueue lease is long enough that the heartbeat never ticks during a test
func newTestRedisQueue(t *testing.T, rdb *redis.Client) *redisJobQueue {
	t.Helper()
	q := newRedisJobQueue(rdb, "video-encoding", time.Second, time.Minute)
	t.Cleanup(func() { stopHeartbeat(q) })
	return q
}

// stopHeartbeat simulates a worker that died, the lease is left to expire
func stopHeartbeat(q *redisJobQueue) {
	if q.stopBeat != nil {
		q.stopBeat()
		<-q.beatDone
	}
}

func listOf(t *testing.T, m *miniredis.Miniredis, key string) []string {
	t.Helper()
	if !m.Exists(key) {
		return nil
	}
	l, err := m.List(key)
	require.NoError(t, err)
	return l
}

func TestRedisQueueLifecycle(t *testing.T) {
	m, rdb := newMiniRedis(t)
	q := newTestRedisQueue(t, rdb)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.TranscodeJob{ID: "j1", VideoID: "v1", GroupID: "demo"}))
	require.NoError(t, q.Enqueue(ctx, domain.TranscodeJob{ID: "j2", VideoID: "v2", GroupID: "demo"}))

	st, err := q.Status(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobWaiting, st.State)
	assert.Equal(t, "v1", st.VideoID)

	// FIFO, the delivery sits in this worker's active list
	d1, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j1", d1.Job().ID)
	assert.Equal(t, []string{"j1"}, listOf(t, m, q.activeKey()))
	assert.True(t, m.Exists(q.workerKey(q.owner)))

	st, _ = q.Status(ctx, "j1")
	assert.Equal(t, domain.JobActive, st.State)
	assert.Equal(t, 1, st.Attempts)

	require.NoError(t, d1.Complete())
	st, _ = q.Status(ctx, "j1")
	assert.Equal(t, domain.JobCompleted, st.State)
	assert.False(t, st.FinishedAt.IsZero())
	assert.Empty(t, listOf(t, m, q.activeKey()))

	d2, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, d2.Fail(errors.New("encode 480p failed")))
	st, _ = q.Status(ctx, "j2")
	assert.Equal(t, domain.JobFailed, st.State)
	assert.Equal(t, "encode 480p failed", st.Error)

	_, err = q.Status(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisQueueEmptyPoll(t *testing.T) {
	_, rdb := newMiniRedis(t)
	q := newTestRedisQueue(t, rdb)

	_, err := q.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRedisQueueUndecodablePayloadFails(t *testing.T) {
	m, rdb := newMiniRedis(t)
	q := newTestRedisQueue(t, rdb)
	ctx := context.Background()

	m.HSet(q.jobKey("bad"), fieldData, "{not json", fieldState, string(domain.JobWaiting))
	m.Lpush(q.waitKey(), "bad")

	_, err := q.Dequeue(ctx)
	assert.Error(t, err)

	st, err := q.Status(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, st.State)
	assert.Equal(t, "undecodable payload", st.Error)
	assert.Empty(t, listOf(t, m, q.activeKey()))
}

func TestRedisQueueMissingPayloadLeavesNoActiveEntry(t *testing.T) {
	m, rdb := newMiniRedis(t)
	q := newTestRedisQueue(t, rdb)

	m.Lpush(q.waitKey(), "ghost")

	_, err := q.Dequeue(context.Background())
	assert.Error(t, err)
	assert.Empty(t, listOf(t, m, q.activeKey()))
}

func TestRedisRecoverStaleSkipsLiveWorkers(t *testing.T) {
	m, rdb := newMiniRedis(t)
	ctx := context.Background()

	running := newTestRedisQueue(t, rdb)
	require.NoError(t, running.Enqueue(ctx, domain.TranscodeJob{ID: "j1", VideoID: "v1", GroupID: "demo"}))
	_, err := running.Dequeue(ctx)
	require.NoError(t, err)

	// a second replica starting up must not steal a job that is still encoding
	replica := newTestRedisQueue(t, rdb)
	n, err := replica.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	st, _ := replica.Status(ctx, "j1")
	assert.Equal(t, domain.JobActive, st.State)

	// its own list is never recovered either
	n, err = running.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"j1"}, listOf(t, m, running.activeKey()))
}

func TestRedisRecoverStaleRequeuesExpiredWorker(t *testing.T) {
	m, rdb := newMiniRedis(t)
	ctx := context.Background()

	crashed := newTestRedisQueue(t, rdb)
	require.NoError(t, crashed.Enqueue(ctx, domain.TranscodeJob{ID: "j1", VideoID: "v1", GroupID: "demo"}))
	_, err := crashed.Dequeue(ctx)
	require.NoError(t, err)
	stopHeartbeat(crashed)
	m.FastForward(2 * time.Minute)

	replica := newTestRedisQueue(t, rdb)
	n, err := replica.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, listOf(t, m, crashed.activeKey()))

	st, _ := replica.Status(ctx, "j1")
	assert.Equal(t, domain.JobWaiting, st.State)

	d, err := replica.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j1", d.Job().ID)
	st, _ = replica.Status(ctx, "j1")
	assert.Equal(t, 2, st.Attempts)
}

func TestRedisCloseReleasesLease(t *testing.T) {
	m, rdb := newMiniRedis(t)
	q := newRedisJobQueue(rdb, "video-encoding", time.Second, time.Minute)
	require.NoError(t, q.heartbeat(context.Background()))
	assert.True(t, m.Exists(q.workerKey(q.owner)))

	require.NoError(t, q.Close())
	assert.False(t, m.Exists(q.workerKey(q.owner)))
}
