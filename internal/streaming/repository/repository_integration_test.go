//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/database"
	"video_stream_service/pkg/logger"
	testtool "video_stream_service/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisJobQueueLifecycle(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	container, host, port, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	rdb, err := database.NewRedisClient(ctx, database.RedisConnection{Addr: fmt.Sprintf("%s:%s", host, port)})
	require.NoError(t, err)

	q := NewRedisJobQueue(rdb, "test-encoding", 200*time.Millisecond)
	defer q.Close()

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, q.Enqueue(ctx, domain.TranscodeJob{ID: "j1", VideoID: "v1", GroupID: "demo"}))
	require.NoError(t, q.Enqueue(ctx, domain.TranscodeJob{ID: "j2", VideoID: "v2", GroupID: "demo"}))

	st, err := q.Status(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobWaiting, st.State)

	// FIFO
	d1, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j1", d1.Job().ID)
	st, _ = q.Status(ctx, "j1")
	assert.Equal(t, domain.JobActive, st.State)
	assert.Equal(t, 1, st.Attempts)

	require.NoError(t, d1.Complete())
	st, _ = q.Status(ctx, "j1")
	assert.Equal(t, domain.JobCompleted, st.State)
	assert.False(t, st.FinishedAt.IsZero())

	// j2 is abandoned by a worker whose lease then runs out
	crashed := newRedisJobQueue(rdb, "test-encoding", 200*time.Millisecond, time.Second)
	_, err = crashed.Dequeue(ctx)
	require.NoError(t, err)
	n, err := q.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	crashed.stopBeat()
	<-crashed.beatDone
	time.Sleep(1500 * time.Millisecond)
	n, err = q.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	d2, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, d2.Fail(errors.New("encode 480p failed")))
	st, _ = q.Status(ctx, "j2")
	assert.Equal(t, domain.JobFailed, st.State)
	assert.Equal(t, "encode 480p failed", st.Error)
	assert.Equal(t, 2, st.Attempts)

	_, err = q.Status(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoVideoRepo(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	container, host, port, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	mdb, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", host, port),
		RetryCount:    3,
		RetryInterval: time.Second,
	}, "video_test")
	require.NoError(t, err)
	defer mdb.Close(ctx)

	repo := NewMongoVideoRepo(mdb.Database)
	require.NoError(t, repo.Migrate(ctx))
	exerciseVideoRepo(t, repo)
}

func TestPostgresVideoRepo(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	container, host, port, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "video",
			"POSTGRES_PASSWORD": "video",
			"POSTGRES_DB":       "video",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	db, err := database.NewPGConnection(database.Connection{
		ConnectStr:    fmt.Sprintf("host=%s user=video password=video dbname=video port=%s sslmode=disable", host, port),
		RetryCount:    3,
		RetryInterval: time.Second,
	})
	require.NoError(t, err)

	repo := NewVideoRepo(db)
	require.NoError(t, repo.Migrate(ctx))
	exerciseVideoRepo(t, repo)
}

func exerciseVideoRepo(t *testing.T, repo VideoRepo) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, g := range []string{"demo", "demo", "other"} {
		v := &domain.Video{
			ID:        fmt.Sprintf("v%d", i),
			GroupID:   g,
			Title:     "t",
			Qualities: []domain.Quality{{Resolution: "480p", HLS: domain.PlaylistURL(g, fmt.Sprintf("v%d", i), "480p")}},
			Thumbnail: domain.ThumbnailURL(g, fmt.Sprintf("v%d", i)),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Create(ctx, v))
	}

	v, err := repo.FindByID(ctx, "demo", "v1")
	require.NoError(t, err)
	assert.Equal(t, "480p", v.Qualities[0].Resolution)

	_, err = repo.FindByID(ctx, "other", "v1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byGroup, err := repo.FindByGroup(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	groups, err := repo.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "other"}, groups)
}
