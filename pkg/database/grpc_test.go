package database

import (
	"context"
	"testing"
	"time"

	"video_stream_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServerReportsPoolState(t *testing.T) {
	logger.SetNewNop()

	hs, err := NewHealthServer("127.0.0.1:0", "video-encoding")
	require.NoError(t, err)
	go hs.Serve()
	defer hs.Stop()

	conn, err := grpc.NewClient(hs.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "video-encoding"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, res.Status)

	hs.SetServing("video-encoding", true)
	res, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "video-encoding"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.Status)
}
