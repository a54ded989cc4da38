package repository

import (
	"context"
	"testing"

	"video_stream_service/internal/streaming/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockDirMirror struct {
	mock.Mock
}

func (m *MockDirMirror) MirrorDir(ctx context.Context, localDir, prefix string, contentType func(name string) string) error {
	return m.Called(ctx, localDir, prefix).Error(0)
}

func TestMinIOArtifactMirrorPrefix(t *testing.T) {
	client := new(MockDirMirror)
	client.On("MirrorDir", mock.Anything, "videos/demo/v1", "demo/v1").Return(nil)

	m := NewMinIOArtifactMirror(client, domain.ContentType)
	assert.NoError(t, m.Mirror(context.Background(), "demo", "v1", "videos/demo/v1"))
	client.AssertExpectations(t)
}
