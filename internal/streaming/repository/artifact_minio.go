package repository

import (
	"context"
	"path"
)

type dirMirror interface {
	MirrorDir(ctx context.Context, localDir, prefix string, contentType func(name string) string) error
}

// MinIOArtifactMirror copies a finished video directory to <group>/<id>/ in the bucket
type MinIOArtifactMirror struct {
	client      dirMirror
	contentType func(name string) string
}

// NewMinIOArtifactMirror create MinIOArtifactMirror
func NewMinIOArtifactMirror(client dirMirror, contentType func(name string) string) *MinIOArtifactMirror {
	return &MinIOArtifactMirror{client: client, contentType: contentType}
}

// Mirror uploads everything under dir
func (m *MinIOArtifactMirror) Mirror(ctx context.Context, groupID, videoID, dir string) error {
	return m.client.MirrorDir(ctx, dir, path.Join(groupID, videoID), m.contentType)
}
