package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHLSEncoderArgs(t *testing.T) {
	e := NewHLSEncoder(new(MockRunner), "ffmpeg")
	spec := domain.Catalog[1]

	args := e.Args("in.mp4", "out/720p/hls", spec)
	assert.Equal(t, []string{
		"-y",
		"-i", "in.mp4",
		"-vf", "scale=1280:720,setsar=1:1",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "26",
		"-c:a", "aac",
		"-hls_time", "4",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join("out/720p/hls", "segment-%05d.ts"),
		"-threads", "2",
		filepath.Join("out/720p/hls", "playlist.m3u8"),
	}, args)
}

func TestHLSEncoderEncode(t *testing.T) {
	logger.SetNewNop()
	root := t.TempDir()
	spec := domain.LowestRendition()

	runner := new(MockRunner)
	runner.On("Run", "ffmpeg", mock.Anything).Return([]byte("ok"), nil).Once()

	e := NewHLSEncoder(runner, "ffmpeg")
	require.NoError(t, e.Encode(context.Background(), "in.mp4", root, spec))

	fi, err := os.Stat(filepath.Join(root, "480p", "hls"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestHLSEncoderEncodeFailureCarriesDiagnostic(t *testing.T) {
	logger.SetNewNop()
	runner := new(MockRunner)
	runner.On("Run", "ffmpeg", mock.Anything).Return([]byte("Conversion failed!"), errors.New("exit status 1"))

	err := NewHLSEncoder(runner, "ffmpeg").Encode(context.Background(), "in.mp4", t.TempDir(), domain.Catalog[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncode)

	var encErr *domain.EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "1080p", encErr.Resolution)
	assert.Contains(t, encErr.Output, "Conversion failed!")
}

func TestHLSEncoderCreateDirFailure(t *testing.T) {
	orig := createDir
	defer func() { createDir = orig }()
	createDir = func(string) error { return errors.New("read-only fs") }

	runner := new(MockRunner)
	err := NewHLSEncoder(runner, "ffmpeg").Encode(context.Background(), "in.mp4", "x", domain.Catalog[0])
	assert.ErrorIs(t, err, domain.ErrEncode)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}
