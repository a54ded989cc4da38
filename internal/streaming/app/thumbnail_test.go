package app

import (
	"bytes"
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

func TestThumbnailCursorIsBounded(t *testing.T) {
	c := &thumbnailCursor{offsets: []string{"0.1", "0.3"}}
	off, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, "0.1", off)
	off, ok = c.Next()
	assert.True(t, ok)
	assert.Equal(t, "0.3", off)
	_, ok = c.Next()
	assert.False(t, ok)
	_, ok = c.Next()
	assert.False(t, ok)
}

// seekArg returns the -ss value of an ffmpeg invocation
func seekArg(args []string) string {
	for i, a := range args {
		if a == "-ss" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func writeFrame(path string, size int) {
	_ = os.WriteFile(path, bytes.Repeat([]byte{0xff}, size), 0644)
}

func TestFrameExtractorAdvancesPastBlackFrames(t *testing.T) {
	logger.SetNewNop()
	outDir := t.TempDir()
	thumbPath := filepath.Join(outDir, domain.ThumbnailFile)

	var seen []string
	runner := new(MockRunner)
	runner.On("Run", "ffmpeg", mock.Anything).Return([]byte(nil), nil).Run(func(args mock.Arguments) {
		off := seekArg(args.Get(1).([]string))
		seen = append(seen, off)
		switch off {
		case "0.1":
			writeFrame(thumbPath, 200) // black frame
		case "0.3":
			// no output at all
		default:
			writeFrame(thumbPath, 4096)
		}
	})

	got, err := NewFrameExtractor(runner, "ffmpeg").Extract(context.Background(), "in.mp4", outDir)
	require.NoError(t, err)
	assert.Equal(t, thumbPath, got)
	assert.Equal(t, []string{"0.1", "0.3", "0.5"}, seen)
}

func TestFrameExtractorStaleFrameDoesNotPass(t *testing.T) {
	logger.SetNewNop()
	outDir := t.TempDir()
	thumbPath := filepath.Join(outDir, domain.ThumbnailFile)
	writeFrame(thumbPath, 4096)

	runner := new(MockRunner)
	runner.On("Run", "ffmpeg", mock.Anything).Return([]byte("boom"), errors.New("exit status 1"))

	_, err := NewFrameExtractor(runner, "ffmpeg").Extract(context.Background(), "in.mp4", outDir)
	assert.ErrorIs(t, err, domain.ErrThumbnailExtraction)
	runner.AssertNumberOfCalls(t, "Run", len(defaultThumbnailOffsets))
}

func TestFrameExtractorExhaustsOffsets(t *testing.T) {
	logger.SetNewNop()
	outDir := t.TempDir()
	thumbPath := filepath.Join(outDir, domain.ThumbnailFile)

	runner := new(MockRunner)
	runner.On("Run", "ffmpeg", mock.Anything).Return([]byte(nil), nil).Run(func(args mock.Arguments) {
		writeFrame(thumbPath, minThumbnailBytes)
	})

	_, err := NewFrameExtractor(runner, "ffmpeg").Extract(context.Background(), "in.mp4", outDir)
	assert.ErrorIs(t, err, domain.ErrThumbnailExtraction)
	runner.AssertNumberOfCalls(t, "Run", 5)
}
