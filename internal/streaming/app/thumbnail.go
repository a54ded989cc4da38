package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/exec"
	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
)

// ThumbnailExtractor writes one still frame into outDir
type ThumbnailExtractor interface {
	Extract(ctx context.Context, input, outDir string) (string, error)
}

// default seek offsets in seconds, tried in order
var defaultThumbnailOffsets = []string{"0.1", "0.3", "0.5", "0.7", "1"}

// frames at or below this size are black or corrupt
const minThumbnailBytes = 1000

// thumbnailCursor walks a bounded list of offsets exactly once
type thumbnailCursor struct {
	offsets []string
	next    int
}

func (c *thumbnailCursor) Next() (string, bool) {
	if c.next >= len(c.offsets) {
		return "", false
	}
	off := c.offsets[c.next]
	c.next++
	return off, true
}

// FrameExtractor ffmpeg backed ThumbnailExtractor
type FrameExtractor struct {
	runner   exec.Runner
	ffmpeg   string
	offsets  []string
	minBytes int64
}

// NewFrameExtractor create FrameExtractor
func NewFrameExtractor(runner exec.Runner, ffmpegPath string) *FrameExtractor {
	return &FrameExtractor{
		runner:   runner,
		ffmpeg:   ffmpegPath,
		offsets:  defaultThumbnailOffsets,
		minBytes: minThumbnailBytes,
	}
}

var removeFile = os.Remove

// validFrame the file exists and is large enough
func (f *FrameExtractor) validFrame(path string) bool {
	fi, err := statFile(path)
	return err == nil && fi.Size() > f.minBytes
}

func (f *FrameExtractor) Extract(ctx context.Context, input, outDir string) (string, error) {
	thumbPath := filepath.Join(outDir, domain.ThumbnailFile)
	cursor := &thumbnailCursor{offsets: f.offsets}

	var lastErr error
	for {
		offset, ok := cursor.Next()
		if !ok {
			break
		}
		// a frame left by an earlier attempt must not pass validation
		if err := removeFile(thumbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			lastErr = err
		}

		out, err := f.runner.Run(ctx, f.ffmpeg,
			"-y",
			"-ss", offset,
			"-i", input,
			"-frames:v", "1",
			"-vf", "scale=640:360",
			"-q:v", "5",
			thumbPath,
		)
		if err == nil && f.validFrame(thumbPath) {
			logger.Log.Debug("thumbnail extracted", zap.String("offset", offset), zap.String("path", thumbPath))
			return thumbPath, nil
		}
		if err != nil {
			lastErr = fmt.Errorf("%v: %s", err, tail(string(out), 512))
		} else {
			lastErr = fmt.Errorf("frame at %ss is empty or below %d bytes", offset, f.minBytes)
		}
		logger.Log.Warn("thumbnail attempt failed", zap.String("offset", offset), zap.Error(lastErr))
	}

	return "", fmt.Errorf("%w after %d attempts: %v", domain.ErrThumbnailExtraction, len(f.offsets), lastErr)
}
