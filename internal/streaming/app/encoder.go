package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/exec"
	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
)

// RenditionEncoder produces <outputRoot>/<resolution>/hls/ for one tier
type RenditionEncoder interface {
	Encode(ctx context.Context, input, outputRoot string, spec domain.RenditionSpec) error
}

// HLSEncoder encodes one rendition per ffmpeg invocation, no retry here
type HLSEncoder struct {
	runner exec.Runner
	ffmpeg string
}

// NewHLSEncoder create HLSEncoder
func NewHLSEncoder(runner exec.Runner, ffmpegPath string) *HLSEncoder {
	return &HLSEncoder{runner: runner, ffmpeg: ffmpegPath}
}

// fixed per invocation
const (
	hlsSegmentSeconds = "4"
	encoderThreads    = "2"
	encoderPreset     = "fast"
)

var createDir = func(path string) error {
	return os.MkdirAll(path, 0755)
}

// Args the ffmpeg arguments for one rendition, deterministic
func (e *HLSEncoder) Args(input, hlsDir string, spec domain.RenditionSpec) []string {
	return []string{
		"-y",
		"-i", input,
		"-vf", fmt.Sprintf("scale=%s,setsar=1:1", spec.Scale),
		"-c:v", "libx264",
		"-preset", encoderPreset,
		"-crf", fmt.Sprint(spec.CRF),
		"-c:a", "aac",
		"-hls_time", hlsSegmentSeconds,
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(hlsDir, domain.SegmentFormat),
		"-threads", encoderThreads,
		filepath.Join(hlsDir, domain.PlaylistFile),
	}
}

// Encode leaves a partially populated directory behind on failure
func (e *HLSEncoder) Encode(ctx context.Context, input, outputRoot string, spec domain.RenditionSpec) error {
	hlsDir := filepath.Join(outputRoot, spec.Resolution, domain.HLSDir)
	if err := createDir(hlsDir); err != nil {
		return &domain.EncodeError{Resolution: spec.Resolution, Err: err}
	}

	logger.Log.Debug("encoding rendition", zap.String("resolution", spec.Resolution), zap.String("dir", hlsDir))
	out, err := e.runner.Run(ctx, e.ffmpeg, e.Args(input, hlsDir, spec)...)
	if err != nil {
		return &domain.EncodeError{Resolution: spec.Resolution, Output: tail(string(out), 2048), Err: err}
	}
	return nil
}

// tail keeps the end of the encoder output, where ffmpeg prints the cause
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
