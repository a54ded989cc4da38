package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/exec"
	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
)

// QualityProber decides which renditions an input can produce
type QualityProber interface {
	AdmissibleRenditions(ctx context.Context, path string) ([]domain.RenditionSpec, error)
}

// Prober runs ffprobe and applies the admission rule
type Prober struct {
	runner  exec.Runner
	ffprobe string
}

// NewProber create Prober
func NewProber(runner exec.Runner, ffprobePath string) *Prober {
	return &Prober{runner: runner, ffprobe: ffprobePath}
}

var statFile = os.Stat

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		BitRate   string `json:"bit_rate"`
	} `json:"streams"`
}

// Probe reads the first video stream of path
func (p *Prober) Probe(ctx context.Context, path string) (domain.SourceInfo, error) {
	if _, err := statFile(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SourceInfo{}, fmt.Errorf("probe %s: %w", path, domain.ErrNotFound)
		}
		return domain.SourceInfo{}, fmt.Errorf("probe %s: %w: %v", path, domain.ErrProbe, err)
	}

	out, err := p.runner.Run(ctx, p.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	if err != nil {
		return domain.SourceInfo{}, fmt.Errorf("probe %s: %w: %v: %s", path, domain.ErrProbe, err, out)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return domain.SourceInfo{}, fmt.Errorf("probe %s: %w: %v", path, domain.ErrProbe, err)
	}

	for _, s := range parsed.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := domain.SourceInfo{Codec: s.CodecName, Width: s.Width, Height: s.Height}
		// bit_rate is absent for some containers, 0 means unknown
		if bps, err := strconv.ParseInt(s.BitRate, 10, 64); err == nil {
			info.BitrateBps = bps
		}
		return info, nil
	}
	return domain.SourceInfo{}, fmt.Errorf("probe %s: %w", path, domain.ErrNoVideoStream)
}

// AdmissibleRenditions probes path, rejects unsupported codecs and returns the admitted tiers
func (p *Prober) AdmissibleRenditions(ctx context.Context, path string) ([]domain.RenditionSpec, error) {
	info, err := p.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	log := logger.Log.With(
		zap.String("path", path),
		zap.String("codec", info.Codec),
		zap.Int("height", info.Height),
		zap.Int64("bitrate_bps", info.BitrateBps),
	)
	if info.Codec != domain.SupportedCodec {
		log.Warn("unsupported source codec")
		return nil, fmt.Errorf("probe %s: %w: %s, only %s is accepted", path, domain.ErrUnsupportedCodec, info.Codec, domain.SupportedCodec)
	}

	renditions := domain.AdmissibleRenditions(info)
	log.Info("renditions admitted", zap.Strings("renditions", resolutionsOf(renditions)))
	return renditions, nil
}

func resolutionsOf(rs []domain.RenditionSpec) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Resolution)
	}
	return out
}
