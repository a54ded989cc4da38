package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/internal/streaming/repository"
	"video_stream_service/pkg/logger"
	"video_stream_service/pkg/metrics"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// JobRunner the job body, (job) -> record or error
type JobRunner interface {
	Run(ctx context.Context, job domain.TranscodeJob) (*domain.Video, error)
}

// ArtifactMirror copies a finished video directory somewhere else
type ArtifactMirror interface {
	Mirror(ctx context.Context, groupID, videoID, dir string) error
}

// Stage names, also used as the metrics label
const (
	StageStart     = "start"
	StageThumbnail = "thumbnail"
	StageEncode    = "encode"
	StagePersist   = "persist"
	StageCleanup   = "cleanup"
	StageMirror    = "mirror"
)

// Transcoder runs the stages of one job strictly in order
type Transcoder struct {
	thumbs  ThumbnailExtractor
	encoder RenditionEncoder
	repo    repository.VideoRepo
	mirror  ArtifactMirror

	// RequireAllRenditions fails the job when any rendition failed, nothing is persisted
	RequireAllRenditions bool

	now func() time.Time
}

// NewTranscoder create Transcoder, mirror may be nil
func NewTranscoder(thumbs ThumbnailExtractor, encoder RenditionEncoder, repo repository.VideoRepo, mirror ArtifactMirror, requireAll bool) *Transcoder {
	return &Transcoder{
		thumbs:               thumbs,
		encoder:              encoder,
		repo:                 repo,
		mirror:               mirror,
		RequireAllRenditions: requireAll,
		now:                  time.Now,
	}
}

// stage times fn and logs it with the job's fields
func (t *Transcoder) stage(log *logger.LogInfo, name string, fn func() error) error {
	start := t.now()
	log.Info("stage started", zap.String("stage", name))
	err := fn()
	d := t.now().Sub(start)
	metrics.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		log.Error("stage failed", zap.String("stage", name), zap.Duration("duration", d), zap.Error(err))
		return err
	}
	log.Info("stage finished", zap.String("stage", name), zap.Duration("duration", d))
	return nil
}

// Run Start → Thumbnail → Encode(×N) → Persist → Cleanup
func (t *Transcoder) Run(ctx context.Context, job domain.TranscodeJob) (*domain.Video, error) {
	log := logger.Log.With(
		zap.String("job_id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.String("group_id", job.GroupID),
	)

	err := t.stage(log, StageStart, func() error {
		if _, err := statFile(job.InputPath); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInputMissing, job.InputPath, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = t.stage(log, StageThumbnail, func() error {
		if _, err := t.thumbs.Extract(ctx, job.InputPath, job.WorkDir); err != nil {
			return fmt.Errorf("thumbnail for %s: %w", job.VideoID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var qualities []domain.Quality
	err = t.stage(log, StageEncode, func() error {
		var failures error
		qualities, failures = t.encodeAll(ctx, log, job)
		if failures == nil {
			return nil
		}
		if t.RequireAllRenditions || len(qualities) == 0 {
			return fmt.Errorf("encoding failed: %w", failures)
		}
		log.Warn("persisting partial renditions", zap.Int("succeeded", len(qualities)), zap.Error(failures))
		return nil
	})
	if err != nil {
		return nil, err
	}

	video := &domain.Video{
		ID:          job.VideoID,
		GroupID:     job.GroupID,
		Name:        job.Name,
		Title:       job.Title,
		Description: job.Description,
		Size:        job.Size,
		Qualities:   qualities,
		Thumbnail:   domain.ThumbnailURL(job.GroupID, job.VideoID),
		CreatedAt:   t.now().UTC(),
	}
	err = t.stage(log, StagePersist, func() error {
		if err := t.repo.Create(ctx, video); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// best effort from here on
	_ = t.stage(log, StageCleanup, func() error {
		if err := removeFile(job.InputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", domain.ErrCleanup, err)
		}
		return nil
	})

	if t.mirror != nil {
		_ = t.stage(log, StageMirror, func() error {
			return t.mirror.Mirror(ctx, job.GroupID, job.VideoID, job.WorkDir)
		})
	}

	return video, nil
}

// encodeAll attempts every rendition sequentially and collects each failure
func (t *Transcoder) encodeAll(ctx context.Context, log *logger.LogInfo, job domain.TranscodeJob) ([]domain.Quality, error) {
	var (
		qualities []domain.Quality
		failures  error
	)
	for _, spec := range job.Renditions {
		start := t.now()
		if err := t.encoder.Encode(ctx, job.InputPath, job.WorkDir, spec); err != nil {
			metrics.RenditionsTotal.WithLabelValues(spec.Resolution, "failed").Inc()
			log.Error("rendition failed", zap.String("resolution", spec.Resolution), zap.Error(err))
			failures = multierr.Append(failures, err)
			continue
		}
		metrics.RenditionsTotal.WithLabelValues(spec.Resolution, "succeeded").Inc()
		log.Info("rendition encoded", zap.String("resolution", spec.Resolution), zap.Duration("duration", t.now().Sub(start)))
		qualities = append(qualities, domain.Quality{
			Resolution: spec.Resolution,
			HLS:        domain.PlaylistURL(job.GroupID, job.VideoID, spec.Resolution),
		})
	}
	return qualities, failures
}
