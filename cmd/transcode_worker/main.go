package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_stream_service/internal/streaming/app"
	"video_stream_service/internal/streaming/domain"
	"video_stream_service/internal/streaming/repository"
	"video_stream_service/pkg/config"
	"video_stream_service/pkg/database"
	"video_stream_service/pkg/exec"
	"video_stream_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.TranscodeWorker, config.EnvConfig.TranscodeWorkerLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Streaming](config.EnvConfig.TranscodeWorker, config.EnvConfig.TranscodeWorkerYAMLPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 連線 metadata store
	videoRepo, closeRepo, err := repository.OpenVideoRepo(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Unable to open video store", zap.String("driver", cfg.Metadata.Driver), zap.Error(err))
	}
	defer closeRepo()

	// 2. job queue, jobs left active by a worker whose lease expired go back to waiting
	queue, err := repository.OpenJobQueue(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Unable to open job queue", zap.String("backend", cfg.Queue.Backend), zap.Error(err))
	}
	defer queue.Close()

	recovered, err := queue.RecoverStale(ctx)
	if err != nil {
		logger.Log.Fatal("Unable to recover stale jobs", zap.Error(err))
	}
	if recovered > 0 {
		logger.Log.Warn("requeued stale jobs", zap.Int("count", recovered))
	}

	// 3. job events, kafka when enabled
	events, err := repository.OpenJobEventPublisher(cfg)
	if err != nil {
		logger.Log.Fatal("Unable to open job event publisher", zap.Error(err))
	}
	defer events.Close()

	// 4. 初始化 MinIO mirror (optional)
	var mirror app.ArtifactMirror
	minioMirror, err := repository.OpenArtifactMirror(cfg, domain.ContentType)
	if err != nil {
		logger.Log.Fatal("Unable to connect to minio after retries", zap.Error(err))
	}
	if minioMirror != nil {
		mirror = minioMirror
	}

	runner := exec.NewCommandRunner()
	transcoder := app.NewTranscoder(
		app.NewFrameExtractor(runner, cfg.Transcode.FFmpegPath),
		app.NewHLSEncoder(runner, cfg.Transcode.FFmpegPath),
		videoRepo,
		mirror,
		*cfg.Transcode.RequireAllRenditions,
	)
	supervisor := app.NewSupervisor(transcoder, app.RetryPolicy{
		MaxAttempts:     cfg.Queue.MaxAttempts,
		InitialInterval: time.Duration(cfg.Queue.InitialBackoff) * time.Millisecond,
		MaxInterval:     time.Duration(cfg.Queue.MaxBackoff) * time.Millisecond,
	})
	pool := app.NewPool(queue, supervisor, events, cfg.Queue.Workers)

	health, err := database.NewHealthServer(cfg.IP+":"+cfg.Transcode.HealthPort, cfg.Queue.Name)
	if err != nil {
		logger.Log.Fatal("Failed to listen health port", zap.String("port", cfg.Transcode.HealthPort), zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(health.Serve)
	g.Go(func() error {
		// a crashed peer's lease may still be live at startup
		ticker := time.NewTicker(repository.DefaultWorkerLease)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := queue.RecoverStale(gctx)
				if err != nil && gctx.Err() == nil {
					logger.Log.Warn("stale job recovery failed", zap.Error(err))
				}
				if n > 0 {
					logger.Log.Warn("requeued stale jobs", zap.Int("count", n))
				}
			}
		}
	})
	g.Go(func() error {
		pool.Start(gctx)
		health.SetServing(cfg.Queue.Name, true)
		logger.Log.Info("transcode worker started",
			zap.String("queue", cfg.Queue.Name),
			zap.String("backend", cfg.Queue.Backend),
			zap.Int("workers", pool.Workers()),
		)

		<-gctx.Done()
		logger.Log.Info("shutting down transcode worker, waiting for in-flight jobs")
		health.SetServing(cfg.Queue.Name, false)
		pool.Stop()
		health.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("transcode worker stopped", zap.Error(err))
	}
}
