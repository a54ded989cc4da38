package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "video_stream_service/cmd/media_service/docs" // 引入 Swagger 文档
	"video_stream_service/internal/streaming/api/handlers"
	"video_stream_service/internal/streaming/api/router"
	"video_stream_service/internal/streaming/app"
	"video_stream_service/internal/streaming/repository"
	"video_stream_service/pkg/config"
	"video_stream_service/pkg/exec"
	"video_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MediaService, config.EnvConfig.MediaServiceLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Streaming](config.EnvConfig.MediaService, config.EnvConfig.MediaServiceYAMLPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. metadata store
	videoRepo, closeRepo, err := repository.OpenVideoRepo(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Unable to open video store", zap.String("driver", cfg.Metadata.Driver), zap.Error(err))
	}
	defer closeRepo()

	// 2. job queue, only the producer half is used here
	queue, err := repository.OpenJobQueue(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Unable to open job queue", zap.String("backend", cfg.Queue.Backend), zap.Error(err))
	}
	defer queue.Close()

	prober := app.NewProber(exec.NewCommandRunner(), cfg.Transcode.FFprobePath)
	usecase := app.NewStreamingUseCase(prober, videoRepo, queue, cfg.Storage.VideoDir, cfg.Storage.UploadDir)

	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20
	videoHandler := handlers.NewVideoHandler(usecase, app.NewMediaLocator(cfg.Storage.VideoDir), maxUpload)
	jobHandler := handlers.NewJobHandler(usecase)

	// 3. 建立 Fiber 應用
	r := fiber.New(fiber.Config{
		AppName:               config.EnvConfig.MediaService,
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             int(maxUpload) + 1<<20, // multipart overhead, the handler enforces the file size
		StreamRequestBody:     true,
		DisableStartupMessage: config.IsProduction(),
	})
	r.Use(recover.New())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Range",
		ExposeHeaders: "Content-Length, Content-Range, Accept-Ranges",
	}))

	// access log 寫入檔案
	if err := os.MkdirAll(config.EnvConfig.MediaServiceLogPath, 0755); err != nil {
		logger.Log.Fatal("Failed to create log dir", zap.Error(err))
	}
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MediaServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Log.Fatal("Failed to open access log", zap.Error(err))
	}
	defer file.Close()
	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, videoHandler, jobHandler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := cfg.IP + ":" + cfg.Port
		logger.Log.Info("media service listening", zap.String("addr", addr))
		return r.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down media service")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return r.ShutdownWithContext(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("media service stopped", zap.Error(err))
	}
}
