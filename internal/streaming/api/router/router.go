package router

import (
	"video_stream_service/internal/streaming/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册影片相關的路由
// @title Video Stream Service API
// @version 1.0
// @description Upload, transcode and HLS playback
// @host localhost:4000
// @BasePath /
func RegisterRoutes(app *fiber.App, videoHandler *handlers.VideoHandler, jobHandler *handlers.JobHandler) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Get("/health", handlers.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Post("/debug", handlers.DebugLogFlag)

	app.Post("/upload", videoHandler.UploadVideo)
	app.Get("/videos", videoHandler.ListVideos)
	app.Get("/videos/:groupId", videoHandler.ListGroupVideos)
	app.Get("/groups", videoHandler.ListGroups)

	// fixed file names before the :resolution routes
	app.Get("/video/:groupId/:id/meta", videoHandler.GetMeta)
	app.Get("/video/:groupId/:id/thumbnail.jpg", videoHandler.Thumbnail)
	app.Get("/video/:groupId/:id/original.mp4", videoHandler.Original)
	app.Get("/video/:groupId/:id/:resolution/hls/playlist.m3u8", videoHandler.Playlist)
	app.Get("/video/:groupId/:id/:resolution/hls/:segment", videoHandler.Segment)

	app.Get("/jobs/:jobId", jobHandler.GetJob)
	app.Use("/jobs/:jobId/ws", handlers.UpgradeJobWS)
	app.Get("/jobs/:jobId/ws", websocket.New(jobHandler.WatchJob))
}
