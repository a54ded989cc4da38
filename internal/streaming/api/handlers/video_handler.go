package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"video_stream_service/internal/streaming/app"
	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"
	"video_stream_service/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VideoHandler 定義影片上傳與播放處理器
type VideoHandler struct {
	usecase        app.StreamingUseCase
	media          *app.MediaLocator
	maxUploadBytes int64
}

// NewVideoHandler create VideoHandler
func NewVideoHandler(uc app.StreamingUseCase, media *app.MediaLocator, maxUploadBytes int64) *VideoHandler {
	return &VideoHandler{usecase: uc, media: media, maxUploadBytes: maxUploadBytes}
}

// UploadVideo godoc
// @Summary Upload a video
// @Description Stages the file, probes it and enqueues a transcode job
// @Tags Video
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file"
// @Param title formData string false "Video title"
// @Param description formData string false "Video description"
// @Param groupId formData string false "Group id, defaults to default"
// @Success 200 {object} domain.UploadVideoRes
// @Failure 400 {object} ErrorRes
// @Failure 422 {object} ErrorRes "Probe failed or unsupported codec"
// @Failure 500 {object} ErrorRes
// @Router /upload [post]
func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(domain.Code(domain.ErrValidation)).Inc()
		return sendError(c, fmt.Errorf("%w: no file uploaded", domain.ErrValidation))
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		metrics.UploadsTotal.WithLabelValues(domain.Code(domain.ErrValidation)).Inc()
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorRes{
			Code:  domain.Code(domain.ErrValidation),
			Error: fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return sendError(c, err)
	}
	defer file.Close()

	groupID := c.FormValue("groupId", domain.DefaultGroupID)
	logger.Log.Info("upload received", zap.String("file", fileHeader.Filename), zap.String("group_id", groupID))

	res, err := h.usecase.UploadVideo(c.UserContext(), domain.UploadVideoReq{
		GroupID:     groupID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		FileName:    fileHeader.Filename,
		File:        file,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(domain.Code(err)).Inc()
		return sendError(c, err)
	}
	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	return c.JSON(res)
}

// GetMeta godoc
// @Summary Get video metadata
// @Tags Video
// @Produce json
// @Param groupId path string true "Group id"
// @Param id path string true "Video id"
// @Success 200 {object} domain.Video
// @Failure 400 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /video/{groupId}/{id}/meta [get]
func (h *VideoHandler) GetMeta(c *fiber.Ctx) error {
	v, err := h.usecase.GetVideo(c.UserContext(), c.Params("groupId"), c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(v)
}

// ListGroupVideos godoc
// @Summary List videos of a group
// @Tags Video
// @Produce json
// @Param groupId path string true "Group id"
// @Success 200 {array} domain.Video
// @Failure 400 {object} ErrorRes
// @Router /videos/{groupId} [get]
func (h *VideoHandler) ListGroupVideos(c *fiber.Ctx) error {
	videos, err := h.usecase.ListGroupVideos(c.UserContext(), c.Params("groupId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(videos)
}

// ListVideos godoc
// @Summary List all videos
// @Tags Video
// @Produce json
// @Success 200 {array} domain.Video
// @Router /videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	videos, err := h.usecase.ListVideos(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(videos)
}

// ListGroups godoc
// @Summary List known group ids
// @Tags Video
// @Produce json
// @Success 200 {array} string
// @Router /groups [get]
func (h *VideoHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.usecase.ListGroups(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(groups)
}

// Playlist godoc
// @Summary HLS playlist of one rendition
// @Tags Playback
// @Produce application/vnd.apple.mpegurl
// @Param groupId path string true "Group id"
// @Param id path string true "Video id"
// @Param resolution path string true "1080p, 720p or 480p"
// @Param Range header string false "bytes=start-end"
// @Success 200 {file} file
// @Success 206 {file} file
// @Failure 400 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /video/{groupId}/{id}/{resolution}/hls/playlist.m3u8 [get]
func (h *VideoHandler) Playlist(c *fiber.Ctx) error {
	f, err := h.media.Playlist(c.Params("groupId"), c.Params("id"), c.Params("resolution"))
	return h.serve(c, "playlist", f, err, true)
}

// Segment godoc
// @Summary HLS transport stream segment
// @Tags Playback
// @Produce video/mp2t
// @Param groupId path string true "Group id"
// @Param id path string true "Video id"
// @Param resolution path string true "1080p, 720p or 480p"
// @Param segment path string true "segment-NNNNN.ts"
// @Param Range header string false "bytes=start-end"
// @Success 200 {file} file
// @Success 206 {file} file
// @Failure 400 {object} ErrorRes
// @Failure 404 {object} ErrorRes
// @Router /video/{groupId}/{id}/{resolution}/hls/{segment} [get]
func (h *VideoHandler) Segment(c *fiber.Ctx) error {
	f, err := h.media.Segment(c.Params("groupId"), c.Params("id"), c.Params("resolution"), c.Params("segment"))
	return h.serve(c, "segment", f, err, true)
}

// Original godoc
// @Summary Original upload, 404 once the job finished
// @Tags Playback
// @Produce video/mp4
// @Param groupId path string true "Group id"
// @Param id path string true "Video id"
// @Param Range header string false "bytes=start-end"
// @Success 200 {file} file
// @Success 206 {file} file
// @Failure 404 {object} ErrorRes
// @Router /video/{groupId}/{id}/original.mp4 [get]
func (h *VideoHandler) Original(c *fiber.Ctx) error {
	f, err := h.media.Original(c.Params("groupId"), c.Params("id"))
	return h.serve(c, "original", f, err, true)
}

// Thumbnail godoc
// @Summary Video thumbnail
// @Tags Playback
// @Produce image/jpeg
// @Param groupId path string true "Group id"
// @Param id path string true "Video id"
// @Success 200 {file} file
// @Failure 404 {object} ErrorRes
// @Router /video/{groupId}/{id}/thumbnail.jpg [get]
func (h *VideoHandler) Thumbnail(c *fiber.Ctx) error {
	f, err := h.media.Thumbnail(c.Params("groupId"), c.Params("id"))
	return h.serve(c, "thumbnail", f, err, false)
}

// sectionFile closes the file once fasthttp finished streaming the section
type sectionFile struct {
	*io.SectionReader
	f *os.File
}

func (s *sectionFile) Close() error { return s.f.Close() }

func (h *VideoHandler) serve(c *fiber.Ctx, kind string, mf *app.MediaFile, err error, ranged bool) error {
	if err != nil {
		metrics.MediaRequestsTotal.WithLabelValues(kind, strconv.Itoa(statusOf(err))).Inc()
		if errors.Is(err, domain.ErrNotFound) && kind != "original" {
			logger.Log.Warn("media not found", zap.String("kind", kind), zap.String("path", c.Path()))
		}
		return sendError(c, err)
	}

	var br *app.ByteRange
	if ranged {
		c.Set(fiber.HeaderAcceptRanges, "bytes")
		br, err = app.ParseRange(c.Get(fiber.HeaderRange), mf.Size)
		if err != nil {
			metrics.MediaRequestsTotal.WithLabelValues(kind, strconv.Itoa(fiber.StatusRequestedRangeNotSatisfiable)).Inc()
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", mf.Size))
			return sendError(c, err)
		}
	}

	f, err := os.Open(mf.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%s: %w", mf.Path, domain.ErrNotFound)
		}
		return sendError(c, err)
	}

	c.Set(fiber.HeaderContentType, mf.ContentType)
	start, length, status := int64(0), mf.Size, fiber.StatusOK
	if br != nil {
		start, length, status = br.Start, br.Length(), fiber.StatusPartialContent
		c.Set(fiber.HeaderContentRange, br.ContentRange(mf.Size))
	}
	metrics.MediaRequestsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()

	c.Status(status)
	return c.SendStream(&sectionFile{SectionReader: io.NewSectionReader(f, start, length), f: f}, int(length))
}
