package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/internal/streaming/repository"
	"video_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorRes machine readable error body
type ErrorRes struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// statusOf maps the error taxonomy onto HTTP
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedCodec),
		errors.Is(err, domain.ErrNoVideoStream),
		errors.Is(err, domain.ErrProbe):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRangeNotSatisfiable):
		return fiber.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, repository.ErrStatusUnsupported):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(ErrorRes{Code: domain.Code(err), Error: err.Error()})
}

// ErrorHandler fiber.Config.ErrorHandler, keeps every error body in the same shape
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "InternalError"
		switch {
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			code = domain.Code(domain.ErrValidation)
		case fe.Code == fiber.StatusNotFound:
			code = domain.Code(domain.ErrNotFound)
		case fe.Code < fiber.StatusInternalServerError:
			code = "BadRequest"
		}
		return c.Status(fe.Code).JSON(ErrorRes{Code: code, Error: fe.Message})
	}
	return sendError(c, err)
}

// ConnectCheck check api connect start
// @Summary Check media service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "media service start!"
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("media service start!")
}

// Health liveness probe
// @Summary Health check
// @Tags Shared
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for a service
// @Tags Shared
// @Param service query string true "Service name"
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	service := query.Get("service")
	statusStr := query.Get("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
}
