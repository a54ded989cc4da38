package handlers

import (
	"context"
	"time"

	"video_stream_service/internal/streaming/app"
	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// JobHandler read-only view of queue state
type JobHandler struct {
	usecase app.StreamingUseCase
	// PollInterval how often the websocket re-reads the job state
	PollInterval time.Duration
}

// NewJobHandler create JobHandler
func NewJobHandler(uc app.StreamingUseCase) *JobHandler {
	return &JobHandler{usecase: uc, PollInterval: time.Second}
}

// GetJob godoc
// @Summary Transcode job status
// @Tags Job
// @Produce json
// @Param jobId path string true "Job id"
// @Success 200 {object} domain.JobStatus
// @Failure 404 {object} ErrorRes
// @Failure 501 {object} ErrorRes "Queue backend keeps no job state"
// @Router /jobs/{jobId} [get]
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	st, err := h.usecase.GetJob(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(st)
}

// UpgradeJobWS only websocket upgrades reach WatchJob
func UpgradeJobWS(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WatchJob pushes the job state on every change until it is terminal
func (h *JobHandler) WatchJob(conn *websocket.Conn) {
	jobID := conn.Params("jobId")
	log := logger.Log.With(zap.String("job_id", jobID))
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// client 關閉連線時 ReadMessage 會回傳錯誤
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()

	var last *domain.JobStatus
	for {
		st, err := h.usecase.GetJob(ctx, jobID)
		if err != nil {
			_ = conn.WriteJSON(ErrorRes{Code: domain.Code(err), Error: err.Error()})
			return
		}
		if last == nil || st.State != last.State || st.Attempts != last.Attempts {
			if err := conn.WriteJSON(st); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
			last = st
		}
		if st.State.Terminal() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
