package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/internal/streaming/repository"
	errprocess "video_stream_service/pkg/err"
	"video_stream_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StreamingUseCase 這裡封裝了對外提供的應用服務
type StreamingUseCase interface {
	UploadVideo(ctx context.Context, up domain.UploadVideoReq) (*domain.UploadVideoRes, error)
	GetVideo(ctx context.Context, groupID, videoID string) (*domain.Video, error)
	ListGroupVideos(ctx context.Context, groupID string) ([]domain.Video, error)
	ListVideos(ctx context.Context) ([]domain.Video, error)
	ListGroups(ctx context.Context) ([]string, error)
	GetJob(ctx context.Context, jobID string) (*domain.JobStatus, error)
}

type streamingUseCase struct {
	prober    QualityProber
	videoRepo repository.VideoRepo
	queue     repository.JobQueue
	layout    domain.Layout
	uploadDir string
}

// NewStreamingUseCase create StreamingUseCase
func NewStreamingUseCase(prober QualityProber,
	repo repository.VideoRepo,
	queue repository.JobQueue,
	videoDir, uploadDir string,
) StreamingUseCase {
	return &streamingUseCase{
		prober:    prober,
		videoRepo: repo,
		queue:     queue,
		layout:    domain.Layout{Root: videoDir},
		uploadDir: uploadDir,
	}
}

// 讓 test 可以替換檔案系統操作
var (
	createFile = func(name string) (*os.File, error) {
		return os.Create(name)
	}

	copyFile = func(dst *os.File, src io.Reader) (written int64, err error) {
		return io.Copy(dst, src)
	}

	moveFile = os.Rename

	removeAll = os.RemoveAll

	newID = func() string {
		return uuid.NewString()
	}
)

// UploadVideo stage → probe → move into videos/<group>/<id> → enqueue.
// Probe failures return before the video directory exists.
func (s *streamingUseCase) UploadVideo(ctx context.Context, up domain.UploadVideoReq) (*domain.UploadVideoRes, error) {
	if up.GroupID == "" {
		up.GroupID = domain.DefaultGroupID
	}
	if err := domain.ValidateGroupID(up.GroupID); err != nil {
		return nil, err
	}
	if up.File == nil {
		return nil, fmt.Errorf("%w: no file uploaded", domain.ErrValidation)
	}
	name := filepath.Base(up.FileName)

	if err := createDir(s.uploadDir); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("fileName[%s] 建立暫存目錄失敗 : %v", name, err))
	}
	stagedPath := filepath.Join(s.uploadDir, newID()+"-"+name)
	size, err := s.stage(stagedPath, up.File)
	if err != nil {
		removeFile(stagedPath)
		return nil, errprocess.Set(fmt.Sprintf("fileName[%s] 儲存檔案失敗 : %v", name, err))
	}

	renditions, err := s.prober.AdmissibleRenditions(ctx, stagedPath)
	if err != nil {
		removeFile(stagedPath)
		return nil, errprocess.Wrap(err, fmt.Sprintf("fileName[%s] 影片檢查失敗", name))
	}

	videoID := newID()
	videoDir := s.layout.VideoDir(up.GroupID, videoID)
	if err := createDir(videoDir); err != nil {
		removeFile(stagedPath)
		return nil, errprocess.Set(fmt.Sprintf("video[%s] 建立影片目錄失敗 : %v", videoID, err))
	}
	originalPath := s.layout.OriginalPath(up.GroupID, videoID)
	if err := moveFile(stagedPath, originalPath); err != nil {
		removeFile(stagedPath)
		removeAll(videoDir)
		return nil, errprocess.Set(fmt.Sprintf("video[%s] 搬移原始檔失敗 : %v", videoID, err))
	}

	job := domain.TranscodeJob{
		ID:          newID(),
		VideoID:     videoID,
		GroupID:     up.GroupID,
		InputPath:   originalPath,
		WorkDir:     videoDir,
		Name:        name,
		Title:       up.Title,
		Description: up.Description,
		Size:        size,
		Renditions:  renditions,
		EnqueuedAt:  time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		removeAll(videoDir)
		return nil, errprocess.Set(fmt.Sprintf("video[%s] 發布轉碼工作失敗 : %v", videoID, err))
	}

	logger.Log.Info("video accepted",
		zap.String("job_id", job.ID),
		zap.String("video_id", videoID),
		zap.String("group_id", up.GroupID),
		zap.Int64("size", size),
		zap.Strings("renditions", resolutionsOf(renditions)),
	)
	return &domain.UploadVideoRes{
		Message:    "Video processing started",
		JobID:      job.ID,
		VideoID:    videoID,
		GroupID:    up.GroupID,
		Qualities:  resolutionsOf(renditions),
		StatusPath: "/jobs/" + job.ID,
	}, nil
}

func (s *streamingUseCase) stage(path string, src io.Reader) (int64, error) {
	f, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return copyFile(f, src)
}

func (s *streamingUseCase) GetVideo(ctx context.Context, groupID, videoID string) (*domain.Video, error) {
	if err := domain.ValidateGroupID(groupID); err != nil {
		return nil, err
	}
	if err := domain.ValidateVideoID(videoID); err != nil {
		return nil, err
	}
	v, err := s.videoRepo.FindByID(ctx, groupID, videoID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, errprocess.Wrap(err, fmt.Sprintf("video[%s/%s] 查詢失敗", groupID, videoID))
	}
	return v, err
}

func (s *streamingUseCase) ListGroupVideos(ctx context.Context, groupID string) ([]domain.Video, error) {
	if err := domain.ValidateGroupID(groupID); err != nil {
		return nil, err
	}
	videos, err := s.videoRepo.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, errprocess.Wrap(err, fmt.Sprintf("group[%s] 查詢影片失敗", groupID))
	}
	return videos, nil
}

func (s *streamingUseCase) ListVideos(ctx context.Context) ([]domain.Video, error) {
	videos, err := s.videoRepo.FindAll(ctx)
	if err != nil {
		return nil, errprocess.Wrap(err, "查詢全部影片失敗")
	}
	return videos, nil
}

func (s *streamingUseCase) ListGroups(ctx context.Context) ([]string, error) {
	groups, err := s.videoRepo.ListGroups(ctx)
	if err != nil {
		return nil, errprocess.Wrap(err, "查詢群組失敗")
	}
	return groups, nil
}

func (s *streamingUseCase) GetJob(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	if err := domain.ValidateVideoID(jobID); err != nil {
		return nil, err
	}
	return s.queue.Status(ctx, jobID)
}
