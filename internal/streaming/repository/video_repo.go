package repository

import (
	"context"
	"errors"
	"fmt"

	"video_stream_service/internal/streaming/domain"

	"gorm.io/gorm"
)

// VideoRepo definition the write-once video metadata store
type VideoRepo interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, video *domain.Video) error
	FindByID(ctx context.Context, groupID, id string) (*domain.Video, error)
	FindByGroup(ctx context.Context, groupID string) ([]domain.Video, error)
	FindAll(ctx context.Context) ([]domain.Video, error)
	// ListGroups distinct group ids, sorted
	ListGroups(ctx context.Context) ([]string, error)
}

// videoRepo gorm backed VideoRepo
type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo on postgres
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

// Migrate AutoMigrate 只會新增欄位或表，不會刪除既有欄位
func (r *videoRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&domain.Video{})
}

func (r *videoRepo) Create(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepo) FindByID(ctx context.Context, groupID, id string) (*domain.Video, error) {
	var v domain.Video
	err := r.db.WithContext(ctx).Where("id = ? AND group_id = ?", id, groupID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("video %s/%s: %w", groupID, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) FindByGroup(ctx context.Context, groupID string) ([]domain.Video, error) {
	videos := []domain.Video{}
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) FindAll(ctx context.Context) ([]domain.Video, error) {
	videos := []domain.Video{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) ListGroups(ctx context.Context) ([]string, error) {
	groups := []string{}
	err := r.db.WithContext(ctx).Model(&domain.Video{}).Distinct("group_id").Order("group_id").Pluck("group_id", &groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
