package domain

import (
	"io"
	"time"
)

// DefaultGroupID used when the upload omits groupId
const DefaultGroupID = "default"

// Quality one completed rendition of a video
type Quality struct {
	Resolution string `json:"resolution" bson:"resolution"`
	HLS        string `json:"hls" bson:"hls"`
}

// Video 定義影片模型, written once after every rendition and the thumbnail exist
type Video struct {
	ID           string    `json:"id" bson:"id" gorm:"primaryKey;size:64"`
	GroupID      string    `json:"groupId" bson:"group_id" gorm:"index;size:128"`
	Name         string    `json:"name" bson:"name"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	Size         int64     `json:"size" bson:"size"`
	Qualities    []Quality `json:"qualities" bson:"qualities" gorm:"serializer:json"`
	Thumbnail    string    `json:"thumbnail" bson:"thumbnail"`
	ViewCount    int64     `json:"viewCount" bson:"view_count"`
	CommentCount int64     `json:"commentCount" bson:"comment_count"`
	LikeCount    int64     `json:"likeCount" bson:"like_count"`
	ShareCount   int64     `json:"shareCount" bson:"share_count"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	GroupID     string
	Title       string
	Description string
	FileName    string
	File        io.Reader
}

// UploadVideoRes usecase upload video response
type UploadVideoRes struct {
	Message    string   `json:"message"`
	JobID      string   `json:"jobId"`
	VideoID    string   `json:"videoId"`
	GroupID    string   `json:"groupId"`
	Qualities  []string `json:"qualities"`
	StatusPath string   `json:"statusUrl"`
}
