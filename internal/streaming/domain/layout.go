package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// artifact file names, the path scheme is also the serving contract
const (
	OriginalFile  = "original.mp4"
	ThumbnailFile = "thumbnail.jpg"
	PlaylistFile  = "playlist.m3u8"
	SegmentExt    = ".ts"
	SegmentFormat = "segment-%05d.ts"
	HLSDir        = "hls"
)

// Layout resolves videos/<group>/<id>/... under a storage root
type Layout struct {
	Root string
}

// VideoDir videos/<group>/<id>
func (l Layout) VideoDir(groupID, videoID string) string {
	return filepath.Join(l.Root, groupID, videoID)
}

// OriginalPath videos/<group>/<id>/original.mp4
func (l Layout) OriginalPath(groupID, videoID string) string {
	return filepath.Join(l.VideoDir(groupID, videoID), OriginalFile)
}

// ThumbnailPath videos/<group>/<id>/thumbnail.jpg
func (l Layout) ThumbnailPath(groupID, videoID string) string {
	return filepath.Join(l.VideoDir(groupID, videoID), ThumbnailFile)
}

// RenditionDir videos/<group>/<id>/<res>/hls
func (l Layout) RenditionDir(groupID, videoID, resolution string) string {
	return filepath.Join(l.VideoDir(groupID, videoID), resolution, HLSDir)
}

// PlaylistPath videos/<group>/<id>/<res>/hls/playlist.m3u8
func (l Layout) PlaylistPath(groupID, videoID, resolution string) string {
	return filepath.Join(l.RenditionDir(groupID, videoID, resolution), PlaylistFile)
}

// SegmentPath videos/<group>/<id>/<res>/hls/<segment>
func (l Layout) SegmentPath(groupID, videoID, resolution, segment string) string {
	return filepath.Join(l.RenditionDir(groupID, videoID, resolution), segment)
}

// PlaylistURL public url stored in the record
func PlaylistURL(groupID, videoID, resolution string) string {
	return fmt.Sprintf("/video/%s/%s/%s/%s/%s", groupID, videoID, resolution, HLSDir, PlaylistFile)
}

// ThumbnailURL public url stored in the record
func ThumbnailURL(groupID, videoID string) string {
	return fmt.Sprintf("/video/%s/%s/%s", groupID, videoID, ThumbnailFile)
}

// ContentType mime type served for an artifact
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case SegmentExt:
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
