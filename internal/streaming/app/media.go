package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"video_stream_service/internal/streaming/domain"
)

// MediaFile a resolved on-disk artifact
type MediaFile struct {
	Path        string
	Size        int64
	ContentType string
}

// MediaLocator maps request parameters onto the artifact layout, validating every part
type MediaLocator struct {
	layout domain.Layout
}

// NewMediaLocator create MediaLocator
func NewMediaLocator(videoDir string) *MediaLocator {
	return &MediaLocator{layout: domain.Layout{Root: videoDir}}
}

func validateVideo(groupID, videoID string) error {
	if err := domain.ValidateGroupID(groupID); err != nil {
		return err
	}
	return domain.ValidateVideoID(videoID)
}

// Playlist videos/<g>/<id>/<res>/hls/playlist.m3u8
func (m *MediaLocator) Playlist(groupID, videoID, resolution string) (*MediaFile, error) {
	if err := validateVideo(groupID, videoID); err != nil {
		return nil, err
	}
	if err := domain.ValidateResolution(resolution); err != nil {
		return nil, err
	}
	return resolve(m.layout.PlaylistPath(groupID, videoID, resolution))
}

// Segment videos/<g>/<id>/<res>/hls/<segment>.ts
func (m *MediaLocator) Segment(groupID, videoID, resolution, segment string) (*MediaFile, error) {
	if err := validateVideo(groupID, videoID); err != nil {
		return nil, err
	}
	if err := domain.ValidateResolution(resolution); err != nil {
		return nil, err
	}
	if err := domain.ValidateSegmentName(segment); err != nil {
		return nil, err
	}
	return resolve(m.layout.SegmentPath(groupID, videoID, resolution, segment))
}

// Thumbnail videos/<g>/<id>/thumbnail.jpg
func (m *MediaLocator) Thumbnail(groupID, videoID string) (*MediaFile, error) {
	if err := validateVideo(groupID, videoID); err != nil {
		return nil, err
	}
	return resolve(m.layout.ThumbnailPath(groupID, videoID))
}

// Original videos/<g>/<id>/original.mp4, NotFound once the job cleaned it up
func (m *MediaLocator) Original(groupID, videoID string) (*MediaFile, error) {
	if err := validateVideo(groupID, videoID); err != nil {
		return nil, err
	}
	return resolve(m.layout.OriginalPath(groupID, videoID))
}

func resolve(path string) (*MediaFile, error) {
	fi, err := statFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && fi.IsDir()) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &MediaFile{Path: path, Size: fi.Size(), ContentType: domain.ContentType(path)}, nil
}

// ByteRange inclusive [Start, End]
type ByteRange struct {
	Start int64
	End   int64
}

// Length bytes covered
func (r ByteRange) Length() int64 { return r.End - r.Start + 1 }

// ContentRange header value for a resource of size bytes
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ParseRange single "bytes=a-b", "bytes=a-" or "bytes=-n" range.
// nil, nil means serve the whole file (no header, malformed or multi-range).
func ParseRange(header string, size int64) (*ByteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil, nil
	}
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, nil
	}

	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n < 0 {
			return nil, nil
		}
		if n == 0 || size == 0 {
			return nil, domain.ErrRangeNotSatisfiable
		}
		if n > size {
			n = size
		}
		return &ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}
	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return nil, nil
		}
	}
	if start >= size {
		return nil, domain.ErrRangeNotSatisfiable
	}
	if end >= size {
		end = size - 1
	}
	return &ByteRange{Start: start, End: end}, nil
}
