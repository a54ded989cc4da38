package domain

import (
	"fmt"
	"regexp"

	"video_stream_service/pkg"
)

var (
	safeID      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	segmentName = regexp.MustCompile(`^[A-Za-z0-9_-]+\.ts$`)
)

// ValidateGroupID rejects anything that could escape the storage root
func ValidateGroupID(groupID string) error {
	if !safeID.MatchString(groupID) {
		return fmt.Errorf("%w: invalid groupId %q", ErrValidation, groupID)
	}
	return nil
}

// ValidateVideoID same pattern as the group id
func ValidateVideoID(videoID string) error {
	if !safeID.MatchString(videoID) {
		return fmt.Errorf("%w: invalid video id %q", ErrValidation, videoID)
	}
	return nil
}

// ValidateResolution only catalog labels
func ValidateResolution(resolution string) error {
	if !pkg.Contains(Resolutions(), resolution) {
		return fmt.Errorf("%w: invalid resolution %q", ErrValidation, resolution)
	}
	return nil
}

// ValidateSegmentName segment-NNNNN.ts and friends, no path separators
func ValidateSegmentName(name string) error {
	if !segmentName.MatchString(name) {
		return fmt.Errorf("%w: invalid segment name %q", ErrValidation, name)
	}
	return nil
}
