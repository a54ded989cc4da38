package domain

import (
	"errors"
	"fmt"
)

// error taxonomy, wrapped with fmt.Errorf and matched with errors.Is
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrProbe               = errors.New("probe error")
	ErrUnsupportedCodec    = errors.New("unsupported codec")
	ErrNoVideoStream       = errors.New("no video stream")
	ErrInputMissing        = errors.New("input missing")
	ErrEncode              = errors.New("encode error")
	ErrThumbnailExtraction = errors.New("thumbnail extraction failed")
	ErrPersistence         = errors.New("persistence error")
	ErrCleanup             = errors.New("cleanup error")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// EncodeError carries the encoder diagnostic for one rendition
type EncodeError struct {
	Resolution string
	Output     string
	Err        error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v: %s", e.Resolution, e.Err, e.Output)
}

// Unwrap lets errors.Is(err, ErrEncode) match
func (e *EncodeError) Unwrap() []error {
	return []error{ErrEncode, e.Err}
}

// Code machine readable code for an error chain
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrUnsupportedCodec):
		return "UnsupportedCodec"
	case errors.Is(err, ErrNoVideoStream):
		return "NoVideoStream"
	case errors.Is(err, ErrProbe):
		return "ProbeError"
	case errors.Is(err, ErrInputMissing):
		return "InputMissing"
	case errors.Is(err, ErrThumbnailExtraction):
		return "ThumbnailExtractionFailed"
	case errors.Is(err, ErrEncode):
		return "EncodeError"
	case errors.Is(err, ErrPersistence):
		return "PersistenceError"
	case errors.Is(err, ErrCleanup):
		return "CleanupError"
	case errors.Is(err, ErrRangeNotSatisfiable):
		return "RangeNotSatisfiable"
	default:
		return "InternalError"
	}
}
