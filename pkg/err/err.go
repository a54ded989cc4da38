package errprocess

import (
	"errors"
	"fmt"

	"video_stream_service/pkg/logger"
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap logs errMsg with its cause and returns an error that still matches the cause with errors.Is
func Wrap(err error, errMsg string) error {
	wrapped := fmt.Errorf("%s : %w", errMsg, err)
	logger.Log.Error(wrapped.Error())
	return wrapped
}
