package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func probeJSON(codec string, width, height int, bitRate string) []byte {
	return []byte(`{"streams":[
		{"codec_type":"audio","codec_name":"aac"},
		{"codec_type":"video","codec_name":"` + codec + `","width":` + strconv.Itoa(width) + `,"height":` + strconv.Itoa(height) + `,"bit_rate":"` + bitRate + `"}
	]}`)
}

func stagedFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.mp4")
	require.NoError(t, os.WriteFile(p, []byte("data"), 0644))
	return p
}

func TestProberAdmissibleRenditions(t *testing.T) {
	logger.SetNewNop()

	tests := []struct {
		name    string
		out     []byte
		runErr  error
		want    []string
		wantErr error
	}{
		{name: "full hd", out: probeJSON("h264", 1920, 1080, "4000000"), want: []string{"1080p", "720p", "480p"}},
		{name: "small falls back", out: probeJSON("h264", 640, 360, "900000"), want: []string{"480p"}},
		{name: "unknown bitrate", out: probeJSON("h264", 1280, 720, ""), want: []string{"720p", "480p"}},
		{name: "sub kbps bitrate is known", out: probeJSON("h264", 1920, 1080, "500"), want: []string{"480p"}},
		{name: "unsupported codec", out: probeJSON("hevc", 1920, 1080, "4000000"), wantErr: domain.ErrUnsupportedCodec},
		{name: "audio only", out: []byte(`{"streams":[{"codec_type":"audio","codec_name":"aac"}]}`), wantErr: domain.ErrNoVideoStream},
		{name: "ffprobe fails", out: []byte("Invalid data found"), runErr: errors.New("exit status 1"), wantErr: domain.ErrProbe},
		{name: "garbage output", out: []byte("not json"), wantErr: domain.ErrProbe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := stagedFile(t)
			runner := new(MockRunner)
			runner.On("Run", "ffprobe", mock.Anything).Return(tt.out, tt.runErr)

			got, err := NewProber(runner, "ffprobe").AdmissibleRenditions(context.Background(), path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resolutionsOf(got))
		})
	}
}

func TestProberMissingFile(t *testing.T) {
	logger.SetNewNop()
	runner := new(MockRunner)

	_, err := NewProber(runner, "ffprobe").AdmissibleRenditions(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}
