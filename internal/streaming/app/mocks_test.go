package app

import (
	"context"
	"sync"

	"video_stream_service/internal/streaming/domain"

	"github.com/stretchr/testify/mock"
)

// MockRunner 模擬外部程式
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	a := m.Called(name, args)
	out, _ := a.Get(0).([]byte)
	return out, a.Error(1)
}

// MockVideoRepo 是 VideoRepo 的 Mock
type MockVideoRepo struct {
	mock.Mock
}

func (m *MockVideoRepo) Migrate(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	return m.Called(video).Error(0)
}

func (m *MockVideoRepo) FindByID(ctx context.Context, groupID, id string) (*domain.Video, error) {
	a := m.Called(groupID, id)
	v, _ := a.Get(0).(*domain.Video)
	return v, a.Error(1)
}

func (m *MockVideoRepo) FindByGroup(ctx context.Context, groupID string) ([]domain.Video, error) {
	a := m.Called(groupID)
	v, _ := a.Get(0).([]domain.Video)
	return v, a.Error(1)
}

func (m *MockVideoRepo) FindAll(ctx context.Context) ([]domain.Video, error) {
	a := m.Called()
	v, _ := a.Get(0).([]domain.Video)
	return v, a.Error(1)
}

func (m *MockVideoRepo) ListGroups(ctx context.Context) ([]string, error) {
	a := m.Called()
	v, _ := a.Get(0).([]string)
	return v, a.Error(1)
}

// MockJobQueue 是 JobQueue 的 Mock
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job domain.TranscodeJob) error {
	return m.Called(job).Error(0)
}

func (m *MockJobQueue) Dequeue(ctx context.Context) (domain.JobDelivery, error) {
	a := m.Called()
	d, _ := a.Get(0).(domain.JobDelivery)
	return d, a.Error(1)
}

func (m *MockJobQueue) Status(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	a := m.Called(jobID)
	s, _ := a.Get(0).(*domain.JobStatus)
	return s, a.Error(1)
}

func (m *MockJobQueue) RecoverStale(ctx context.Context) (int, error) {
	a := m.Called()
	return a.Int(0), a.Error(1)
}

func (m *MockJobQueue) Close() error {
	return m.Called().Error(0)
}

// MockProber 是 QualityProber 的 Mock
type MockProber struct {
	mock.Mock
}

func (m *MockProber) AdmissibleRenditions(ctx context.Context, path string) ([]domain.RenditionSpec, error) {
	a := m.Called(path)
	r, _ := a.Get(0).([]domain.RenditionSpec)
	return r, a.Error(1)
}

// MockThumbs 是 ThumbnailExtractor 的 Mock
type MockThumbs struct {
	mock.Mock
}

func (m *MockThumbs) Extract(ctx context.Context, input, outDir string) (string, error) {
	a := m.Called(input, outDir)
	return a.String(0), a.Error(1)
}

// MockEncoder 是 RenditionEncoder 的 Mock
type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) Encode(ctx context.Context, input, outputRoot string, spec domain.RenditionSpec) error {
	return m.Called(input, outputRoot, spec.Resolution).Error(0)
}

// MockMirror 是 ArtifactMirror 的 Mock
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Mirror(ctx context.Context, groupID, videoID, dir string) error {
	return m.Called(groupID, videoID, dir).Error(0)
}

// MockJobRunner 是 JobRunner 的 Mock
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) Run(ctx context.Context, job domain.TranscodeJob) (*domain.Video, error) {
	a := m.Called(job.ID)
	v, _ := a.Get(0).(*domain.Video)
	return v, a.Error(1)
}

// MockEvents 是 JobEventPublisher 的 Mock
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(ctx context.Context, event domain.JobEvent) error {
	return m.Called(event.Type, event.JobID).Error(0)
}

func (m *MockEvents) Close() error {
	return m.Called().Error(0)
}

// fakeDelivery records how a job was settled
type fakeDelivery struct {
	job domain.TranscodeJob

	mu        sync.Mutex
	completed bool
	failed    error
}

func (f *fakeDelivery) Job() domain.TranscodeJob { return f.job }

func (f *fakeDelivery) Complete() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	return nil
}

func (f *fakeDelivery) Fail(cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = cause
	return nil
}

func (f *fakeDelivery) state() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed, f.failed
}
