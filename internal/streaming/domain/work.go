package domain

import "time"

// JobState queue-owned lifecycle state of a transcode job
type JobState string

const (
	//JobWaiting enqueued, not yet picked by a worker
	JobWaiting JobState = "waiting"
	//JobActive a worker is running it
	JobActive JobState = "active"
	//JobCompleted metadata persisted
	JobCompleted JobState = "completed"
	//JobFailed diagnostic recorded, original kept
	JobFailed JobState = "failed"
)

// Terminal reports whether no further transition happens
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// TranscodeJob 定義轉碼工作訊息, renditions are computed once at enqueue time
type TranscodeJob struct {
	ID          string          `json:"id"`
	VideoID     string          `json:"videoId"`
	GroupID     string          `json:"groupId"`
	InputPath   string          `json:"inputPath"`
	WorkDir     string          `json:"workDir"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Size        int64           `json:"size"`
	Renditions  []RenditionSpec `json:"renditions"`
	EnqueuedAt  time.Time       `json:"enqueuedAt"`
}

// JobStatus read-only view of the queue state
type JobStatus struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	GroupID    string    `json:"groupId"`
	State      JobState  `json:"state"`
	Error      string    `json:"error,omitempty"`
	Attempts   int       `json:"attempts"`
	UpdatedAt  time.Time `json:"updatedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// JobDelivery one dequeued job plus the handle to settle it
type JobDelivery interface {
	Job() TranscodeJob
	Complete() error
	Fail(cause error) error
}

// JobEventType lifecycle event kinds
type JobEventType string

const (
	//JobEventCompleted job.completed
	JobEventCompleted JobEventType = "job.completed"
	//JobEventFailed job.failed
	JobEventFailed JobEventType = "job.failed"
)

// JobEvent operator facing completion / failure notice
type JobEvent struct {
	Type       JobEventType `json:"type"`
	JobID      string       `json:"jobId"`
	VideoID    string       `json:"videoId"`
	GroupID    string       `json:"groupId"`
	Error      string       `json:"error,omitempty"`
	Qualities  []string     `json:"qualities,omitempty"`
	Attempts   int          `json:"attempts"`
	DurationMS int64        `json:"durationMs"`
	OccurredAt time.Time    `json:"occurredAt"`
}
