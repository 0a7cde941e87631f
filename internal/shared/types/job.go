package types

import "time"

// JobState represents book fetch job lifecycle states.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobDone      JobState = "done"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobDone || s == JobFailed || s == JobCancelled
}

// Progress counts chapter outcomes within a job.
type Progress struct {
	Total  int `json:"total"`
	Done   int `json:"done"`
	Failed int `json:"failed"`
}

// Job tracks one book fetch through the worker pool.
type Job struct {
	ID         string     `json:"id"`
	SiteID     string     `json:"site_id"`
	BookRef    string     `json:"book_ref"`
	State      JobState   `json:"state"`
	Progress   Progress   `json:"progress"`
	BookTitle  string     `json:"book_title,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Event is one progress notification emitted while a job runs.
type Event struct {
	JobID     string      `json:"job_id"`
	Type      string      `json:"type"` // started, chapter, done, failed, cancelled
	Chapter   string      `json:"chapter,omitempty"`
	Status    FetchStatus `json:"status,omitempty"`
	Progress  Progress    `json:"progress"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}
