package model

import "time"

// JobState is a prediction job lifecycle state.
type JobState string

// Job states. Completed and Failed are terminal.
const (
	JobAccepted            JobState = "accepted"
	JobPlaceholderReturned JobState = "placeholder_returned"
	JobComputing           JobState = "computing"
	JobCompleted           JobState = "completed"
	JobFailed              JobState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a unit of scoring work flowing through the queue.
type Job struct {
	ID         string
	StartupID  int
	Features   FeatureSet
	AcceptedAt time.Time
}

// JobStatus is the observable view of a job.
type JobStatus struct {
	ID         string     `json:"jobId"`
	StartupID  int        `json:"startupId"`
	State      JobState   `json:"state"`
	Error      string     `json:"error,omitempty"`
	AcceptedAt time.Time  `json:"acceptedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
