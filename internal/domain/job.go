package domain

import (
	"time"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// terminal reports whether a status never transitions further.
func (s JobStatus) terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// validJobTransitions enumerates the linear state machine:
// pending -> running -> {completed|failed}; pending|running -> cancelled.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobPending: {JobRunning, JobCancelled},
	JobRunning: {JobCompleted, JobFailed, JobCancelled},
}

// CanTransition reports whether moving from s to next is a legal Job
// state-machine edge.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.terminal() {
		return false
	}
	for _, allowed := range validJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job is a single execution attempt of a Check.
type Job struct {
	ID           string         `json:"id"`
	CheckID      string         `json:"checkId"`
	Status       JobStatus      `json:"status"`
	// ScheduledAt is when the job becomes eligible for claiming; set to
	// now() on creation, moved to 60s after a failure on a worker retry, and
	// reset to now() when the reaper reschedules a stale job.
	ScheduledAt  time.Time      `json:"scheduledAt"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	ErrorMessage *string        `json:"errorMessage,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	RetryCount   int            `json:"retryCount"`
	MaxRetries   int            `json:"maxRetries"`
	ClaimedAt    *time.Time     `json:"claimedAt,omitempty"`
	ClaimedBy    *string        `json:"claimedBy,omitempty"`
	HeartbeatAt  *time.Time     `json:"heartbeatAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// TriggeredBy returns the "triggered_by" metadata field ("api", "scheduler", …).
func (j *Job) TriggeredBy() string {
	if j.Metadata == nil {
		return ""
	}
	s, _ := j.Metadata["triggered_by"].(string)
	return s
}

// ScheduleID returns the originating schedule id, if this Job was fired by
// the scheduler rather than an ad hoc API call.
func (j *Job) ScheduleID() (string, bool) {
	if j.Metadata == nil {
		return "", false
	}
	s, ok := j.Metadata["schedule_id"].(string)
	return s, ok && s != ""
}

func NewJobMetadata(triggeredBy string, scheduleID *string) map[string]any {
	m := map[string]any{"triggered_by": triggeredBy}
	if scheduleID != nil && *scheduleID != "" {
		m["schedule_id"] = *scheduleID
	}
	return m
}
