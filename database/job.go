package database

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeThumbnailsZip  JobType = "thumbnails_zip"
	JobTypeThumbnailsXlsx JobType = "thumbnails_xlsx"
	JobTypeSweep          JobType = "sweep"
)

// Job represents one batch or maintenance run
type Job struct {
	ID          ulid.ULID  `json:"id"`
	Type        JobType    `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`         // 0-100
	CurrentStep string     `json:"currentStep"`      // Human-readable current step
	TotalSteps  int        `json:"totalSteps"`       // Total number of steps
	Message     string     `json:"message"`          // Status message
	Error       string     `json:"error,omitempty"`  // Error message if failed
	Result      string     `json:"result,omitempty"` // JSON result data
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// BatchSummary is stored as the Result of a finished thumbnail job
type BatchSummary struct {
	Format      string `json:"format"`
	Documents   int    `json:"documents"`
	Thumbnails  int    `json:"thumbnails"`
	Skipped     int    `json:"skipped"`
	OutputBytes int    `json:"outputBytes"`
	Empty       bool   `json:"empty"`
}

// String renders the summary as JSON for Job.Result
func (s BatchSummary) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SweepSummary is stored as the Result of a maintenance run
type SweepSummary struct {
	ScratchDirsRemoved int `json:"scratchDirsRemoved"`
	JobsDeleted        int `json:"jobsDeleted"`
}

// String renders the summary as JSON for Job.Result
func (s SweepSummary) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}
