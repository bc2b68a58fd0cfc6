package domain

import (
	"encoding/json"
	"time"
)

// ImportLog represents the outcome of a single import run, created by the backend
type ImportLog struct {
	ID            string      `json:"_id"`
	Timestamp     time.Time   `json:"timestamp"`
	FeedURL       string      `json:"feedUrl"`
	TotalFetched  int         `json:"totalFetched"`
	TotalImported int         `json:"totalImported"`
	NewJobs       int         `json:"newJobs"`
	UpdatedJobs   int         `json:"updatedJobs"`
	FailedJobs    []FailedJob `json:"failedJobs"`
}

// FailedJob pairs an opaque job payload with the reason it was rejected
type FailedJob struct {
	Job    json.RawMessage `json:"job"`
	Reason string          `json:"reason"`
}

// FailedCount returns number of failed jobs in the log entry
func (l ImportLog) FailedCount() int {
	return len(l.FailedJobs)
}
