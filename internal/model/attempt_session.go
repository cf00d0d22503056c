package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt session states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// AttemptSession is a user's server-side attempt record. The server clock
// starts at join time; remaining time is always computed from StartedAt so
// a page reload cannot reset the countdown.
type AttemptSession struct {
	ID         uuid.UUID     `json:"id"`
	ExamID     uuid.UUID     `json:"exam_id"`
	UserID     uuid.UUID     `json:"user_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Status     AttemptStatus `json:"status"`
}

// AttemptState is the resume payload for a reloaded client: autosaved
// answers keyed by question ID plus the authoritative remaining time.
type AttemptState struct {
	ExamID           uuid.UUID         `json:"exam_id"`
	UserID           uuid.UUID         `json:"user_id"`
	AutosavedAnswers map[string]string `json:"autosaved_answers"`
	RemainingSeconds float64           `json:"remaining_seconds"`
}
