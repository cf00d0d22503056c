package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enumerates submission processing states.
type SubmissionStatus string

const (
	SubmissionStatusRecorded SubmissionStatus = "RECORDED"
	SubmissionStatusScored   SubmissionStatus = "SCORED"
)

// UserSubmission is the durable record of one finished attempt: the full
// answer collection plus scoring results once computed. At most one exists
// per (user, exam) pair; re-submission returns the existing record.
type UserSubmission struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	ExamID             uuid.UUID        `json:"exam_id"`
	TimeTakenSeconds   int              `json:"time_taken_seconds"`
	Answers            []UserAnswer     `json:"answers"`
	Status             SubmissionStatus `json:"status"`
	Score              *float64         `json:"score,omitempty"`
	Accuracy           float64          `json:"accuracy"`
	AttemptedQuestions int              `json:"attempted_questions"`
	CorrectAnswers     int              `json:"correct_answers"`
	IncorrectAnswers   int              `json:"incorrect_answers"`
	CreatedAt          time.Time        `json:"created_at"`
}

// RecordSubmissionRequest is the payload for recording a finished attempt.
// Every UserAnswer is included regardless of attempted status.
type RecordSubmissionRequest struct {
	ExamID           uuid.UUID    `json:"exam_id" binding:"required"`
	TimeTakenSeconds int          `json:"time_taken_seconds" binding:"min=0"`
	Answers          []UserAnswer `json:"answers" binding:"required,dive"`
}

// SubmissionReceipt carries the generated identifiers returned by a
// recorded submission. The scoring and report steps require all three.
type SubmissionReceipt struct {
	UserID       uuid.UUID `json:"user_id"`
	ExamID       uuid.UUID `json:"exam_id"`
	SubmissionID uuid.UUID `json:"id"`
}

// AttemptResult is the computed outcome of scoring a submission.
type AttemptResult struct {
	ExamID             uuid.UUID `json:"exam_id"`
	UserID             uuid.UUID `json:"user_id"`
	SubmissionID       uuid.UUID `json:"submission_id"`
	Score              float64   `json:"score"`
	Accuracy           float64   `json:"accuracy"`
	AttemptedQuestions int       `json:"attempted_questions"`
	CorrectAnswers     int       `json:"correct_answers"`
	IncorrectAnswers   int       `json:"incorrect_answers"`
	TimeTakenSeconds   int       `json:"time_taken_seconds"`
	Percentile         float64   `json:"percentile"`
	Rank               int       `json:"rank"`
}

// GenerateReportRequest is the payload for the report-generation endpoint.
type GenerateReportRequest struct {
	SubmissionID uuid.UUID `json:"submission_id" binding:"required"`
}

// ExamReport is the persisted post-exam report row.
type ExamReport struct {
	ID                 uuid.UUID `json:"id"`
	ExamID             uuid.UUID `json:"exam_id"`
	UserID             uuid.UUID `json:"user_id"`
	SubmissionID       uuid.UUID `json:"submission_id"`
	Score              float64   `json:"score"`
	Accuracy           float64   `json:"accuracy"`
	AttemptedQuestions int       `json:"attempted_questions"`
	CorrectAnswers     int       `json:"correct_answers"`
	IncorrectAnswers   int       `json:"incorrect_answers"`
	TimeTakenSeconds   int       `json:"time_taken_seconds"`
	Percentile         float64   `json:"percentile"`
	Rank               int       `json:"rank"`
	GeneratedAt        time.Time `json:"generated_at"`
}
