package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// SubmissionRepository handles user submission data access. The answer
// collection is stored as a single jsonb document: it is written once at
// submission time and only ever read back whole.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a submission. The unique (user_id, exam_id) constraint
// makes this the idempotency point: a concurrent or repeated submit hits
// ON CONFLICT DO NOTHING and surfaces as pgx.ErrNoRows to the caller.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.UserSubmission) error {
	raw, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO user_submissions (user_id, exam_id, time_taken_seconds, answers, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, exam_id) DO NOTHING
		 RETURNING id, created_at`,
		s.UserID, s.ExamID, s.TimeTakenSeconds, raw, model.SubmissionStatusRecorded,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByUserAndExam retrieves the submission for a (user, exam) pair.
func (r *SubmissionRepository) GetByUserAndExam(ctx context.Context, userID, examID uuid.UUID) (*model.UserSubmission, error) {
	return r.scanOne(ctx,
		`SELECT id, user_id, exam_id, time_taken_seconds, answers, status, score,
		        accuracy, attempted_questions, correct_answers, incorrect_answers, created_at
		 FROM user_submissions WHERE user_id = $1 AND exam_id = $2`, userID, examID)
}

// GetByID retrieves a submission by its UUID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UserSubmission, error) {
	return r.scanOne(ctx,
		`SELECT id, user_id, exam_id, time_taken_seconds, answers, status, score,
		        accuracy, attempted_questions, correct_answers, incorrect_answers, created_at
		 FROM user_submissions WHERE id = $1`, id)
}

func (r *SubmissionRepository) scanOne(ctx context.Context, query string, args ...any) (*model.UserSubmission, error) {
	s := &model.UserSubmission{}
	var raw []byte
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.UserID, &s.ExamID, &s.TimeTakenSeconds, &raw, &s.Status, &s.Score,
			&s.Accuracy, &s.AttemptedQuestions, &s.CorrectAnswers, &s.IncorrectAnswers, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return s, nil
}

// SetScore marks a submission SCORED and stores the computed result fields.
func (r *SubmissionRepository) SetScore(ctx context.Context, id uuid.UUID, result *model.AttemptResult) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_submissions
		 SET status = $1, score = $2, accuracy = $3,
		     attempted_questions = $4, correct_answers = $5, incorrect_answers = $6
		 WHERE id = $7`,
		model.SubmissionStatusScored, result.Score, result.Accuracy,
		result.AttemptedQuestions, result.CorrectAnswers, result.IncorrectAnswers, id)
	return err
}

// ListScores returns the scores of every scored submission for an exam.
// Used for rank and percentile computation.
func (r *SubmissionRepository) ListScores(ctx context.Context, examID uuid.UUID) ([]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT score FROM user_submissions
		 WHERE exam_id = $1 AND status = $2 AND score IS NOT NULL`,
		examID, model.SubmissionStatusScored)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
