package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// AttemptSessionRepository handles attempt session data access.
type AttemptSessionRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptSessionRepository creates a new AttemptSessionRepository.
func NewAttemptSessionRepository(pool *pgxpool.Pool) *AttemptSessionRepository {
	return &AttemptSessionRepository{pool: pool}
}

// GetByExamAndUser retrieves a session for a specific exam-user combination.
func (r *AttemptSessionRepository) GetByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (*model.AttemptSession, error) {
	s := &model.AttemptSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, started_at, finished_at, status
		 FROM attempt_sessions
		 WHERE exam_id = $1 AND user_id = $2`, examID, userID,
	).Scan(&s.ID, &s.ExamID, &s.UserID, &s.StartedAt, &s.FinishedAt, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new attempt session (user joins the exam). A concurrent
// join hits ON CONFLICT DO NOTHING and surfaces as pgx.ErrNoRows.
func (r *AttemptSessionRepository) Create(ctx context.Context, s *model.AttemptSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempt_sessions (exam_id, user_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.UserID, model.AttemptStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// Complete marks a session as completed.
func (r *AttemptSessionRepository) Complete(ctx context.Context, examID, userID uuid.UUID) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE attempt_sessions
		 SET status = $1, finished_at = $2
		 WHERE exam_id = $3 AND user_id = $4`,
		model.AttemptStatusCompleted, now, examID, userID)
	return err
}
