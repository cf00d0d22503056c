package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// ReportRepository handles exam report data access.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// BulkInsert upserts a batch of reports in one round trip using UNNEST.
// Re-generating a report for the same submission overwrites the old row in
// place, keeping its id.
func (r *ReportRepository) BulkInsert(ctx context.Context, reports []*model.ExamReport) error {
	n := len(reports)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	examIDs := make([]uuid.UUID, n)
	userIDs := make([]uuid.UUID, n)
	subIDs := make([]uuid.UUID, n)
	scores := make([]float64, n)
	accuracies := make([]float64, n)
	attempted := make([]int, n)
	correct := make([]int, n)
	incorrect := make([]int, n)
	timeTaken := make([]int, n)
	percentiles := make([]float64, n)
	ranks := make([]int, n)

	for i, rep := range reports {
		ids[i] = rep.ID
		examIDs[i] = rep.ExamID
		userIDs[i] = rep.UserID
		subIDs[i] = rep.SubmissionID
		scores[i] = rep.Score
		accuracies[i] = rep.Accuracy
		attempted[i] = rep.AttemptedQuestions
		correct[i] = rep.CorrectAnswers
		incorrect[i] = rep.IncorrectAnswers
		timeTaken[i] = rep.TimeTakenSeconds
		percentiles[i] = rep.Percentile
		ranks[i] = rep.Rank
	}

	query := `
		INSERT INTO exam_reports (
			id, exam_id, user_id, submission_id, score, accuracy,
			attempted_questions, correct_answers, incorrect_answers,
			time_taken_seconds, percentile, rank
		)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::uuid[], $3::uuid[], $4::uuid[], $5::float8[], $6::float8[],
			$7::int[], $8::int[], $9::int[],
			$10::int[], $11::float8[], $12::int[]
		)
		ON CONFLICT (submission_id) DO UPDATE
		SET score = EXCLUDED.score,
		    accuracy = EXCLUDED.accuracy,
		    attempted_questions = EXCLUDED.attempted_questions,
		    correct_answers = EXCLUDED.correct_answers,
		    incorrect_answers = EXCLUDED.incorrect_answers,
		    time_taken_seconds = EXCLUDED.time_taken_seconds,
		    percentile = EXCLUDED.percentile,
		    rank = EXCLUDED.rank,
		    generated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		ids, examIDs, userIDs, subIDs, scores, accuracies,
		attempted, correct, incorrect, timeTaken, percentiles, ranks)
	return err
}

// InsertSingle is the fallback path when a bulk insert fails.
func (r *ReportRepository) InsertSingle(ctx context.Context, rep *model.ExamReport) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_reports (
			id, exam_id, user_id, submission_id, score, accuracy,
			attempted_questions, correct_answers, incorrect_answers,
			time_taken_seconds, percentile, rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (submission_id) DO UPDATE
		SET score = EXCLUDED.score,
		    accuracy = EXCLUDED.accuracy,
		    attempted_questions = EXCLUDED.attempted_questions,
		    correct_answers = EXCLUDED.correct_answers,
		    incorrect_answers = EXCLUDED.incorrect_answers,
		    time_taken_seconds = EXCLUDED.time_taken_seconds,
		    percentile = EXCLUDED.percentile,
		    rank = EXCLUDED.rank,
		    generated_at = NOW()`,
		rep.ID, rep.ExamID, rep.UserID, rep.SubmissionID, rep.Score, rep.Accuracy,
		rep.AttemptedQuestions, rep.CorrectAnswers, rep.IncorrectAnswers,
		rep.TimeTakenSeconds, rep.Percentile, rep.Rank)
	return err
}

// GetBySubmission retrieves the report generated for a submission.
func (r *ReportRepository) GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.ExamReport, error) {
	rep := &model.ExamReport{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, submission_id, score, accuracy,
		        attempted_questions, correct_answers, incorrect_answers,
		        time_taken_seconds, percentile, rank, generated_at
		 FROM exam_reports WHERE submission_id = $1`, submissionID,
	).Scan(&rep.ID, &rep.ExamID, &rep.UserID, &rep.SubmissionID, &rep.Score, &rep.Accuracy,
		&rep.AttemptedQuestions, &rep.CorrectAnswers, &rep.IncorrectAnswers,
		&rep.TimeTakenSeconds, &rep.Percentile, &rep.Rank, &rep.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}
