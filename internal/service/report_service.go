package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
)

var ErrSubmissionNotScored = errors.New("submission has not been scored")

// ReportService builds post-exam reports. The report document is returned
// to the caller immediately; persistence goes through the Redis queue so a
// burst of exam finishes never stalls on the database.
type ReportService struct {
	submissionRepo *repository.SubmissionRepository
	reportRepo     *repository.ReportRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	submissionRepo *repository.SubmissionRepository,
	reportRepo *repository.ReportRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		submissionRepo: submissionRepo,
		reportRepo:     reportRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "report_service").Logger(),
	}
}

// Generate builds the exam report for a scored submission and enqueues it
// for persistence. Rank and percentile are recomputed at generation time so
// the report reflects the current scored population.
func (s *ReportService) Generate(ctx context.Context, examID, submissionID uuid.UUID) (*model.ExamReport, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if submission.ExamID != examID {
		return nil, ErrSubmissionNotScored
	}
	if submission.Status != model.SubmissionStatusScored || submission.Score == nil {
		return nil, ErrSubmissionNotScored
	}

	scores, err := s.submissionRepo.ListScores(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	rank, percentile := Standing(*submission.Score, scores)

	// Regeneration must hand back the id the stored row already carries;
	// the upsert never rewrites it.
	reportID := uuid.New()
	if existing, err := s.reportRepo.GetBySubmission(ctx, submissionID); err == nil {
		reportID = existing.ID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get report: %w", err)
	}

	report := &model.ExamReport{
		ID:                 reportID,
		ExamID:             submission.ExamID,
		UserID:             submission.UserID,
		SubmissionID:       submission.ID,
		Score:              *submission.Score,
		Accuracy:           submission.Accuracy,
		AttemptedQuestions: submission.AttemptedQuestions,
		CorrectAnswers:     submission.CorrectAnswers,
		IncorrectAnswers:   submission.IncorrectAnswers,
		TimeTakenSeconds:   submission.TimeTakenSeconds,
		Percentile:         percentile,
		Rank:               rank,
		GeneratedAt:        time.Now(),
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, payload).Err(); err != nil {
		return nil, fmt.Errorf("enqueue report: %w", err)
	}

	s.log.Info().
		Str("submission_id", submissionID.String()).
		Str("exam_id", examID.String()).
		Msg("Report generated and queued")
	return report, nil
}

// GetBySubmission retrieves a persisted report row.
func (s *ReportService) GetBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.ExamReport, error) {
	return s.reportRepo.GetBySubmission(ctx, submissionID)
}
