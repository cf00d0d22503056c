package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
)

var ErrAnswerMismatch = errors.New("answers do not match the exam paper")

// SubmissionService records finished attempts. Recording is idempotent on
// (user, exam): a retried submit returns the original receipt, so clients
// can safely repeat the call after a network failure.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	examService    *ExamService
	sessionService *AttemptSessionService
	log            zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	examService *ExamService,
	sessionService *AttemptSessionService,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		examService:    examService,
		sessionService: sessionService,
		log:            log.With().Str("component", "submission_service").Logger(),
	}
}

// Record persists the answer collection of a finished attempt and returns
// the submission receipt. The answer set must cover exactly the questions
// of the cached paper, one answer per question.
func (s *SubmissionService) Record(ctx context.Context, userID uuid.UUID, req *model.RecordSubmissionRequest) (*model.SubmissionReceipt, error) {
	paper, err := s.examService.GetExamPaper(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}
	if err := validateAnswers(paper, req.Answers); err != nil {
		return nil, err
	}

	submission := &model.UserSubmission{
		UserID:           userID,
		ExamID:           req.ExamID,
		TimeTakenSeconds: req.TimeTakenSeconds,
		Answers:          req.Answers,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("create submission: %w", err)
		}
		// Already submitted: hand back the original receipt.
		existing, err := s.submissionRepo.GetByUserAndExam(ctx, userID, req.ExamID)
		if err != nil {
			return nil, fmt.Errorf("get existing submission: %w", err)
		}
		s.log.Info().
			Str("user_id", userID.String()).
			Str("exam_id", req.ExamID.String()).
			Str("submission_id", existing.ID.String()).
			Msg("Duplicate submission, returning existing receipt")
		return &model.SubmissionReceipt{
			UserID:       existing.UserID,
			ExamID:       existing.ExamID,
			SubmissionID: existing.ID,
		}, nil
	}

	if err := s.sessionService.Complete(ctx, req.ExamID, userID); err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("exam_id", req.ExamID.String()).
			Msg("Failed to close attempt session")
	}

	return &model.SubmissionReceipt{
		UserID:       submission.UserID,
		ExamID:       submission.ExamID,
		SubmissionID: submission.ID,
	}, nil
}

// GetByID retrieves a submission by its UUID.
func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (*model.UserSubmission, error) {
	return s.submissionRepo.GetByID(ctx, id)
}

// validateAnswers checks the answer set covers every paper question exactly
// once, with no stray question IDs.
func validateAnswers(paper *model.ExamPaper, answers []model.UserAnswer) error {
	expected := make(map[uuid.UUID]bool, paper.QuestionCount())
	for i := range paper.Sections {
		for j := range paper.Sections[i].Questions {
			expected[paper.Sections[i].Questions[j].ID] = false
		}
	}
	if len(answers) != len(expected) {
		return ErrAnswerMismatch
	}
	for i := range answers {
		seen, ok := expected[answers[i].QuestionID]
		if !ok || seen {
			return ErrAnswerMismatch
		}
		expected[answers[i].QuestionID] = true
	}
	return nil
}
