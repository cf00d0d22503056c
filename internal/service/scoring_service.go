package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
)

// ScoringService grades recorded submissions against the answer keys and
// computes rank and percentile across the exam's scored population.
type ScoringService struct {
	submissionRepo *repository.SubmissionRepository
	examService    *ExamService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	submissionRepo *repository.SubmissionRepository,
	examService *ExamService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		submissionRepo: submissionRepo,
		examService:    examService,
		rdb:            rdb,
		log:            log.With().Str("component", "scoring_service").Logger(),
	}
}

// ScoreSubmission grades one submission and persists the result. Scoring a
// submission twice recomputes from the same stored answers, so the call is
// safe to retry; rank and percentile reflect the population at call time.
func (s *ScoringService) ScoreSubmission(ctx context.Context, submissionID uuid.UUID) (*model.AttemptResult, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	sections, err := s.examService.GetFullSections(ctx, submission.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}

	result := GradeSubmission(sections, submission)

	if err := s.submissionRepo.SetScore(ctx, submissionID, result); err != nil {
		return nil, fmt.Errorf("store score: %w", err)
	}

	scores, err := s.submissionRepo.ListScores(ctx, submission.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	result.Rank, result.Percentile = Standing(result.Score, scores)

	// The autosave buffer has served its purpose once the attempt is
	// graded.
	bufKey := config.CacheKey.AutosavedAnswersKey(submission.ExamID.String(), submission.UserID.String())
	if err := s.rdb.Del(ctx, bufKey).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", bufKey).Msg("Failed to clear autosave buffer")
	}

	s.log.Info().
		Str("submission_id", submissionID.String()).
		Float64("score", result.Score).
		Int("rank", result.Rank).
		Msg("Submission scored")
	return result, nil
}

// GradeSubmission computes the score of a submission against the keyed
// section tree. It is a pure function of its inputs.
func GradeSubmission(sections []model.ExamSection, submission *model.UserSubmission) *model.AttemptResult {
	byQuestion := make(map[uuid.UUID]model.UserAnswer, len(submission.Answers))
	for i := range submission.Answers {
		byQuestion[submission.Answers[i].QuestionID] = submission.Answers[i]
	}

	result := &model.AttemptResult{
		ExamID:           submission.ExamID,
		UserID:           submission.UserID,
		SubmissionID:     submission.ID,
		TimeTakenSeconds: submission.TimeTakenSeconds,
	}

	for i := range sections {
		cfg := sections[i].Config
		for j := range sections[i].Questions {
			q := sections[i].Questions[j]
			ans, ok := byQuestion[q.ID]
			if !ok || !ans.Answered() {
				result.Score += cfg.ZeroMarks
				continue
			}
			result.AttemptedQuestions++

			marks, correct := gradeAnswer(q, cfg, ans)
			result.Score += marks
			if correct {
				result.CorrectAnswers++
			} else {
				result.IncorrectAnswers++
			}
		}
	}

	if result.AttemptedQuestions > 0 {
		result.Accuracy = float64(result.CorrectAnswers) / float64(result.AttemptedQuestions)
	}
	return result
}

// gradeAnswer returns the marks awarded for one answered question and
// whether the answer counts as fully correct.
func gradeAnswer(q model.Question, cfg model.SectionConfig, ans model.UserAnswer) (float64, bool) {
	if q.Numerical() {
		if numericEqual(ans.Value, q.NumericKey) {
			return cfg.FullMarks, true
		}
		return -cfg.NegativeMarks, false
	}

	key := make(map[uuid.UUID]bool, len(q.CorrectOpts))
	for _, id := range q.CorrectOpts {
		key[id] = true
	}

	correctChosen := 0
	for _, id := range ans.ChosenIDs() {
		if !key[id] {
			return -cfg.NegativeMarks, false
		}
		correctChosen++
	}

	if correctChosen == len(key) {
		return cfg.FullMarks, true
	}
	// Some but not all correct options, none wrong. PartialMarks[k-1] is
	// the award for k correct picks.
	if correctChosen >= 1 && correctChosen <= len(cfg.PartialMarks) {
		return cfg.PartialMarks[correctChosen-1], false
	}
	return -cfg.NegativeMarks, false
}

// numericEqual compares a typed numerical answer against the key, parsing
// both as floats so "0.50" matches "0.5". Unparseable keys fall back to a
// trimmed string comparison.
func numericEqual(value, key string) bool {
	value = strings.TrimSpace(value)
	key = strings.TrimSpace(key)
	v, errV := strconv.ParseFloat(value, 64)
	k, errK := strconv.ParseFloat(key, 64)
	if errV == nil && errK == nil {
		return v == k
	}
	return value == key
}

// Standing computes rank and percentile for a score within the scored
// population. Rank counts strictly better scores ahead; percentile is the
// share of the rest of the population scoring strictly worse.
func Standing(score float64, scores []float64) (rank int, percentile float64) {
	better, worse := 0, 0
	for _, s := range scores {
		switch {
		case s > score:
			better++
		case s < score:
			worse++
		}
	}
	rank = 1 + better
	if len(scores) <= 1 {
		return rank, 100
	}
	percentile = 100 * float64(worse) / float64(len(scores)-1)
	return rank, percentile
}
