package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
)

// Domain errors.
var (
	ErrNoQuestions      = errors.New("exam has no questions")
	ErrExamNotPublished = errors.New("exam is not published")
)

// ExamService handles exam payload assembly and Redis caching. Published
// exams are served from the cache; PostgreSQL stays the source of truth.
type ExamService struct {
	examRepo *repository.ExamRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam row by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// GetFullSections loads the section tree with answer keys. Never exposed
// over the API; scoring is the only consumer.
func (s *ExamService) GetFullSections(ctx context.Context, examID uuid.UUID) ([]model.ExamSection, error) {
	return s.examRepo.GetSections(ctx, examID)
}

// WarmExamCache loads an exam's student paper from PostgreSQL into Redis.
// The paper strips every answer key field before caching.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	sections, err := s.examRepo.GetSections(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}

	paper := buildPaper(exam, sections)
	if paper.QuestionCount() == 0 {
		return ErrNoQuestions
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPaperKey(exam.ID.String()), paperJSON, 0)
	pipe.Set(ctx, config.CacheKey.ExamDurationKey(exam.ID.String()), exam.DurationSeconds, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", exam.ID.String()).
		Int("questions", paper.QuestionCount()).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published exams into Redis on application
// startup, so the first wave of traffic never lazy-loads under load.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No published exams to prewarm")
		return nil
	}

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", exams[i].ID.String()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

// GetExamPaper retrieves the cached student paper from Redis.
func (s *ExamService) GetExamPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPaperKey(examID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExamNotPublished
		}
		return nil, fmt.Errorf("get paper: %w", err)
	}

	var paper model.ExamPaper
	if err := json.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("unmarshal paper: %w", err)
	}
	return &paper, nil
}

// buildPaper converts the keyed section tree into the answer-free paper.
func buildPaper(exam *model.Exam, sections []model.ExamSection) *model.ExamPaper {
	paper := &model.ExamPaper{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationSeconds: exam.DurationSeconds,
	}
	for i := range sections {
		sec := model.PaperSection{
			Name:   sections[i].Name,
			Config: sections[i].Config,
		}
		for j := range sections[i].Questions {
			q := sections[i].Questions[j]
			sec.Questions = append(sec.Questions, model.PaperQuestion{
				ID:       q.ID,
				Text:     q.Text,
				ImageURL: q.ImageURL,
				Options:  q.Options,
			})
		}
		paper.Sections = append(paper.Sections, sec)
	}
	return paper
}
