package service

import (
	"context"
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

var (
	ErrNoActiveAttempt  = errors.New("no active attempt for this exam")
	ErrAttemptCompleted = errors.New("attempt already completed")
)

// AttemptSessionService manages per-user attempt sessions. The server clock
// is authoritative: join stamps a start time, and every state read computes
// the remaining seconds from that stamp rather than trusting the client.
type AttemptSessionService struct {
	sessionRepo *repository.AttemptSessionRepository
	examRepo    *repository.ExamRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptSessionService creates a new AttemptSessionService.
func NewAttemptSessionService(
	sessionRepo *repository.AttemptSessionRepository,
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptSessionService {
	return &AttemptSessionService{
		sessionRepo: sessionRepo,
		examRepo:    examRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_session_service").Logger(),
	}
}

// Join opens an attempt session for the user on a published exam. Joining
// twice is harmless: the original session and its start time are returned.
func (s *AttemptSessionService) Join(ctx context.Context, examID, userID uuid.UUID) (*model.AttemptSession, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	session := &model.AttemptSession{
		ExamID: examID,
		UserID: userID,
		Status: model.AttemptStatusInProgress,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("create session: %w", err)
		}
		// ON CONFLICT DO NOTHING: the user joined before, reuse that row.
		session, err = s.sessionRepo.GetByExamAndUser(ctx, examID, userID)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session.Status == model.AttemptStatusCompleted {
			return nil, ErrAttemptCompleted
		}
	}

	startKey := config.CacheKey.AttemptStartKey(examID.String(), userID.String())
	if err := s.rdb.Set(ctx, startKey, session.StartedAt.UnixMilli(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache attempt start time")
	}

	return session, nil
}

// GetState assembles the resume payload for a reloaded client: the
// autosaved answer buffer plus the authoritative remaining time.
func (s *AttemptSessionService) GetState(ctx context.Context, examID, userID uuid.UUID) (*model.AttemptState, error) {
	answers, err := s.rdb.HGetAll(ctx, config.CacheKey.AutosavedAnswersKey(examID.String(), userID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}

	duration, err := s.rdb.Get(ctx, config.CacheKey.ExamDurationKey(examID.String())).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExamNotPublished
		}
		return nil, fmt.Errorf("get exam duration: %w", err)
	}

	startedAt, err := s.attemptStart(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	remaining := float64(duration) - time.Since(startedAt).Seconds()
	if remaining < 0 {
		remaining = 0
	}

	return &model.AttemptState{
		ExamID:           examID,
		UserID:           userID,
		AutosavedAnswers: answers,
		RemainingSeconds: remaining,
	}, nil
}

// VerifyActive checks that the user holds an in-progress attempt session.
func (s *AttemptSessionService) VerifyActive(ctx context.Context, examID, userID uuid.UUID) error {
	session, err := s.sessionRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoActiveAttempt
		}
		return fmt.Errorf("get session: %w", err)
	}
	if session.Status == model.AttemptStatusCompleted {
		return ErrAttemptCompleted
	}
	return nil
}

// Complete marks the user's session as finished.
func (s *AttemptSessionService) Complete(ctx context.Context, examID, userID uuid.UUID) error {
	return s.sessionRepo.Complete(ctx, examID, userID)
}

// attemptStart reads the attempt start time from Redis, falling back to the
// session row and self-healing the cache on a miss.
func (s *AttemptSessionService) attemptStart(ctx context.Context, examID, userID uuid.UUID) (time.Time, error) {
	startKey := config.CacheKey.AttemptStartKey(examID.String(), userID.String())

	millis, err := s.rdb.Get(ctx, startKey).Int64()
	if err == nil {
		return time.UnixMilli(millis), nil
	}
	if !errors.Is(err, redis.Nil) {
		return time.Time{}, fmt.Errorf("get attempt start: %w", err)
	}

	session, err := s.sessionRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNoActiveAttempt
		}
		return time.Time{}, fmt.Errorf("get session: %w", err)
	}

	if err := s.rdb.Set(ctx, startKey, session.StartedAt.UnixMilli(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to self-heal attempt start cache")
	}
	return session.StartedAt, nil
}
