package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/database"
	"github.com/shravanthakurgit/synergiaprep/internal/logger"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
	"github.com/shravanthakurgit/synergiaprep/internal/service"
)

type seedOption struct {
	text    string
	correct bool
}

type seedQuestion struct {
	text       string
	numericKey string
	options    []seedOption
}

type seedSection struct {
	name         string
	fullMarks    float64
	negative     float64
	partialMarks []float64
	questions    []seedQuestion
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	examRepo := repository.NewExamRepository(pool)
	examService := service.NewExamService(examRepo, rdb, log)

	fmt.Println("=== Seeding Sample Mock Test ===")

	sections := []seedSection{
		{
			name:      "Physics",
			fullMarks: 4, negative: 1, partialMarks: []float64{4},
			questions: []seedQuestion{
				{
					text: "A body moves with constant velocity. What is the net force acting on it?",
					options: []seedOption{
						{text: "Zero", correct: true},
						{text: "Equal to its weight"},
						{text: "Proportional to velocity"},
						{text: "Cannot be determined"},
					},
				},
				{
					text: "The SI unit of power is:",
					options: []seedOption{
						{text: "Joule"},
						{text: "Watt", correct: true},
						{text: "Newton"},
						{text: "Pascal"},
					},
				},
			},
		},
		{
			name:      "Chemistry",
			fullMarks: 4, negative: 2, partialMarks: []float64{1, 2, 4},
			questions: []seedQuestion{
				{
					text: "Which of the following are noble gases?",
					options: []seedOption{
						{text: "Helium", correct: true},
						{text: "Neon", correct: true},
						{text: "Nitrogen"},
						{text: "Argon", correct: true},
					},
				},
			},
		},
		{
			name:      "Mathematics",
			fullMarks: 4, negative: 0, partialMarks: []float64{4},
			questions: []seedQuestion{
				{text: "The value of the integral of 2x from 0 to 3 is:", numericKey: "9"},
				{text: "If f(x) = x^2 - 4x + 4, then f(2) equals:", numericKey: "0"},
			},
		},
	}

	examID, err := insertExam(ctx, pool, "Sample Mock Test 1", 3600, sections)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	fmt.Printf("Created exam %s (PUBLISHED)\n", examID)

	exam, err := examRepo.GetByID(ctx, examID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to reload exam")
	}
	if err := examService.WarmExamCache(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to warm exam cache")
	}

	fmt.Println("Exam cached and ready for attempts")
}

func insertExam(ctx context.Context, pool *pgxpool.Pool, title string, durationSeconds int, sections []seedSection) (uuid.UUID, error) {
	var examID uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO exams (title, duration_seconds, status)
		 VALUES ($1, $2, $3) RETURNING id`,
		title, durationSeconds, model.ExamStatusPublished,
	).Scan(&examID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert exam: %w", err)
	}

	for si, sec := range sections {
		var sectionID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO exam_sections (exam_id, name, full_marks, negative_marks, zero_marks, partial_marks, order_num)
			 VALUES ($1, $2, $3, $4, 0, $5, $6) RETURNING id`,
			examID, sec.name, sec.fullMarks, sec.negative, sec.partialMarks, si,
		).Scan(&sectionID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert section %q: %w", sec.name, err)
		}

		for qi, q := range sec.questions {
			var questionID uuid.UUID
			err := pool.QueryRow(ctx,
				`INSERT INTO questions (section_id, text, numeric_key, order_num)
				 VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING id`,
				sectionID, q.text, q.numericKey, qi,
			).Scan(&questionID)
			if err != nil {
				return uuid.Nil, fmt.Errorf("insert question: %w", err)
			}

			for oi, opt := range q.options {
				_, err := pool.Exec(ctx,
					`INSERT INTO question_options (question_id, text, is_correct, order_num)
					 VALUES ($1, $2, $3, $4)`,
					questionID, opt.text, opt.correct, oi,
				)
				if err != nil {
					return uuid.Nil, fmt.Errorf("insert option: %w", err)
				}
			}
		}
	}

	return examID, nil
}
