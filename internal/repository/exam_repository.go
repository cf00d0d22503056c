package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// ExamRepository handles exam, section, question and option data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam row by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_seconds, status, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.DurationSeconds, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListPublished retrieves all published exams.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, duration_seconds, status, created_at, updated_at
		 FROM exams WHERE status = $1 ORDER BY created_at`, model.ExamStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.DurationSeconds, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// GetSections loads the full section tree for an exam, answer keys included.
// Sections, questions and options come back in their stored order.
func (r *ExamRepository) GetSections(ctx context.Context, examID uuid.UUID) ([]model.ExamSection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, name, full_marks, negative_marks, zero_marks, partial_marks, order_num
		 FROM exam_sections WHERE exam_id = $1 ORDER BY order_num`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var sections []model.ExamSection
	sectionIdx := make(map[uuid.UUID]int)
	for rows.Next() {
		var s model.ExamSection
		if err := rows.Scan(&s.ID, &s.ExamID, &s.Name,
			&s.Config.FullMarks, &s.Config.NegativeMarks, &s.Config.ZeroMarks, &s.Config.PartialMarks,
			&s.OrderNum); err != nil {
			return nil, err
		}
		sectionIdx[s.ID] = len(sections)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return sections, nil
	}

	qRows, err := r.pool.Query(ctx,
		`SELECT q.id, q.section_id, q.text, COALESCE(q.image_url, ''), COALESCE(q.numeric_key, ''), q.order_num
		 FROM questions q
		 JOIN exam_sections s ON q.section_id = s.id
		 WHERE s.exam_id = $1
		 ORDER BY s.order_num, q.order_num`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer qRows.Close()

	questionIdx := make(map[uuid.UUID][2]int) // question id -> (section idx, question idx)
	for qRows.Next() {
		var q model.Question
		if err := qRows.Scan(&q.ID, &q.SectionID, &q.Text, &q.ImageURL, &q.NumericKey, &q.OrderNum); err != nil {
			return nil, err
		}
		si, ok := sectionIdx[q.SectionID]
		if !ok {
			continue
		}
		questionIdx[q.ID] = [2]int{si, len(sections[si].Questions)}
		sections[si].Questions = append(sections[si].Questions, q)
	}
	if err := qRows.Err(); err != nil {
		return nil, err
	}

	oRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.text, COALESCE(o.image_url, ''), o.is_correct
		 FROM question_options o
		 JOIN questions q ON o.question_id = q.id
		 JOIN exam_sections s ON q.section_id = s.id
		 WHERE s.exam_id = $1
		 ORDER BY o.order_num`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer oRows.Close()

	for oRows.Next() {
		var (
			opt        model.Option
			questionID uuid.UUID
			isCorrect  bool
		)
		if err := oRows.Scan(&opt.ID, &questionID, &opt.Text, &opt.ImageURL, &isCorrect); err != nil {
			return nil, err
		}
		pos, ok := questionIdx[questionID]
		if !ok {
			continue
		}
		q := &sections[pos[0]].Questions[pos[1]]
		q.Options = append(q.Options, opt)
		if isCorrect {
			q.CorrectOpts = append(q.CorrectOpts, opt.ID)
		}
	}
	return sections, oRows.Err()
}
