package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Exam represents an exam entity.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	DurationSeconds int        `json:"duration_seconds"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SectionConfig is the marking scheme shared by every question in a section.
// A PartialMarks list with more than one entry signals multi-select
// questions: PartialMarks[k-1] is awarded for k correct options chosen with
// no wrong one.
type SectionConfig struct {
	FullMarks     float64   `json:"full_marks"`
	NegativeMarks float64   `json:"negative_marks"`
	ZeroMarks     float64   `json:"zero_marks"`
	PartialMarks  []float64 `json:"partial_marks"`
}

// MultiSelect reports whether questions in this section accept more than one
// chosen option. Selection cardinality is a section-level property, never
// per-question.
func (c SectionConfig) MultiSelect() bool {
	return len(c.PartialMarks) > 1
}

// ExamSection is a named, ordered group of questions with one marking config.
type ExamSection struct {
	ID        uuid.UUID     `json:"id"`
	ExamID    uuid.UUID     `json:"exam_id"`
	Name      string        `json:"name"`
	Config    SectionConfig `json:"config"`
	OrderNum  int           `json:"order_num"`
	Questions []Question    `json:"questions"`
}

// Question is a single item to answer. An empty Options list means the
// question takes a free numerical entry instead of option choices.
// NumericKey and CorrectOpts are the answer key and never leave the server.
type Question struct {
	ID          uuid.UUID   `json:"id"`
	SectionID   uuid.UUID   `json:"section_id"`
	Text        string      `json:"text"`
	ImageURL    string      `json:"image_url,omitempty"`
	OrderNum    int         `json:"order_num"`
	Options     []Option    `json:"options"`
	NumericKey  string      `json:"numeric_key,omitempty"`
	CorrectOpts []uuid.UUID `json:"correct_options,omitempty"`
}

// Numerical reports whether the question takes a typed numeric value.
func (q Question) Numerical() bool {
	return len(q.Options) == 0
}

// Option is one selectable choice of a question.
type Option struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	ImageURL string    `json:"image_url,omitempty"`
}

// ExamPaper is the student-facing exam document: the full section and
// question structure with every answer key stripped. It is cached in Redis
// and immutable for the lifetime of an attempt.
type ExamPaper struct {
	ExamID          uuid.UUID      `json:"exam_id"`
	Title           string         `json:"title"`
	DurationSeconds int            `json:"duration_seconds"`
	Sections        []PaperSection `json:"sections"`
}

// PaperSection mirrors ExamSection without answer keys.
type PaperSection struct {
	Name      string          `json:"name"`
	Config    SectionConfig   `json:"config"`
	Questions []PaperQuestion `json:"questions"`
}

// PaperQuestion mirrors Question without the answer key fields.
type PaperQuestion struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	ImageURL string    `json:"image_url,omitempty"`
	Options  []Option  `json:"options"`
}

// Numerical reports whether the question takes a typed numeric value.
func (q PaperQuestion) Numerical() bool {
	return len(q.Options) == 0
}

// QuestionCount returns the total number of questions across all sections.
func (p *ExamPaper) QuestionCount() int {
	n := 0
	for i := range p.Sections {
		n += len(p.Sections[i].Questions)
	}
	return n
}
