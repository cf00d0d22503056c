package service

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

func chosen(ids ...uuid.UUID) []model.ChosenOption {
	out := make([]model.ChosenOption, len(ids))
	for i, id := range ids {
		out[i] = model.ChosenOption{OptionID: id}
	}
	return out
}

func TestGradeAnswerSingleSelect(t *testing.T) {
	optA, optB := uuid.New(), uuid.New()
	q := model.Question{
		ID:          uuid.New(),
		Options:     []model.Option{{ID: optA}, {ID: optB}},
		CorrectOpts: []uuid.UUID{optA},
	}
	cfg := model.SectionConfig{FullMarks: 4, NegativeMarks: 1, PartialMarks: []float64{4}}

	tests := []struct {
		name        string
		answer      model.UserAnswer
		wantMarks   float64
		wantCorrect bool
	}{
		{
			name:        "correct option",
			answer:      model.UserAnswer{QuestionID: q.ID, IsAttempted: true, ChosenOptions: chosen(optA)},
			wantMarks:   4,
			wantCorrect: true,
		},
		{
			name:        "wrong option",
			answer:      model.UserAnswer{QuestionID: q.ID, IsAttempted: true, ChosenOptions: chosen(optB)},
			wantMarks:   -1,
			wantCorrect: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks, correct := gradeAnswer(q, cfg, tt.answer)
			if marks != tt.wantMarks || correct != tt.wantCorrect {
				t.Errorf("gradeAnswer() = (%v, %v), want (%v, %v)", marks, correct, tt.wantMarks, tt.wantCorrect)
			}
		})
	}
}

func TestGradeAnswerMultiSelect(t *testing.T) {
	optA, optB, optC, optD := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	q := model.Question{
		ID:          uuid.New(),
		Options:     []model.Option{{ID: optA}, {ID: optB}, {ID: optC}, {ID: optD}},
		CorrectOpts: []uuid.UUID{optA, optB, optC},
	}
	cfg := model.SectionConfig{FullMarks: 4, NegativeMarks: 2, PartialMarks: []float64{1, 2, 4}}

	tests := []struct {
		name        string
		picks       []uuid.UUID
		wantMarks   float64
		wantCorrect bool
	}{
		{"all correct", []uuid.UUID{optA, optB, optC}, 4, true},
		{"two correct no wrong", []uuid.UUID{optA, optC}, 2, false},
		{"one correct no wrong", []uuid.UUID{optB}, 1, false},
		{"any wrong pick is negative", []uuid.UUID{optA, optB, optD}, -2, false},
		{"only wrong pick", []uuid.UUID{optD}, -2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := model.UserAnswer{QuestionID: q.ID, IsAttempted: true, ChosenOptions: chosen(tt.picks...)}
			marks, correct := gradeAnswer(q, cfg, ans)
			if marks != tt.wantMarks || correct != tt.wantCorrect {
				t.Errorf("gradeAnswer(%s) = (%v, %v), want (%v, %v)", tt.name, marks, correct, tt.wantMarks, tt.wantCorrect)
			}
		})
	}
}

func TestGradeAnswerNumerical(t *testing.T) {
	q := model.Question{ID: uuid.New(), NumericKey: "0.5"}
	cfg := model.SectionConfig{FullMarks: 3, NegativeMarks: 1, PartialMarks: []float64{3}}

	tests := []struct {
		name      string
		value     string
		wantMarks float64
	}{
		{"exact match", "0.5", 3},
		{"equivalent float form", "0.50", 3},
		{"whitespace trimmed", " 0.5 ", 3},
		{"wrong value", "0.75", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := model.UserAnswer{QuestionID: q.ID, IsAttempted: true, Value: tt.value}
			marks, _ := gradeAnswer(q, cfg, ans)
			if marks != tt.wantMarks {
				t.Errorf("gradeAnswer(%q) = %v, want %v", tt.value, marks, tt.wantMarks)
			}
		})
	}
}

func TestNumericEqualStringFallback(t *testing.T) {
	if !numericEqual("7/2", "7/2") {
		t.Error("unparseable values should fall back to string comparison")
	}
	if numericEqual("7/2", "3.5") {
		t.Error("string fallback must not equate distinct representations")
	}
}

func TestGradeSubmission(t *testing.T) {
	optA, optB := uuid.New(), uuid.New()
	q1 := model.Question{ID: uuid.New(), Options: []model.Option{{ID: optA}, {ID: optB}}, CorrectOpts: []uuid.UUID{optA}}
	q2 := model.Question{ID: uuid.New(), NumericKey: "42"}
	q3 := model.Question{ID: uuid.New(), NumericKey: "9"}
	sections := []model.ExamSection{
		{
			Config:    model.SectionConfig{FullMarks: 4, NegativeMarks: 1, PartialMarks: []float64{4}},
			Questions: []model.Question{q1, q2},
		},
		{
			Config:    model.SectionConfig{FullMarks: 2, NegativeMarks: 0.5, PartialMarks: []float64{2}},
			Questions: []model.Question{q3},
		},
	}

	submission := &model.UserSubmission{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		ExamID:           uuid.New(),
		TimeTakenSeconds: 300,
		Answers: []model.UserAnswer{
			{QuestionID: q1.ID, IsAttempted: true, ChosenOptions: chosen(optA)},
			{QuestionID: q2.ID, IsAttempted: true, Value: "41"},
			{QuestionID: q3.ID},
		},
	}

	result := GradeSubmission(sections, submission)

	if result.Score != 3 {
		t.Errorf("Score = %v, want 3 (4 correct - 1 wrong + 0 unattempted)", result.Score)
	}
	if result.AttemptedQuestions != 2 {
		t.Errorf("AttemptedQuestions = %d, want 2", result.AttemptedQuestions)
	}
	if result.CorrectAnswers != 1 || result.IncorrectAnswers != 1 {
		t.Errorf("Correct/Incorrect = %d/%d, want 1/1", result.CorrectAnswers, result.IncorrectAnswers)
	}
	if result.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", result.Accuracy)
	}
	if result.TimeTakenSeconds != 300 {
		t.Errorf("TimeTakenSeconds = %d, want 300", result.TimeTakenSeconds)
	}
}

func TestGradeSubmissionAttemptedButEmpty(t *testing.T) {
	q := model.Question{ID: uuid.New(), NumericKey: "1"}
	sections := []model.ExamSection{{
		Config:    model.SectionConfig{FullMarks: 4, NegativeMarks: 1, PartialMarks: []float64{4}},
		Questions: []model.Question{q},
	}}
	submission := &model.UserSubmission{
		Answers: []model.UserAnswer{{QuestionID: q.ID, IsAttempted: true}},
	}

	result := GradeSubmission(sections, submission)
	if result.Score != 0 || result.AttemptedQuestions != 0 {
		t.Errorf("attempted flag with empty payload must score as unattempted, got score %v attempted %d",
			result.Score, result.AttemptedQuestions)
	}
}

func TestStanding(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		scores         []float64
		wantRank       int
		wantPercentile float64
	}{
		{"sole participant", 10, []float64{10}, 1, 100},
		{"top of three", 10, []float64{10, 5, 1}, 1, 100},
		{"middle of three", 5, []float64{10, 5, 1}, 2, 50},
		{"bottom of three", 1, []float64{10, 5, 1}, 3, 0},
		{"tied scores share rank", 5, []float64{10, 5, 5, 1}, 2, float64(100) / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, percentile := Standing(tt.score, tt.scores)
			if rank != tt.wantRank {
				t.Errorf("rank = %d, want %d", rank, tt.wantRank)
			}
			if math.Abs(percentile-tt.wantPercentile) > 1e-9 {
				t.Errorf("percentile = %v, want %v", percentile, tt.wantPercentile)
			}
		})
	}
}
