package attempt

import (
	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// Test fixtures. Questions get fresh UUIDs per call so tests cannot leak
// state into each other through shared identifiers.

func choiceQuestion(text string, optionCount int) model.PaperQuestion {
	q := model.PaperQuestion{ID: uuid.New(), Text: text}
	for i := 0; i < optionCount; i++ {
		q.Options = append(q.Options, model.Option{ID: uuid.New()})
	}
	return q
}

func numericalQuestion(text string) model.PaperQuestion {
	return model.PaperQuestion{ID: uuid.New(), Text: text}
}

func singleSelectConfig() model.SectionConfig {
	return model.SectionConfig{FullMarks: 4, NegativeMarks: 1, PartialMarks: []float64{4}}
}

func multiSelectConfig() model.SectionConfig {
	return model.SectionConfig{FullMarks: 4, NegativeMarks: 2, PartialMarks: []float64{1, 2, 3, 4}}
}

// twoSectionPaper: section 0 has two single-select choice questions,
// section 1 has two numerical questions.
func twoSectionPaper() *model.ExamPaper {
	return &model.ExamPaper{
		ExamID:          uuid.New(),
		Title:           "Mock Test 1",
		DurationSeconds: 3600,
		Sections: []model.PaperSection{
			{
				Name:   "Physics",
				Config: singleSelectConfig(),
				Questions: []model.PaperQuestion{
					choiceQuestion("P1", 4),
					choiceQuestion("P2", 4),
				},
			},
			{
				Name:   "Maths",
				Config: singleSelectConfig(),
				Questions: []model.PaperQuestion{
					numericalQuestion("M1"),
					numericalQuestion("M2"),
				},
			},
		},
	}
}

// singleSectionPaper: one section, Q1 single-choice with options [A, B],
// Q2 numerical.
func singleSectionPaper() *model.ExamPaper {
	return &model.ExamPaper{
		ExamID:          uuid.New(),
		Title:           "Mini Mock",
		DurationSeconds: 600,
		Sections: []model.PaperSection{
			{
				Name:   "General",
				Config: singleSelectConfig(),
				Questions: []model.PaperQuestion{
					choiceQuestion("Q1", 2),
					numericalQuestion("Q2"),
				},
			},
		},
	}
}

// multiSelectPaper: one multi-select section with one question.
func multiSelectPaper() *model.ExamPaper {
	return &model.ExamPaper{
		ExamID:          uuid.New(),
		Title:           "Multi Select",
		DurationSeconds: 300,
		Sections: []model.PaperSection{
			{
				Name:      "Chemistry",
				Config:    multiSelectConfig(),
				Questions: []model.PaperQuestion{choiceQuestion("C1", 4)},
			},
		},
	}
}

func mustMachine(paper *model.ExamPaper) *Machine {
	m, err := NewMachine(paper)
	if err != nil {
		panic(err)
	}
	return m
}

func mustApply(m *Machine, ev Event) Effect {
	effect, err := m.Apply(ev)
	if err != nil {
		panic(err)
	}
	return effect
}
