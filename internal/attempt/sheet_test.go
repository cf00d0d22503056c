package attempt

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

func TestToggleSingleSelectReplaces(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	var r Response
	r.Toggle(a, false)
	r.Toggle(b, false)

	if len(r.Chosen) != 1 {
		t.Fatalf("chosen length = %d, want 1", len(r.Chosen))
	}
	if r.Chosen[0] != b {
		t.Errorf("chosen = %v, want %v", r.Chosen[0], b)
	}
}

func TestToggleMultiSelectToggles(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	var r Response
	r.Toggle(a, true)
	r.Toggle(b, true)
	if len(r.Chosen) != 2 {
		t.Fatalf("chosen length = %d, want 2", len(r.Chosen))
	}

	// Re-selecting a chosen option removes it.
	r.Toggle(a, true)
	if len(r.Chosen) != 1 || r.Chosen[0] != b {
		t.Errorf("chosen = %v, want [%v]", r.Chosen, b)
	}
}

func TestSheetPrePopulatesEveryQuestion(t *testing.T) {
	paper := twoSectionPaper()
	sheet := NewSheet(paper)

	answers := sheet.Answers()
	if len(answers) != paper.QuestionCount() {
		t.Fatalf("answers = %d, want %d", len(answers), paper.QuestionCount())
	}
	for _, a := range answers {
		if a.IsAttempted || a.Value != "" || len(a.ChosenOptions) != 0 {
			t.Errorf("answer %s not empty: %+v", a.QuestionID, a)
		}
	}
}

func TestSheetCommitSetsAttemptedOnlyWhenNonEmpty(t *testing.T) {
	paper := twoSectionPaper()
	sheet := NewSheet(paper)
	qid := paper.Sections[0].Questions[0].ID

	sheet.Commit(qid, Response{})
	if sheet.Lookup(qid).IsAttempted {
		t.Error("empty commit should not set IsAttempted")
	}

	sheet.Commit(qid, Response{Chosen: []uuid.UUID{paper.Sections[0].Questions[0].Options[0].ID}})
	if !sheet.Answered(qid) {
		t.Error("non-empty commit should count as answered")
	}
}

func TestNumericalAnsweredByValueOnly(t *testing.T) {
	paper := twoSectionPaper()
	sheet := NewSheet(paper)
	// Section 1 question 0 is numerical in the fixture.
	qid := paper.Sections[1].Questions[0].ID

	sheet.Commit(qid, Response{Value: "42"})
	if !sheet.Answered(qid) {
		t.Error("numerical question with committed value should be answered")
	}

	sheet.Commit(qid, Response{Value: ""})
	if sheet.Answered(qid) {
		t.Error("numerical question with empty value should not be answered")
	}
}

func TestAttemptedWithoutPayloadIsNotAnswered(t *testing.T) {
	a := model.UserAnswer{QuestionID: uuid.New(), IsAttempted: true}
	if a.Answered() {
		t.Error("IsAttempted with empty value and no options must not count as answered")
	}
}

func TestSheetClearResets(t *testing.T) {
	paper := twoSectionPaper()
	sheet := NewSheet(paper)
	q := paper.Sections[0].Questions[0]

	sheet.Commit(q.ID, Response{Chosen: []uuid.UUID{q.Options[0].ID}})
	sheet.Clear(q.ID)

	ans := sheet.Lookup(q.ID)
	if ans.IsAttempted || ans.Value != "" || len(ans.ChosenOptions) != 0 {
		t.Errorf("cleared answer not empty: %+v", ans)
	}
}
