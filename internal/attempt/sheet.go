package attempt

import (
	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// Response is the transient edit buffer for the question currently on
// screen. It holds in-progress input until SaveNext commits it into the
// Sheet; navigating away without committing discards it.
type Response struct {
	Value  string
	Chosen []uuid.UUID
}

// Empty reports whether the response carries no input at all.
func (r Response) Empty() bool {
	return r.Value == "" && len(r.Chosen) == 0
}

// Toggle applies the section selection policy to an option click. In
// multi-select mode a chosen option is removed and a new one appended; in
// single-select mode the chosen list is replaced outright.
func (r *Response) Toggle(optionID uuid.UUID, multi bool) {
	if !multi {
		r.Chosen = []uuid.UUID{optionID}
		return
	}
	for i, id := range r.Chosen {
		if id == optionID {
			r.Chosen = append(r.Chosen[:i], r.Chosen[i+1:]...)
			return
		}
	}
	r.Chosen = append(r.Chosen, optionID)
}

// Sheet holds the committed UserAnswer records for an attempt, one per
// question, pre-populated empty before navigation is possible and mutated
// in place for the rest of the session.
type Sheet struct {
	order   []uuid.UUID
	answers map[uuid.UUID]*model.UserAnswer
}

// NewSheet pre-populates an empty committed answer for every question in
// paper order.
func NewSheet(paper *model.ExamPaper) *Sheet {
	s := &Sheet{answers: make(map[uuid.UUID]*model.UserAnswer)}
	for i := range paper.Sections {
		for j := range paper.Sections[i].Questions {
			qid := paper.Sections[i].Questions[j].ID
			s.order = append(s.order, qid)
			s.answers[qid] = &model.UserAnswer{QuestionID: qid}
		}
	}
	return s
}

// Lookup returns the committed answer for a question, or nil if the
// question is not part of this sheet.
func (s *Sheet) Lookup(questionID uuid.UUID) *model.UserAnswer {
	return s.answers[questionID]
}

// Commit copies a staged response into the committed answer. IsAttempted is
// set only when the response is non-empty.
func (s *Sheet) Commit(questionID uuid.UUID, resp Response) {
	ans := s.answers[questionID]
	if ans == nil {
		return
	}
	ans.Value = resp.Value
	ans.ChosenOptions = nil
	for _, id := range resp.Chosen {
		ans.ChosenOptions = append(ans.ChosenOptions, model.ChosenOption{OptionID: id})
	}
	ans.IsAttempted = !resp.Empty()
}

// Clear resets the committed answer for a question to its empty state.
func (s *Sheet) Clear(questionID uuid.UUID) {
	ans := s.answers[questionID]
	if ans == nil {
		return
	}
	ans.IsAttempted = false
	ans.Value = ""
	ans.ChosenOptions = nil
}

// Answered reports whether the committed answer for a question counts as
// answered.
func (s *Sheet) Answered(questionID uuid.UUID) bool {
	ans := s.answers[questionID]
	return ans != nil && ans.Answered()
}

// Answers returns every committed answer in paper order, attempted or not.
// This is the exact collection sent at final submission.
func (s *Sheet) Answers() []model.UserAnswer {
	out := make([]model.UserAnswer, 0, len(s.order))
	for _, qid := range s.order {
		out = append(out, *s.answers[qid])
	}
	return out
}

// responseFor rebuilds a staging buffer from the committed answer, used
// when navigation arrives at a question.
func (s *Sheet) responseFor(questionID uuid.UUID) Response {
	ans := s.answers[questionID]
	if ans == nil {
		return Response{}
	}
	return Response{Value: ans.Value, Chosen: ans.ChosenIDs()}
}
