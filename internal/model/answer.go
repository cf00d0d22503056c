package model

import "github.com/google/uuid"

// ChosenOption is a single selected option inside a UserAnswer.
type ChosenOption struct {
	OptionID uuid.UUID `json:"option_id"`
}

// UserAnswer is the committed answer record for one question. Exactly one
// exists per question for the lifetime of an attempt: created empty during
// pre-population and mutated in place, never deleted.
type UserAnswer struct {
	QuestionID    uuid.UUID      `json:"question_id"`
	IsAttempted   bool           `json:"is_attempted"`
	Value         string         `json:"value"`
	ChosenOptions []ChosenOption `json:"chosen_options"`
}

// Answered reports whether the answer counts as answered: it must be
// attempted AND carry a non-empty value or at least one chosen option. An
// attempted flag with an empty payload does not count.
func (a UserAnswer) Answered() bool {
	return a.IsAttempted && (a.Value != "" || len(a.ChosenOptions) > 0)
}

// ChosenIDs returns the chosen option IDs as a flat slice.
func (a UserAnswer) ChosenIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(a.ChosenOptions))
	for i, c := range a.ChosenOptions {
		ids[i] = c.OptionID
	}
	return ids
}
