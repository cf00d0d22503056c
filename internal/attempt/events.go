package attempt

import "github.com/google/uuid"

// Event is a discrete input to the attempt machine. Every state change goes
// through Machine.Apply with one of the concrete event types below, which
// makes the full transition table testable without a UI harness.
type Event interface {
	isEvent()
}

// Acknowledge confirms the instructions screen and starts the quiz.
type Acknowledge struct{}

// Tick advances the countdown by one second. At zero it forces the same
// submission protocol as an explicit confirm.
type Tick struct{}

// StageValue replaces the staged numeric value for the current question.
type StageValue struct{ Value string }

// ToggleOption applies an option click to the staged response using the
// current section's selection policy.
type ToggleOption struct{ OptionID uuid.UUID }

// SaveNext commits the staged response and advances to the next question.
type SaveNext struct{}

// ClearResponse resets the current question's committed answer and removes
// its review mark. It does not navigate.
type ClearResponse struct{}

// MarkReview flags the current question for review and advances without
// committing the staged response.
type MarkReview struct{}

// Next navigates forward without committing anything.
type Next struct{}

// Prev navigates backward without committing anything.
type Prev struct{}

// OpenSummary moves from the quiz to the pre-submission review screen.
type OpenSummary struct{}

// ResumeQuiz returns from the summary screen to the quiz.
type ResumeQuiz struct{}

// ConfirmSubmit is the irreversible submit confirmation from the summary.
type ConfirmSubmit struct{}

// SubmitSucceeded is fed back by the orchestrator once the submission
// protocol has fully completed; it moves the machine to its terminal phase.
type SubmitSucceeded struct{}

// SubmitFailed is fed back by the orchestrator when the submission protocol
// failed; the machine stays on its current screen and the in-flight guard
// is released so the user can retry.
type SubmitFailed struct{}

func (Acknowledge) isEvent()     {}
func (Tick) isEvent()            {}
func (StageValue) isEvent()      {}
func (ToggleOption) isEvent()    {}
func (SaveNext) isEvent()        {}
func (ClearResponse) isEvent()   {}
func (MarkReview) isEvent()      {}
func (Next) isEvent()            {}
func (Prev) isEvent()            {}
func (OpenSummary) isEvent()     {}
func (ResumeQuiz) isEvent()      {}
func (ConfirmSubmit) isEvent()   {}
func (SubmitSucceeded) isEvent() {}
func (SubmitFailed) isEvent()    {}
