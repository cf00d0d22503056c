package attempt

import (
	"errors"
	"fmt"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// Phase is the coarse screen-level state of an attempt. The progression is
// linear (info -> quiz -> summary -> submitted) except that summary may
// return to quiz on resume.
type Phase string

const (
	PhaseInfo      Phase = "info"
	PhaseQuiz      Phase = "quiz"
	PhaseSummary   Phase = "summary"
	PhaseSubmitted Phase = "submitted"
)

// Effect tells the orchestrator what side work an applied event requires.
type Effect int

const (
	EffectNone Effect = iota
	// EffectSubmit instructs the orchestrator to run the submission
	// protocol. Emitted at most once per attempt: the in-flight guard
	// stays set until SubmitFailed releases it.
	EffectSubmit
)

// Machine transition errors.
var (
	ErrEmptyPaper        = errors.New("exam paper has no questions")
	ErrCompleted         = errors.New("attempt already submitted")
	ErrInvalidTransition = errors.New("event not valid in current phase")
	ErrSubmitInFlight    = errors.New("submission already in flight")
	ErrNotNumerical      = errors.New("question does not take a numeric value")
	ErrNotChoice         = errors.New("question has no options")
	ErrUnknownOption     = errors.New("option does not belong to current question")
)

// Machine is the attempt-taking state machine. It owns the committed answer
// sheet, the staging buffer, the visited and marked sets, the countdown and
// the screen phase, and mutates them only through Apply. It performs no I/O
// and is not safe for concurrent use; the Runner serializes events onto it.
type Machine struct {
	paper      *model.ExamPaper
	phase      Phase
	cursor     QuestionKey
	sheet      *Sheet
	staging    Response
	visited    keySet
	marked     keySet
	remaining  int
	submitting bool
}

// NewMachine builds a machine for a fetched paper: phase info, cursor on
// the first question of the first section (pre-visited), every answer
// pre-populated empty, full duration on the clock.
func NewMachine(paper *model.ExamPaper) (*Machine, error) {
	if len(paper.Sections) == 0 || len(paper.Sections[0].Questions) == 0 {
		return nil, ErrEmptyPaper
	}
	for i := range paper.Sections {
		if len(paper.Sections[i].Questions) == 0 {
			return nil, fmt.Errorf("%w: section %q", ErrEmptyPaper, paper.Sections[i].Name)
		}
	}

	m := &Machine{
		paper:     paper,
		phase:     PhaseInfo,
		sheet:     NewSheet(paper),
		visited:   make(keySet),
		marked:    make(keySet),
		remaining: paper.DurationSeconds,
	}
	m.visited.add(m.cursor)
	return m, nil
}

// Apply runs one event through the transition table and reports the side
// effect the orchestrator must perform, if any.
func (m *Machine) Apply(ev Event) (Effect, error) {
	// Orchestrator feedback is legal in any non-terminal phase while a
	// submission is in flight.
	switch ev.(type) {
	case SubmitSucceeded:
		if !m.submitting {
			return EffectNone, fmt.Errorf("%w: no submission in flight", ErrInvalidTransition)
		}
		m.submitting = false
		m.phase = PhaseSubmitted
		return EffectNone, nil
	case SubmitFailed:
		if !m.submitting {
			return EffectNone, fmt.Errorf("%w: no submission in flight", ErrInvalidTransition)
		}
		m.submitting = false
		return EffectNone, nil
	}

	if m.phase == PhaseSubmitted {
		return EffectNone, ErrCompleted
	}

	switch ev := ev.(type) {
	case Acknowledge:
		return m.acknowledge()
	case Tick:
		return m.tick()
	case StageValue:
		return EffectNone, m.stageValue(ev.Value)
	case ToggleOption:
		return EffectNone, m.toggleOption(ev)
	case SaveNext:
		return m.saveNext()
	case ClearResponse:
		return m.clearResponse()
	case MarkReview:
		return m.markReview()
	case Next:
		return m.navigate(true)
	case Prev:
		return m.navigate(false)
	case OpenSummary:
		return m.openSummary()
	case ResumeQuiz:
		return m.resumeQuiz()
	case ConfirmSubmit:
		return m.confirmSubmit()
	default:
		return EffectNone, fmt.Errorf("unknown event %T", ev)
	}
}

// ── Transitions ─────────────────────────────────────────────────────────

func (m *Machine) acknowledge() (Effect, error) {
	if m.phase != PhaseInfo {
		return EffectNone, fmt.Errorf("%w: acknowledge in %s", ErrInvalidTransition, m.phase)
	}
	m.phase = PhaseQuiz
	m.staging = m.sheet.responseFor(m.currentQuestion().ID)
	return EffectNone, nil
}

func (m *Machine) tick() (Effect, error) {
	if m.phase != PhaseQuiz && m.phase != PhaseSummary {
		return EffectNone, nil // clock not running on the info screen
	}
	if m.remaining > 0 {
		m.remaining--
	}
	if m.remaining == 0 && !m.submitting {
		// Timeout carries whatever answers are committed; uncommitted
		// staging edits are lost by the committed-state rule.
		m.submitting = true
		return EffectSubmit, nil
	}
	return EffectNone, nil
}

func (m *Machine) stageValue(value string) error {
	if err := m.requireQuiz("stage value"); err != nil {
		return err
	}
	if !m.currentQuestion().Numerical() {
		return ErrNotNumerical
	}
	m.staging.Value = value
	return nil
}

func (m *Machine) toggleOption(ev ToggleOption) error {
	if err := m.requireQuiz("toggle option"); err != nil {
		return err
	}
	q := m.currentQuestion()
	if q.Numerical() {
		return ErrNotChoice
	}
	found := false
	for _, opt := range q.Options {
		if opt.ID == ev.OptionID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownOption
	}
	m.staging.Toggle(ev.OptionID, m.currentSection().Config.MultiSelect())
	return nil
}

func (m *Machine) saveNext() (Effect, error) {
	if err := m.requireQuiz("save & next"); err != nil {
		return EffectNone, err
	}
	m.sheet.Commit(m.currentQuestion().ID, m.staging)
	m.arrive(m.nextKey())
	return EffectNone, nil
}

func (m *Machine) clearResponse() (Effect, error) {
	if err := m.requireQuiz("clear"); err != nil {
		return EffectNone, err
	}
	m.sheet.Clear(m.currentQuestion().ID)
	m.marked.remove(m.cursor)
	m.staging = Response{}
	return EffectNone, nil
}

func (m *Machine) markReview() (Effect, error) {
	if err := m.requireQuiz("mark for review"); err != nil {
		return EffectNone, err
	}
	// Marking neither requires nor commits an answer; the staged edit is
	// discarded by the move, matching the committed-state rule.
	m.marked.add(m.cursor)
	m.arrive(m.nextKey())
	return EffectNone, nil
}

func (m *Machine) navigate(forward bool) (Effect, error) {
	if err := m.requireQuiz("navigate"); err != nil {
		return EffectNone, err
	}
	if forward {
		m.arrive(m.nextKey())
	} else {
		m.arrive(m.prevKey())
	}
	return EffectNone, nil
}

func (m *Machine) openSummary() (Effect, error) {
	if err := m.requireQuiz("open summary"); err != nil {
		return EffectNone, err
	}
	m.phase = PhaseSummary
	return EffectNone, nil
}

func (m *Machine) resumeQuiz() (Effect, error) {
	if m.phase != PhaseSummary {
		return EffectNone, fmt.Errorf("%w: resume in %s", ErrInvalidTransition, m.phase)
	}
	if m.submitting {
		return EffectNone, ErrSubmitInFlight
	}
	m.phase = PhaseQuiz
	m.staging = m.sheet.responseFor(m.currentQuestion().ID)
	return EffectNone, nil
}

func (m *Machine) confirmSubmit() (Effect, error) {
	if m.phase != PhaseSummary {
		return EffectNone, fmt.Errorf("%w: confirm submit in %s", ErrInvalidTransition, m.phase)
	}
	if m.submitting {
		return EffectNone, ErrSubmitInFlight
	}
	m.submitting = true
	return EffectSubmit, nil
}

func (m *Machine) requireQuiz(action string) error {
	if m.phase != PhaseQuiz {
		return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, action, m.phase)
	}
	if m.submitting {
		return ErrSubmitInFlight
	}
	return nil
}

// ── Navigation ──────────────────────────────────────────────────────────

// nextKey advances to the next question in the section, wrapping to the
// first question of the next section (circularly) at a section boundary.
func (m *Machine) nextKey() QuestionKey {
	k := m.cursor
	if k.Question+1 < len(m.paper.Sections[k.Section].Questions) {
		return QuestionKey{Section: k.Section, Question: k.Question + 1}
	}
	return QuestionKey{Section: (k.Section + 1) % len(m.paper.Sections)}
}

// prevKey is the mirror of nextKey: from question 0 it wraps to the last
// question of the previous section, and from section 0 to the last section.
func (m *Machine) prevKey() QuestionKey {
	k := m.cursor
	if k.Question > 0 {
		return QuestionKey{Section: k.Section, Question: k.Question - 1}
	}
	s := k.Section - 1
	if s < 0 {
		s = len(m.paper.Sections) - 1
	}
	return QuestionKey{Section: s, Question: len(m.paper.Sections[s].Questions) - 1}
}

// arrive moves the cursor, marks the destination visited, and reloads the
// staging buffer from the committed answer, discarding uncommitted edits.
func (m *Machine) arrive(k QuestionKey) {
	m.cursor = k
	m.visited.add(k)
	m.staging = m.sheet.responseFor(m.currentQuestion().ID)
}

func (m *Machine) currentSection() *model.PaperSection {
	return &m.paper.Sections[m.cursor.Section]
}

func (m *Machine) currentQuestion() *model.PaperQuestion {
	return &m.paper.Sections[m.cursor.Section].Questions[m.cursor.Question]
}

// ── Read accessors ──────────────────────────────────────────────────────

func (m *Machine) Phase() Phase          { return m.phase }
func (m *Machine) Cursor() QuestionKey   { return m.cursor }
func (m *Machine) RemainingSeconds() int { return m.remaining }
func (m *Machine) Staging() Response     { return m.staging }
func (m *Machine) Submitting() bool      { return m.submitting }
func (m *Machine) Paper() *model.ExamPaper { return m.paper }

// ElapsedSeconds is the time consumed so far, sent with the submission.
func (m *Machine) ElapsedSeconds() int {
	return m.paper.DurationSeconds - m.remaining
}

// QuestionAt returns the question at a key, or nil if out of range.
func (m *Machine) QuestionAt(k QuestionKey) *model.PaperQuestion {
	if k.Section < 0 || k.Section >= len(m.paper.Sections) {
		return nil
	}
	qs := m.paper.Sections[k.Section].Questions
	if k.Question < 0 || k.Question >= len(qs) {
		return nil
	}
	return &qs[k.Question]
}

// StatusOf derives the display status for the question at a key.
func (m *Machine) StatusOf(k QuestionKey) Status {
	q := m.QuestionAt(k)
	if q == nil {
		return StatusNotVisited
	}
	return DeriveStatus(m.visited.has(k), m.sheet.Answered(q.ID), m.marked.has(k))
}

// Answers exposes the committed answer collection in paper order.
func (m *Machine) Answers() []model.UserAnswer {
	return m.sheet.Answers()
}
