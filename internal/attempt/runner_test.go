package attempt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// fakeGateway records the protocol calls and can be told to fail any step.
type fakeGateway struct {
	paper *model.ExamPaper

	calls    []string
	recorded model.RecordSubmissionRequest
	receipt  model.SubmissionReceipt

	failRecord bool
	failScore  bool
	failReport bool
}

func newFakeGateway(paper *model.ExamPaper) *fakeGateway {
	return &fakeGateway{
		paper: paper,
		receipt: model.SubmissionReceipt{
			UserID:       uuid.New(),
			ExamID:       paper.ExamID,
			SubmissionID: uuid.New(),
		},
	}
}

func (f *fakeGateway) FetchExamPaper(_ context.Context, _ uuid.UUID) (*model.ExamPaper, error) {
	f.calls = append(f.calls, "fetch")
	if f.paper == nil {
		return nil, errors.New("boom")
	}
	return f.paper, nil
}

func (f *fakeGateway) RecordSubmission(_ context.Context, req model.RecordSubmissionRequest) (model.SubmissionReceipt, error) {
	f.calls = append(f.calls, "record")
	if f.failRecord {
		return model.SubmissionReceipt{}, errors.New("boom")
	}
	f.recorded = req
	return f.receipt, nil
}

func (f *fakeGateway) ScoreSubmission(_ context.Context, receipt model.SubmissionReceipt) (*model.AttemptResult, error) {
	f.calls = append(f.calls, "score")
	if f.failScore {
		return nil, errors.New("boom")
	}
	return &model.AttemptResult{
		ExamID:       receipt.ExamID,
		UserID:       receipt.UserID,
		SubmissionID: receipt.SubmissionID,
		Score:        12,
		Rank:         1,
		Percentile:   100,
	}, nil
}

func (f *fakeGateway) GenerateReport(_ context.Context, _ *model.AttemptResult) error {
	f.calls = append(f.calls, "report")
	if f.failReport {
		return errors.New("boom")
	}
	return nil
}

func newTestRunner(t *testing.T, gw *fakeGateway) *Runner {
	t.Helper()
	r := NewRunner(gw, gw.paper.ExamID, zerolog.Nop())
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return r
}

func dispatch(t *testing.T, r *Runner, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if err := r.Dispatch(context.Background(), ev); err != nil {
			t.Fatalf("dispatch %T: %v", ev, err)
		}
	}
}

func TestRunnerFetchFailureIsFatal(t *testing.T) {
	gw := newFakeGateway(singleSectionPaper())
	gw.paper = nil
	r := NewRunner(gw, uuid.New(), zerolog.Nop())

	if err := r.Load(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("err = %v, want ErrFetchFailed", err)
	}
}

// Full pass through the attempt: answer a choice question, answer a
// numerical question, wrap around, submit, and check the exact payload.
func TestRunnerEndToEnd(t *testing.T) {
	paper := singleSectionPaper()
	gw := newFakeGateway(paper)
	r := newTestRunner(t, gw)
	m := r.Machine()

	q1 := paper.Sections[0].Questions[0]
	q2 := paper.Sections[0].Questions[1]

	dispatch(t, r, Acknowledge{})
	dispatch(t, r, ToggleOption{OptionID: q1.Options[0].ID})
	dispatch(t, r, SaveNext{})

	if got := m.StatusOf(QuestionKey{0, 0}); got != StatusAnswered {
		t.Fatalf("Q1 status = %s, want %s", got, StatusAnswered)
	}
	if m.Cursor() != (QuestionKey{0, 1}) {
		t.Fatalf("cursor = %v, want Q2", m.Cursor())
	}

	dispatch(t, r, StageValue{Value: "42"})
	dispatch(t, r, SaveNext{})
	if m.Cursor() != (QuestionKey{0, 0}) {
		t.Fatalf("cursor = %v, want wrap to Q1", m.Cursor())
	}

	dispatch(t, r, OpenSummary{})
	dispatch(t, r, ConfirmSubmit{})

	if m.Phase() != PhaseSubmitted {
		t.Fatalf("phase = %s, want submitted", m.Phase())
	}

	want := []string{"fetch", "record", "score", "report"}
	if len(gw.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", gw.calls, want)
	}
	for i := range want {
		if gw.calls[i] != want[i] {
			t.Fatalf("calls = %v, want strict order %v", gw.calls, want)
		}
	}

	answers := gw.recorded.Answers
	if len(answers) != 2 {
		t.Fatalf("payload answers = %d, want 2", len(answers))
	}
	a1, a2 := answers[0], answers[1]
	if a1.QuestionID != q1.ID || !a1.IsAttempted || len(a1.ChosenOptions) != 1 || a1.ChosenOptions[0].OptionID != q1.Options[0].ID {
		t.Errorf("Q1 answer = %+v, want attempted with option A", a1)
	}
	if a2.QuestionID != q2.ID || !a2.IsAttempted || a2.Value != "42" {
		t.Errorf("Q2 answer = %+v, want attempted value 42", a2)
	}

	if r.Result() == nil || r.Result().SubmissionID != gw.receipt.SubmissionID {
		t.Errorf("result = %+v, want receipt ids", r.Result())
	}
}

// Timer expiry builds the same payload as an explicit confirm, from
// committed answers only; the staged edit in progress is lost.
func TestRunnerTimeoutSubmitsCommittedAnswers(t *testing.T) {
	paper := singleSectionPaper()
	paper.DurationSeconds = 2
	gw := newFakeGateway(paper)
	r := newTestRunner(t, gw)
	m := r.Machine()

	q1 := paper.Sections[0].Questions[0]

	dispatch(t, r, Acknowledge{})
	dispatch(t, r, ToggleOption{OptionID: q1.Options[1].ID})
	dispatch(t, r, SaveNext{})
	dispatch(t, r, StageValue{Value: "99"}) // never committed

	dispatch(t, r, Tick{})
	dispatch(t, r, Tick{}) // clock hits zero, forced submit

	if m.Phase() != PhaseSubmitted {
		t.Fatalf("phase = %s, want submitted after timeout", m.Phase())
	}
	if gw.recorded.TimeTakenSeconds != 2 {
		t.Errorf("time taken = %d, want 2", gw.recorded.TimeTakenSeconds)
	}

	answers := gw.recorded.Answers
	if !answers[0].Answered() {
		t.Errorf("Q1 committed answer missing from payload: %+v", answers[0])
	}
	if answers[1].IsAttempted || answers[1].Value != "" {
		t.Errorf("uncommitted staged value leaked into payload: %+v", answers[1])
	}
}

func TestRunnerRecordFailureIsRetryable(t *testing.T) {
	gw := newFakeGateway(singleSectionPaper())
	gw.failRecord = true
	r := newTestRunner(t, gw)
	m := r.Machine()

	dispatch(t, r, Acknowledge{}, OpenSummary{})
	err := r.Dispatch(context.Background(), ConfirmSubmit{})
	if !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("err = %v, want ErrSubmitFailed", err)
	}

	// Still on the summary screen, guard released: retry goes through.
	if m.Phase() != PhaseSummary {
		t.Fatalf("phase = %s, want summary", m.Phase())
	}
	gw.failRecord = false
	dispatch(t, r, ConfirmSubmit{})
	if m.Phase() != PhaseSubmitted {
		t.Errorf("phase after retry = %s, want submitted", m.Phase())
	}
}

func TestRunnerReportFailureIsNotRetryableAsSubmission(t *testing.T) {
	gw := newFakeGateway(singleSectionPaper())
	gw.failReport = true
	r := newTestRunner(t, gw)

	dispatch(t, r, Acknowledge{}, OpenSummary{})
	err := r.Dispatch(context.Background(), ConfirmSubmit{})
	if !errors.Is(err, ErrReportFailed) {
		t.Fatalf("err = %v, want ErrReportFailed", err)
	}
	if errors.Is(err, ErrSubmitFailed) {
		t.Error("report failure must not look like a submission failure")
	}
}

func TestRunnerScoringFailureDistinguished(t *testing.T) {
	gw := newFakeGateway(singleSectionPaper())
	gw.failScore = true
	r := newTestRunner(t, gw)

	dispatch(t, r, Acknowledge{}, OpenSummary{})
	err := r.Dispatch(context.Background(), ConfirmSubmit{})
	if !errors.Is(err, ErrScoringFailed) {
		t.Errorf("err = %v, want ErrScoringFailed", err)
	}
}
