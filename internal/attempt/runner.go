package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// Gateway is the boundary to the backend collaborators. Implementations
// carry the user's session token explicitly; nothing here reaches for
// ambient session state.
type Gateway interface {
	// FetchExamPaper loads the exam document. Any failure is fatal for
	// the session.
	FetchExamPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error)
	// RecordSubmission persists the full answer collection and returns
	// the generated identifiers required by the later steps.
	RecordSubmission(ctx context.Context, req model.RecordSubmissionRequest) (model.SubmissionReceipt, error)
	// ScoreSubmission computes score, accuracy, rank and percentile for a
	// recorded submission.
	ScoreSubmission(ctx context.Context, receipt model.SubmissionReceipt) (*model.AttemptResult, error)
	// GenerateReport persists the post-exam report for a scored
	// submission.
	GenerateReport(ctx context.Context, result *model.AttemptResult) error
}

// Submission protocol error kinds. Callers must distinguish them: a failed
// recording is safe to retry, a failure after recording is not, because
// re-posting would duplicate the submission.
var (
	ErrFetchFailed   = errors.New("exam fetch failed")
	ErrSubmitFailed  = errors.New("submission was not recorded, safe to retry")
	ErrScoringFailed = errors.New("submission recorded but scoring failed, do not resubmit")
	ErrReportFailed  = errors.New("submission recorded but report generation failed, do not resubmit")
)

// Runner drives a Machine: it fetches the paper, owns the one-second
// ticker, serializes events, and performs the submission protocol when the
// machine emits EffectSubmit. All state transitions happen on the goroutine
// calling Dispatch/Run, never concurrently.
type Runner struct {
	gw      Gateway
	examID  uuid.UUID
	machine *Machine
	result  *model.AttemptResult
	log     zerolog.Logger
}

// NewRunner creates a runner for one exam attempt.
func NewRunner(gw Gateway, examID uuid.UUID, log zerolog.Logger) *Runner {
	return &Runner{
		gw:     gw,
		examID: examID,
		log:    log.With().Str("component", "attempt_runner").Str("exam_id", examID.String()).Logger(),
	}
}

// Load fetches the exam document and builds the machine. Must be called
// once before any Dispatch.
func (r *Runner) Load(ctx context.Context) error {
	paper, err := r.gw.FetchExamPaper(ctx, r.examID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	m, err := NewMachine(paper)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	r.machine = m
	r.log.Info().Int("questions", paper.QuestionCount()).Msg("Exam paper loaded")
	return nil
}

// Machine exposes the underlying state machine for rendering.
func (r *Runner) Machine() *Machine { return r.machine }

// Result returns the scoring result once the attempt has been submitted.
func (r *Runner) Result() *model.AttemptResult { return r.result }

// Dispatch applies one event and, when it triggers submission, runs the
// protocol synchronously. The returned error carries the protocol error
// kind; the machine stays on its current screen when submission fails.
func (r *Runner) Dispatch(ctx context.Context, ev Event) error {
	if r.machine == nil {
		return errors.New("runner not loaded")
	}
	effect, err := r.machine.Apply(ev)
	if err != nil {
		return err
	}
	if effect == EffectSubmit {
		return r.submit(ctx)
	}
	return nil
}

// Run drives the countdown until the attempt reaches its terminal phase or
// ctx is cancelled. External events are fed through the events channel;
// ticks and events are applied on this single goroutine. The ticker is
// always torn down on return.
func (r *Runner) Run(ctx context.Context, events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if r.machine.Phase() == PhaseSubmitted {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Dispatch(ctx, Tick{}); err != nil {
				r.log.Error().Err(err).Msg("Forced submission failed")
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.Dispatch(ctx, ev); err != nil {
				r.log.Warn().Err(err).Msgf("Event %T rejected", ev)
			}
		}
	}
}

// submit performs the submission protocol: record, score, report. Each step
// is sequenced strictly after the previous one resolves because it needs
// the identifiers the previous step generated.
func (r *Runner) submit(ctx context.Context) error {
	m := r.machine

	receipt, err := r.gw.RecordSubmission(ctx, model.RecordSubmissionRequest{
		ExamID:           r.examID,
		TimeTakenSeconds: m.ElapsedSeconds(),
		Answers:          m.Answers(),
	})
	if err != nil {
		m.Apply(SubmitFailed{})
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	result, err := r.gw.ScoreSubmission(ctx, receipt)
	if err != nil {
		m.Apply(SubmitFailed{})
		return fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}

	if err := r.gw.GenerateReport(ctx, result); err != nil {
		m.Apply(SubmitFailed{})
		return fmt.Errorf("%w: %v", ErrReportFailed, err)
	}

	r.result = result
	m.Apply(SubmitSucceeded{})
	r.log.Info().
		Float64("score", result.Score).
		Int("rank", result.Rank).
		Msg("Attempt submitted")
	return nil
}
