package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/config"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/repository"
)

const (
	ReportBatchSize    = 50
	ReportBatchTimeout = 2 * time.Second
	ReportPollTimeout  = 1 * time.Second
)

// ReportWorker consumes the report persistence queue and writes report rows
// to PostgreSQL in batches. Report generation returns the document to the
// caller synchronously; only durability runs here.
type ReportWorker struct {
	reportRepo *repository.ReportRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(reportRepo *repository.ReportRepository, rdb *redis.Client, log zerolog.Logger) *ReportWorker {
	return &ReportWorker{
		reportRepo: reportRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "report_worker").Logger(),
	}
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *ReportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ReportWorker started")

	batch := make([]*model.ExamReport, 0, ReportBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ReportBatchSize || time.Since(lastFlush) >= ReportBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ReportPollTimeout, config.WorkerKey.PersistReportsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var report model.ExamReport
			if err := json.Unmarshal([]byte(item[1]), &report); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &report)
		}
	}
}

// flushSafe bulk-inserts the batch, falling back to single inserts with a
// requeue for anything that still fails.
func (w *ReportWorker) flushSafe(ctx context.Context, batch []*model.ExamReport) {
	if len(batch) == 0 {
		return
	}

	if err := w.reportRepo.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("Bulk report insert failed, using fallback")

		for _, rep := range batch {
			if err := w.reportRepo.InsertSingle(ctx, rep); err != nil {
				w.log.Error().Err(err).
					Str("submission_id", rep.SubmissionID.String()).
					Msg("Single insert failed, requeueing")
				raw, _ := json.Marshal(rep)
				w.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(batch)).Msg("Report batch persisted")
}
