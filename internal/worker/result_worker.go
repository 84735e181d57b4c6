package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

const (
	ResultPollTimeout  = 1 * time.Second
	ResultRetryBackoff = 3 * time.Second
)

// ResultWorker drains the persist-results queue. Submissions land here only
// when the synchronous insert failed, so the queue is normally empty.
// Inserts are idempotent on the session ID, making redelivery harmless.
type ResultWorker struct {
	results engine.ResultStore
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewResultWorker(results engine.ResultStore, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		results: results,
		rdb:     rdb,
		log:     log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. ResultWorker stopping...")
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var cand model.ResultCandidate
			if err := json.Unmarshal([]byte(item[1]), &cand); err != nil {
				w.log.Error().Err(err).Msg("Invalid result payload, dropping")
				continue
			}

			w.persist(ctx, item[1], cand)
		}
	}
}

func (w *ResultWorker) persist(ctx context.Context, raw string, cand model.ResultCandidate) {
	result, err := w.results.Insert(ctx, cand)
	if err != nil {
		w.log.Warn().Err(err).
			Str("session_id", cand.ID.String()).
			Msg("result insert failed — requeueing")
		w.rdb.RPush(ctx, config.PersistResultsQueue, raw)

		select {
		case <-ctx.Done():
		case <-time.After(ResultRetryBackoff):
		}
		return
	}

	w.log.Info().
		Str("session_id", cand.ID.String()).
		Str("callsign", result.Callsign).
		Int("score", result.Score).
		Bool("passed", result.Passed).
		Msg("queued result persisted")
}
