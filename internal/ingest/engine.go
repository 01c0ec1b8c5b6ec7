package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cinewatch/showtime-scraper/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome is the terminal state of one record's application. Conflict
// resolutions are named branches of normal operation, not errors.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeReplaced Outcome = "replaced"
	OutcomeAborted  Outcome = "aborted"
	OutcomeFailed   Outcome = "failed"
)

// Engine upserts normalized showtimes one record at a time, resolving
// natural-key collisions with the configured strategy, and refreshes the
// summary table after every record so the aggregate never trails the raw
// table by more than one record-application.
type Engine struct {
	showtimes domain.ShowtimeRepository
	summaries domain.ShowtimeSummaryRepository
	strategy  domain.ConflictStrategy
	logger    *slog.Logger
	outcomes  metric.Int64Counter
}

func NewEngine(
	showtimes domain.ShowtimeRepository,
	summaries domain.ShowtimeSummaryRepository,
	strategy domain.ConflictStrategy,
	logger *slog.Logger,
) *Engine {
	meter := otel.Meter("github.com/cinewatch/showtime-scraper/internal/ingest")

	outcomes, err := meter.Int64Counter("ingest.outcomes",
		metric.WithDescription("Number of ingested showtime records by outcome"))
	if err != nil {
		logger.Error("failed to create ingest counter", "error", err)
	}

	return &Engine{
		showtimes: showtimes,
		summaries: summaries,
		strategy:  strategy,
		logger:    logger,
		outcomes:  outcomes,
	}
}

// Ingest applies the batch in order. Records are independent: a failure on
// one never prevents processing of the rest. The returned error reports only
// that some record or summary refresh failed after all records were tried.
func (e *Engine) Ingest(ctx context.Context, showtimes []domain.Showtime) error {
	var lastErr error

	for i := range showtimes {
		showtime := &showtimes[i]

		outcome, err := e.apply(ctx, showtime)
		if err != nil {
			lastErr = err
			e.logger.Error("failed to apply showtime record",
				"showtime_id", showtime.ShowtimeID,
				"strategy", e.strategy,
				"error", err,
			)
		} else {
			e.logger.Info("showtime record applied",
				"showtime_id", showtime.ShowtimeID,
				"cinema_name", showtime.CinemaName,
				"outcome", outcome,
				"strategy", e.strategy,
			)
		}

		e.count(ctx, outcome)

		if err := e.summaries.Refresh(ctx); err != nil {
			lastErr = err
			e.logger.Error("failed to refresh showtime summary", "error", err)
		}
	}

	return lastErr
}

func (e *Engine) apply(ctx context.Context, showtime *domain.Showtime) (Outcome, error) {
	err := e.showtimes.Insert(ctx, showtime)
	if err == nil {
		return OutcomeInserted, nil
	}

	if !errors.Is(err, domain.ErrShowtimeExists) {
		return OutcomeFailed, err
	}

	switch e.strategy {
	case domain.ConflictSkip:
		return OutcomeSkipped, nil
	case domain.ConflictReplace:
		if err := e.showtimes.Replace(ctx, showtime); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeReplaced, nil
	case domain.ConflictAbort:
		// Per-record abort: storage stays untouched, the batch moves on.
		return OutcomeAborted, nil
	default:
		return OutcomeFailed, errors.New("unknown conflict strategy " + string(e.strategy))
	}
}

func (e *Engine) count(ctx context.Context, outcome Outcome) {
	if e.outcomes == nil {
		return
	}

	e.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.String("strategy", string(e.strategy)),
	))
}
