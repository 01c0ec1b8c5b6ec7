package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Ingestor persists a batch of normalized showtimes. Per-record conflicts
// are resolved inside the ingestor; an error here means storage itself is
// unavailable, not that a record conflicted.
type Ingestor interface {
	Ingest(ctx context.Context, showtimes []domain.Showtime) error
}

// PageCache caches fetched markup keyed by URL so that repeat scrapes of the
// same page within the TTL skip the network fetch.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, html string) error
}

// Service runs the full pipeline for one page: fetch, static extraction,
// render extraction, normalization, ingestion. The only failure it surfaces
// is a *FetchError; every later stage degrades to partial or empty results.
type Service struct {
	fetcher    Fetcher
	cache      PageCache // nil when caching is disabled
	static     *StaticExtractor
	render     RenderExtractor
	normalizer *Normalizer
	ingestor   Ingestor
	logger     *slog.Logger
	scrapes    metric.Int64Counter
}

func NewService(
	fetcher Fetcher,
	cache PageCache,
	static *StaticExtractor,
	render RenderExtractor,
	normalizer *Normalizer,
	ingestor Ingestor,
	logger *slog.Logger,
) *Service {
	meter := otel.Meter("github.com/cinewatch/showtime-scraper/internal/scraper")

	scrapes, err := meter.Int64Counter("scraper.scrapes",
		metric.WithDescription("Number of scrape pipeline invocations"))
	if err != nil {
		logger.Error("failed to create scrape counter", "error", err)
	}

	return &Service{
		fetcher:    fetcher,
		cache:      cache,
		static:     static,
		render:     render,
		normalizer: normalizer,
		ingestor:   ingestor,
		logger:     logger,
		scrapes:    scrapes,
	}
}

// Scrape fetches the page at url and runs it through the pipeline. refDate
// supplies the calendar date rendered wall-clock times are interpreted on.
func (s *Service) Scrape(ctx context.Context, url string, refDate time.Time) (*domain.WebsiteData, error) {
	logger := s.logger.With("scrape_job_id", uuid.NewString(), "url", url)

	html, err := s.loadPage(ctx, url, logger)
	if err != nil {
		s.count(ctx, "fetch_error")
		return nil, err
	}

	metadata := s.static.Extract(html)

	raws, err := s.render.Extract(ctx, html, refDate)
	if err != nil {
		var renderErr *RenderExtractionError
		if !errors.As(err, &renderErr) {
			renderErr = &RenderExtractionError{Err: err}
		}

		logger.Warn("render extraction failed, treating page as empty", "error", renderErr)
		raws = nil
	}

	showtimes := s.normalizer.Normalize(raws)

	if err := s.ingestor.Ingest(ctx, showtimes); err != nil {
		// Extraction succeeded; report the data and leave persistence
		// failures to the log.
		logger.Error("showtime ingestion failed", "error", err)
	}

	logger.Info("scrape completed", "showtimes", len(showtimes))
	s.count(ctx, "ok")

	return &domain.WebsiteData{
		Metadata:  metadata,
		Showtimes: showtimes,
	}, nil
}

func (s *Service) loadPage(ctx context.Context, url string, logger *slog.Logger) (string, error) {
	if s.cache != nil {
		html, ok, err := s.cache.Get(ctx, url)
		if err != nil {
			logger.Warn("page cache lookup failed", "error", err)
		} else if ok {
			logger.Info("page served from cache")
			return html, nil
		}
	}

	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, url, html); err != nil {
			logger.Warn("page cache store failed", "error", err)
		}
	}

	return html, nil
}

func (s *Service) count(ctx context.Context, result string) {
	if s.scrapes == nil {
		return
	}

	s.scrapes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
