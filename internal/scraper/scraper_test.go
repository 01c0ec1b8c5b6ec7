package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/google/go-cmp/cmp"
)

type stubFetcher struct {
	html   string
	err    error
	called int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.called++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

type stubRenderExtractor struct {
	entries []domain.RawShowtime
	err     error
}

func (r *stubRenderExtractor) Extract(ctx context.Context, html string, refDate time.Time) ([]domain.RawShowtime, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.entries, nil
}

type stubIngestor struct {
	batches [][]domain.Showtime
	err     error
}

func (i *stubIngestor) Ingest(ctx context.Context, showtimes []domain.Showtime) error {
	i.batches = append(i.batches, showtimes)
	return i.err
}

type stubPageCache struct {
	pages map[string]string
	sets  int
}

func (c *stubPageCache) Get(ctx context.Context, url string) (string, bool, error) {
	html, ok := c.pages[url]
	return html, ok, nil
}

func (c *stubPageCache) Set(ctx context.Context, url, html string) error {
	c.pages[url] = html
	c.sets++
	return nil
}

func newTestService(fetcher Fetcher, cache PageCache, render RenderExtractor, ingestor Ingestor) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(fetcher, cache, NewStaticExtractor(), render, NewNormalizer(logger), ingestor, logger)
}

func TestServiceScrape(t *testing.T) {
	refDate := time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC)

	t.Run("successful pipeline ingests normalized showtimes", func(t *testing.T) {
		fetcher := &stubFetcher{html: `<html><head><title>Cinema</title></head></html>`}
		render := &stubRenderExtractor{
			entries: []domain.RawShowtime{
				{
					ShowtimeID:  "m-001",
					CinemaName:  "X",
					MovieTitle:  "M1",
					StartsAtUTC: "2023-11-03T17:30:00Z",
					BookingLink: "https://example.com/b",
					Attributes:  []string{"Standard"},
				},
			},
		}
		ingestor := &stubIngestor{}

		svc := newTestService(fetcher, nil, render, ingestor)

		data, err := svc.Scrape(context.Background(), "https://example.com/showtimes", refDate)
		if err != nil {
			t.Fatalf("Scrape() unexpected error: %v", err)
		}

		if data.Metadata.Title != "Cinema" {
			t.Errorf("Metadata.Title = %q, want %q", data.Metadata.Title, "Cinema")
		}

		want := []domain.Showtime{
			{
				ShowtimeID:  "m-001",
				CinemaName:  "X",
				MovieTitle:  "M1",
				ShowtimeUTC: time.Date(2023, 11, 3, 17, 30, 0, 0, time.UTC),
				BookingLink: "https://example.com/b",
				Attributes:  []string{"Standard"},
			},
		}

		if diff := cmp.Diff(want, data.Showtimes); diff != "" {
			t.Errorf("Scrape() showtimes mismatch (-want +got):\n%s", diff)
		}

		if len(ingestor.batches) != 1 {
			t.Fatalf("Ingest called %d times, want 1", len(ingestor.batches))
		}
		if diff := cmp.Diff(want, ingestor.batches[0]); diff != "" {
			t.Errorf("ingested batch mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fetch failure surfaces FetchError and skips ingestion", func(t *testing.T) {
		fetcher := &stubFetcher{err: &FetchError{URL: "https://example.com", StatusCode: 500}}
		ingestor := &stubIngestor{}

		svc := newTestService(fetcher, nil, &stubRenderExtractor{}, ingestor)

		_, err := svc.Scrape(context.Background(), "https://example.com", refDate)

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("Scrape() error = %v, want *FetchError", err)
		}
		if len(ingestor.batches) != 0 {
			t.Errorf("Ingest called %d times, want 0", len(ingestor.batches))
		}
	})

	t.Run("render failure degrades to zero showtimes", func(t *testing.T) {
		fetcher := &stubFetcher{html: `<html><head><title>Cinema</title></head></html>`}
		render := &stubRenderExtractor{err: &RenderExtractionError{Err: errors.New("script error")}}
		ingestor := &stubIngestor{}

		svc := newTestService(fetcher, nil, render, ingestor)

		data, err := svc.Scrape(context.Background(), "https://example.com", refDate)
		if err != nil {
			t.Fatalf("Scrape() unexpected error: %v", err)
		}

		if len(data.Showtimes) != 0 {
			t.Errorf("Scrape() showtimes = %v, want empty", data.Showtimes)
		}
		if data.Metadata.Title != "Cinema" {
			t.Errorf("Metadata.Title = %q, want %q", data.Metadata.Title, "Cinema")
		}
	})

	t.Run("ingestion failure does not fail the scrape", func(t *testing.T) {
		fetcher := &stubFetcher{html: `<html></html>`}
		ingestor := &stubIngestor{err: errors.New("db down")}

		svc := newTestService(fetcher, nil, &stubRenderExtractor{}, ingestor)

		_, err := svc.Scrape(context.Background(), "https://example.com", refDate)
		if err != nil {
			t.Fatalf("Scrape() unexpected error: %v", err)
		}
	})

	t.Run("cache hit skips the fetch", func(t *testing.T) {
		fetcher := &stubFetcher{html: "fresh"}
		cache := &stubPageCache{pages: map[string]string{
			"https://example.com": `<html><head><title>Cached</title></head></html>`,
		}}

		svc := newTestService(fetcher, cache, &stubRenderExtractor{}, &stubIngestor{})

		data, err := svc.Scrape(context.Background(), "https://example.com", refDate)
		if err != nil {
			t.Fatalf("Scrape() unexpected error: %v", err)
		}

		if fetcher.called != 0 {
			t.Errorf("Fetch called %d times, want 0", fetcher.called)
		}
		if data.Metadata.Title != "Cached" {
			t.Errorf("Metadata.Title = %q, want %q", data.Metadata.Title, "Cached")
		}
	})

	t.Run("cache miss stores the fetched page", func(t *testing.T) {
		fetcher := &stubFetcher{html: "<html></html>"}
		cache := &stubPageCache{pages: map[string]string{}}

		svc := newTestService(fetcher, cache, &stubRenderExtractor{}, &stubIngestor{})

		_, err := svc.Scrape(context.Background(), "https://example.com", refDate)
		if err != nil {
			t.Fatalf("Scrape() unexpected error: %v", err)
		}

		if fetcher.called != 1 {
			t.Errorf("Fetch called %d times, want 1", fetcher.called)
		}
		if cache.sets != 1 {
			t.Errorf("cache Set called %d times, want 1", cache.sets)
		}
	})
}
