package scraper

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cinewatch/showtime-scraper/internal/domain"
)

// extractScript is the DOM-query program evaluated inside the rendered page.
// It is versioned with the repository, independent of the rendering engine.
//
//go:embed extract.js
var extractScript string

// renderedItem is one schedule item as returned by extract.js, before
// expansion into per-start-time entries.
type renderedItem struct {
	MovieID      string   `json:"movieId"`
	MovieTitle   string   `json:"movieTitle"`
	StartTimes   []string `json:"startTimes"`
	BookingPaths []string `json:"bookingPaths"`
	Advisories   []string `json:"advisories"`
	Labels       []string `json:"labels"`
}

// RenderExtractor extracts showtime entries that only exist after client-side
// rendering. refDate supplies the calendar date the page's wall-clock times
// belong to; implementations must never fall back to the ambient clock.
type RenderExtractor interface {
	Extract(ctx context.Context, html string, refDate time.Time) ([]domain.RawShowtime, error)
}

type ChromeExtractorConfig struct {
	BaseURL    *url.URL       // origin booking links are resolved against
	CinemaName string         // fixed cinema name of the target page template
	City       string         // optional, empty when the template has no city
	Location   *time.Location // timezone the page's wall-clock times are in
	Timeout    time.Duration
}

// ChromeExtractor runs the extraction script in a headless Chrome context.
// Each Extract call owns an isolated browser context which is torn down on
// every exit path.
type ChromeExtractor struct {
	cfg ChromeExtractorConfig
}

func NewChromeExtractor(cfg ChromeExtractorConfig) *ChromeExtractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &ChromeExtractor{cfg: cfg}
}

func (e *ChromeExtractor) Extract(ctx context.Context, html string, refDate time.Time) ([]domain.RawShowtime, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var items []renderedItem

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}

			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(extractScript, &items),
	)
	if err != nil {
		return nil, &RenderExtractionError{Err: err}
	}

	return e.expand(items, refDate), nil
}

// expand turns one schedule item with N start times into N raw showtimes
// with derived identifiers "<rawId>-001" .. "<rawId>-00N" in start-time
// order. Times are interpreted as wall-clock "HH:MM" on refDate in the
// configured timezone, then converted to UTC. Relative booking links are
// resolved against the configured base origin.
func (e *ChromeExtractor) expand(items []renderedItem, refDate time.Time) []domain.RawShowtime {
	entries := []domain.RawShowtime{}

	for _, item := range items {
		attributes := []string{}
		attributes = append(attributes, item.Advisories...)
		attributes = append(attributes, item.Labels...)

		for i, start := range item.StartTimes {
			startsAt, err := e.localTimeToUTC(start, refDate)
			if err != nil {
				// Carry the raw text through; the normalizer rejects and
				// logs the individual entry.
				startsAt = start
			}

			bookingLink := ""
			if i < len(item.BookingPaths) {
				bookingLink = e.resolveLink(item.BookingPaths[i])
			}

			entries = append(entries, domain.RawShowtime{
				ShowtimeID:  fmt.Sprintf("%s-%03d", item.MovieID, i+1),
				CinemaName:  e.cfg.CinemaName,
				MovieTitle:  item.MovieTitle,
				StartsAtUTC: startsAt,
				BookingLink: bookingLink,
				City:        e.cfg.City,
				Attributes:  attributes,
			})
		}
	}

	return entries
}

func (e *ChromeExtractor) localTimeToUTC(hhmm string, refDate time.Time) (string, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}

	local := time.Date(
		refDate.Year(), refDate.Month(), refDate.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		e.cfg.Location,
	)

	return local.UTC().Format(time.RFC3339), nil
}

func (e *ChromeExtractor) resolveLink(path string) string {
	if e.cfg.BaseURL == nil {
		return path
	}

	ref, err := url.Parse(path)
	if err != nil {
		return path
	}

	return e.cfg.BaseURL.ResolveReference(ref).String()
}
