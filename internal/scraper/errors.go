package scraper

import "fmt"

// FetchError is the only failure the Scrape operation surfaces to its caller.
// Everything downstream of the fetch degrades to partial or empty results.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RenderExtractionError reports a failed headless-rendering pass. Callers log
// it and treat the page as having zero showtimes; it is never fatal.
type RenderExtractionError struct {
	Err error
}

func (e *RenderExtractionError) Error() string {
	return fmt.Sprintf("render extraction: %v", e.Err)
}

func (e *RenderExtractionError) Unwrap() error {
	return e.Err
}

// NormalizationError rejects a single malformed raw entry. The batch
// continues without it.
type NormalizationError struct {
	ShowtimeID string
	Reason     string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize showtime %q: %s", e.ShowtimeID, e.Reason)
}
