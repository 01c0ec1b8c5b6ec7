package scraper

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cinewatch/showtime-scraper/internal/domain"
)

// Normalizer converts raw extracted entries into canonical showtime records.
// A malformed entry is rejected on its own, logged, and the rest of the
// batch continues.
type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

func (n *Normalizer) Normalize(entries []domain.RawShowtime) []domain.Showtime {
	showtimes := []domain.Showtime{}

	for _, entry := range entries {
		showtime, err := n.normalize(entry)
		if err != nil {
			n.logger.Warn("rejected malformed showtime entry", "error", err)
			continue
		}

		showtimes = append(showtimes, *showtime)
	}

	return showtimes
}

func (n *Normalizer) normalize(entry domain.RawShowtime) (*domain.Showtime, error) {
	showtimeID := strings.TrimSpace(entry.ShowtimeID)
	if showtimeID == "" {
		return nil, &NormalizationError{Reason: "empty showtime ID"}
	}

	cinemaName := strings.TrimSpace(entry.CinemaName)
	if cinemaName == "" {
		return nil, &NormalizationError{ShowtimeID: showtimeID, Reason: "empty cinema name"}
	}

	movieTitle := strings.TrimSpace(entry.MovieTitle)
	if movieTitle == "" {
		return nil, &NormalizationError{ShowtimeID: showtimeID, Reason: "empty movie title"}
	}

	bookingLink := strings.TrimSpace(entry.BookingLink)
	if bookingLink == "" {
		return nil, &NormalizationError{ShowtimeID: showtimeID, Reason: "empty booking link"}
	}

	startsAt, err := time.Parse(time.RFC3339, entry.StartsAtUTC)
	if err != nil {
		return nil, &NormalizationError{ShowtimeID: showtimeID, Reason: "unparsable showtime timestamp " + entry.StartsAtUTC}
	}

	showtime := &domain.Showtime{
		ShowtimeID:  showtimeID,
		CinemaName:  cinemaName,
		MovieTitle:  movieTitle,
		ShowtimeUTC: startsAt.UTC(),
		BookingLink: bookingLink,
		Attributes:  dedupeAttributes(entry.Attributes),
	}

	// City stays unset unless the extractor knows it; downstream keeps the
	// absent/empty distinction.
	if city := strings.TrimSpace(entry.City); city != "" {
		showtime.City = &city
	}

	return showtime, nil
}

// dedupeAttributes drops empty and repeated attribute values while keeping
// first-seen order.
func dedupeAttributes(attributes []string) []string {
	deduped := []string{}
	seen := make(map[string]struct{}, len(attributes))

	for _, attribute := range attributes {
		attribute = strings.TrimSpace(attribute)
		if attribute == "" {
			continue
		}
		if _, ok := seen[attribute]; ok {
			continue
		}

		seen[attribute] = struct{}{}
		deduped = append(deduped, attribute)
	}

	return deduped
}
