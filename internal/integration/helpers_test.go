package integration_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/cinewatch/showtime-scraper/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureShowtime(showtimeID string, start time.Time) domain.Showtime {
	return domain.Showtime{
		ShowtimeID:  showtimeID,
		CinemaName:  "Pathe SCHEVENINGEN",
		MovieTitle:  "The Long Night",
		ShowtimeUTC: start,
		BookingLink: "https://www.pathe.nl/booking/" + showtimeID,
		Attributes:  []string{"Dolby Atmos"},
	}
}
