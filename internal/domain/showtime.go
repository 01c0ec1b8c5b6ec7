package domain

import (
	"context"
	"time"
)

// Showtime is a single scheduled screening of a movie at a specific cinema.
// ShowtimeID is the natural key: two records carrying the same ShowtimeID are
// the same screening re-observed, never two distinct screenings.
type Showtime struct {
	ID          int
	ShowtimeID  string
	CinemaName  string
	MovieTitle  string
	ShowtimeUTC time.Time
	BookingLink string
	Attributes  []string
	City        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShowtimeSummary is one row of the derived aggregate table: the number of
// raw showtimes sharing a (date, cinema, movie, attributes, city) group.
// City is normalized: NULL and empty string collapse into "".
type ShowtimeSummary struct {
	ShowtimeDate  time.Time
	CinemaName    string
	MovieTitle    string
	Attributes    []string
	City          string
	ShowtimeCount int
}

// ConflictStrategy is the policy applied when an incoming showtime's natural
// key already exists in storage.
type ConflictStrategy string

const (
	ConflictSkip    ConflictStrategy = "skip"
	ConflictReplace ConflictStrategy = "replace"
	ConflictAbort   ConflictStrategy = "abort"
)

func (s ConflictStrategy) Valid() bool {
	switch s {
	case ConflictSkip, ConflictReplace, ConflictAbort:
		return true
	}

	return false
}

type ShowtimeRepository interface {
	Insert(ctx context.Context, showtime *Showtime) error
	Replace(ctx context.Context, showtime *Showtime) error
	GetByShowtimeID(ctx context.Context, showtimeID string) (*Showtime, error)
	GetAll(ctx context.Context) ([]*Showtime, error)
}

type ShowtimeSummaryRepository interface {
	Refresh(ctx context.Context) error
	GetAll(ctx context.Context) ([]*ShowtimeSummary, error)
}
