package repository

import (
	"context"
	"errors"

	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

// Insert persists a new showtime. A natural-key collision on showtime_id is
// reported as domain.ErrShowtimeExists so the caller can apply its conflict
// strategy; the uniqueness constraint is the sole concurrency-safety
// mechanism, so concurrent inserts of the same key resolve to one row.
func (p *PostgresShowtimeRepository) Insert(ctx context.Context, showtime *domain.Showtime) error {
	query := `INSERT INTO showtimes (showtime_id, cinema_name, movie_title, showtime_utc, booking_link, attributes, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := p.db.QueryRow(ctx,
		query,
		showtime.ShowtimeID,
		showtime.CinemaName,
		showtime.MovieTitle,
		showtime.ShowtimeUTC,
		showtime.BookingLink,
		showtime.Attributes,
		showtime.City).Scan(&showtime.ID, &showtime.CreatedAt, &showtime.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrShowtimeExists
		}

		return err
	}

	return nil
}

// Replace updates the mutable fields of the row matched by the
// (showtime_id, cinema_name) pair. Attributes, city and cinema name are
// immutable once the key is established.
func (p *PostgresShowtimeRepository) Replace(ctx context.Context, showtime *domain.Showtime) error {
	query := `UPDATE showtimes
		SET movie_title = $1, showtime_utc = $2, booking_link = $3, updated_at = now()
		WHERE showtime_id = $4 AND cinema_name = $5
		RETURNING id, updated_at`

	err := p.db.QueryRow(ctx,
		query,
		showtime.MovieTitle,
		showtime.ShowtimeUTC,
		showtime.BookingLink,
		showtime.ShowtimeID,
		showtime.CinemaName).Scan(&showtime.ID, &showtime.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func (p *PostgresShowtimeRepository) GetByShowtimeID(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	query := `SELECT id, showtime_id, cinema_name, movie_title, showtime_utc, booking_link, attributes, city, created_at, updated_at
		FROM showtimes
		WHERE showtime_id = $1`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, showtimeID).Scan(
		&showtime.ID,
		&showtime.ShowtimeID,
		&showtime.CinemaName,
		&showtime.MovieTitle,
		&showtime.ShowtimeUTC,
		&showtime.BookingLink,
		&showtime.Attributes,
		&showtime.City,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) GetAll(ctx context.Context) ([]*domain.Showtime, error) {
	query := `SELECT id, showtime_id, cinema_name, movie_title, showtime_utc, booking_link, attributes, city, created_at, updated_at
		FROM showtimes
		ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := []*domain.Showtime{}

	for rows.Next() {
		var showtime domain.Showtime

		err := rows.Scan(
			&showtime.ID,
			&showtime.ShowtimeID,
			&showtime.CinemaName,
			&showtime.MovieTitle,
			&showtime.ShowtimeUTC,
			&showtime.BookingLink,
			&showtime.Attributes,
			&showtime.City,
			&showtime.CreatedAt,
			&showtime.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		showtimes = append(showtimes, &showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}
