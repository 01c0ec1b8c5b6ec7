package repository

import (
	"context"
	"errors"

	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeSummaryRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeSummaryRepository(db *pgxpool.Pool) *PostgresShowtimeSummaryRepository {
	return &PostgresShowtimeSummaryRepository{
		db: db,
	}
}

// Refresh recomputes the summary from the full raw table and overwrites the
// maintained counts. Overwriting (not incrementing) plus pruning groups no
// longer present keeps the table exact even when a replace moved a raw row
// from one group into another.
func (p *PostgresShowtimeSummaryRepository) Refresh(ctx context.Context) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO showtime_summary (showtime_date, cinema_name, movie_title, attributes, city, showtime_count)
			SELECT date(showtime_utc AT TIME ZONE 'UTC'),
				cinema_name,
				movie_title,
				attributes,
				COALESCE(NULLIF(city, ''), ''),
				count(*)
			FROM showtimes
			GROUP BY 1, 2, 3, 4, 5
			ON CONFLICT (showtime_date, cinema_name, movie_title, attributes, city)
			DO UPDATE SET showtime_count = EXCLUDED.showtime_count
		`

		if _, err := tx.Exec(ctx, upsert); err != nil {
			return err
		}

		prune := `
			DELETE FROM showtime_summary s
			WHERE NOT EXISTS (
				SELECT 1
				FROM showtimes r
				WHERE date(r.showtime_utc AT TIME ZONE 'UTC') = s.showtime_date
					AND r.cinema_name = s.cinema_name
					AND r.movie_title = s.movie_title
					AND r.attributes = s.attributes
					AND COALESCE(NULLIF(r.city, ''), '') = s.city
			)
		`

		_, err := tx.Exec(ctx, prune)

		return err
	})
}

func (p *PostgresShowtimeSummaryRepository) GetAll(ctx context.Context) ([]*domain.ShowtimeSummary, error) {
	query := `SELECT showtime_date, cinema_name, movie_title, attributes, city, showtime_count
		FROM showtime_summary
		ORDER BY showtime_date, cinema_name, movie_title`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*domain.ShowtimeSummary{}

	for rows.Next() {
		var summary domain.ShowtimeSummary

		err := rows.Scan(
			&summary.ShowtimeDate,
			&summary.CinemaName,
			&summary.MovieTitle,
			&summary.Attributes,
			&summary.City,
			&summary.ShowtimeCount,
		)

		if err != nil {
			return nil, err
		}

		summaries = append(summaries, &summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
