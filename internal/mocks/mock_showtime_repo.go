package mocks

import (
	"context"

	"github.com/cinewatch/showtime-scraper/internal/domain"
)

type MockShowtimeRepo struct {
	domain.ShowtimeRepository
	InsertFunc          func(ctx context.Context, showtime *domain.Showtime) error
	ReplaceFunc         func(ctx context.Context, showtime *domain.Showtime) error
	GetByShowtimeIDFunc func(ctx context.Context, showtimeID string) (*domain.Showtime, error)
	GetAllFunc          func(ctx context.Context) ([]*domain.Showtime, error)
}

func (m *MockShowtimeRepo) Insert(ctx context.Context, showtime *domain.Showtime) error {
	return m.InsertFunc(ctx, showtime)
}

func (m *MockShowtimeRepo) Replace(ctx context.Context, showtime *domain.Showtime) error {
	return m.ReplaceFunc(ctx, showtime)
}

func (m *MockShowtimeRepo) GetByShowtimeID(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	return m.GetByShowtimeIDFunc(ctx, showtimeID)
}

func (m *MockShowtimeRepo) GetAll(ctx context.Context) ([]*domain.Showtime, error) {
	return m.GetAllFunc(ctx)
}
