package mocks

import (
	"context"

	"github.com/cinewatch/showtime-scraper/internal/domain"
)

type MockShowtimeSummaryRepo struct {
	domain.ShowtimeSummaryRepository
	RefreshFunc func(ctx context.Context) error
	GetAllFunc  func(ctx context.Context) ([]*domain.ShowtimeSummary, error)
}

func (m *MockShowtimeSummaryRepo) Refresh(ctx context.Context) error {
	return m.RefreshFunc(ctx)
}

func (m *MockShowtimeSummaryRepo) GetAll(ctx context.Context) ([]*domain.ShowtimeSummary, error) {
	return m.GetAllFunc(ctx)
}
