package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinewatch/showtime-scraper/api"
	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/cinewatch/showtime-scraper/internal/validator"
)

type MockScrapeService struct {
	ScrapeFunc func(ctx context.Context, url string, refDate time.Time) (*domain.WebsiteData, error)
}

func (m *MockScrapeService) Scrape(ctx context.Context, url string, refDate time.Time) (*domain.WebsiteData, error) {
	return m.ScrapeFunc(ctx, url, refDate)
}

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		validator: validator.NewValidator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		location:  time.UTC,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(method, url string) (*httptest.ResponseRecorder, *http.Request) {
	r := httptest.NewRequest(method, url, nil)
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
