package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinewatch/showtime-scraper/api"
	"github.com/cinewatch/showtime-scraper/internal/domain"
	"github.com/cinewatch/showtime-scraper/internal/scraper"
)

type ScrapeParams struct {
	Url  string `validate:"required,http_url"`
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// ScrapeRequest handles GET /scraper/scrape. The url parameter is validated
// before any network call; the optional date parameter fixes the calendar
// date rendered wall-clock times belong to, defaulting to today in the
// configured reference timezone.
func (app *Application) ScrapeRequest(w http.ResponseWriter, r *http.Request) {
	params := ScrapeParams{
		Url:  r.URL.Query().Get("url"),
		Date: r.URL.Query().Get("date"),
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	refDate, err := app.referenceDate(params.Date)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	data, err := app.scraper.Scrape(r.Context(), params.Url, refDate)
	if err != nil {
		var fetchErr *scraper.FetchError
		if errors.As(err, &fetchErr) {
			app.badGatewayResponse(w, r, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ScraperResponse{
		RequestUrl:   params.Url,
		ResponseData: toWebsiteData(data),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) referenceDate(date string) (time.Time, error) {
	if date == "" {
		now := time.Now().In(app.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, app.location), nil
	}

	return time.ParseInLocation("2006-01-02", date, app.location)
}

func toWebsiteData(data *domain.WebsiteData) api.WebsiteData {
	if data == nil {
		return api.WebsiteData{}
	}

	showtimes := make([]api.Showtime, len(data.Showtimes))
	for i, showtime := range data.Showtimes {
		showtimes[i] = api.Showtime{
			ShowtimeId:    showtime.ShowtimeID,
			CinemaName:    showtime.CinemaName,
			MovieTitle:    showtime.MovieTitle,
			ShowtimeInUTC: showtime.ShowtimeUTC.Format(time.RFC3339),
			BookingLink:   showtime.BookingLink,
			Attributes:    showtime.Attributes,
			City:          showtime.City,
		}
	}

	return api.WebsiteData{
		Title:           data.Metadata.Title,
		MetaDescription: data.Metadata.MetaDescription,
		FaviconUrl:      data.Metadata.FaviconURL,
		ScriptUrls:      data.Metadata.ScriptURLs,
		StylesheetUrls:  data.Metadata.StylesheetURLs,
		ImageUrls:       data.Metadata.ImageURLs,
		Showtimes:       showtimes,
	}
}
