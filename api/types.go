// Package api holds the wire types of the scraper service. Field names
// mirror the upstream consumer contract, hence the camelCase JSON tags.
package api

import "time"

type ScraperResponse struct {
	RequestUrl   string      `json:"requestUrl"`
	ResponseData WebsiteData `json:"responseData"`
}

type WebsiteData struct {
	Title           string     `json:"title"`
	MetaDescription string     `json:"metaDescription"`
	FaviconUrl      string     `json:"faviconUrl"`
	ScriptUrls      []string   `json:"scriptUrls"`
	StylesheetUrls  []string   `json:"stylesheetUrls"`
	ImageUrls       []string   `json:"imageUrls"`
	Showtimes       []Showtime `json:"showtimes"`
}

type Showtime struct {
	ShowtimeId    string   `json:"showtimeId"`
	CinemaName    string   `json:"cinemaName"`
	MovieTitle    string   `json:"movieTitle"`
	ShowtimeInUTC string   `json:"showtimeInUTC"`
	BookingLink   string   `json:"bookingLink"`
	Attributes    []string `json:"attributes"`
	City          *string  `json:"city,omitempty"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
