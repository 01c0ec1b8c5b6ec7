package domain

// WebsiteMetadata is what the static extractor reads from raw markup without
// executing scripts. Missing elements yield empty strings or empty slices,
// never an error.
type WebsiteMetadata struct {
	Title           string
	MetaDescription string
	FaviconURL      string
	ScriptURLs      []string
	StylesheetURLs  []string
	ImageURLs       []string
}

// RawShowtime is one extracted schedule entry before normalization. A
// schedule item with N start times expands into N RawShowtimes, each with a
// derived ShowtimeID of the form "<rawId>-NNN" (3-digit, 1-based).
// StartsAtUTC is an RFC 3339 timestamp already converted to UTC against the
// extractor's reference date and timezone.
type RawShowtime struct {
	ShowtimeID  string
	CinemaName  string
	MovieTitle  string
	StartsAtUTC string
	BookingLink string
	City        string
	Attributes  []string
}

// WebsiteData is the full extraction result for one scraped page.
type WebsiteData struct {
	Metadata  WebsiteMetadata
	Showtimes []Showtime
}
