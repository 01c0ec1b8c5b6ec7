package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cinewatch/showtime-scraper/internal/domain"
)

// StaticExtractor parses document-level metadata out of raw markup without
// executing scripts. Malformed markup is a normal input: goquery's parser is
// lenient, so missing elements simply yield empty fields.
type StaticExtractor struct{}

func NewStaticExtractor() *StaticExtractor {
	return &StaticExtractor{}
}

func (e *StaticExtractor) Extract(html string) domain.WebsiteMetadata {
	meta := domain.WebsiteMetadata{
		ScriptURLs:     []string{},
		StylesheetURLs: []string{},
		ImageURLs:      []string{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return meta
	}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.MetaDescription = doc.Find(`meta[name="description"]`).AttrOr("content", "")
	meta.FaviconURL = doc.Find(`link[rel="shortcut icon"]`).AttrOr("href", "")

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			meta.ScriptURLs = append(meta.ScriptURLs, src)
		}
	})

	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			meta.StylesheetURLs = append(meta.StylesheetURLs, href)
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			meta.ImageURLs = append(meta.ImageURLs, src)
		}
	})

	return meta
}
