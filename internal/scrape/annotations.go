// Package scrape pulls inline submission annotations out of the SpeedGrader
// page. Annotations are not exposed through the REST API, so this rides an
// authenticated browser session cookie instead of the API token.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Annotation is a single inline comment left on the submission document.
type Annotation struct {
	Comment string
}

// Session holds the authenticated cookie used to fetch SpeedGrader pages.
type Session struct {
	cookie     string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewSession constructs a scraping session from a canvas_session cookie value.
func NewSession(cookie string, timeout time.Duration, logger zerolog.Logger) (*Session, error) {
	if cookie == "" {
		return nil, fmt.Errorf("session cookie must be provided")
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Session{
		cookie:     cookie,
		httpClient: &http.Client{Timeout: timeout},
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "annotation_scraper").Logger(),
	}, nil
}

// Annotations fetches the SpeedGrader page at url and extracts the inline
// annotation comments in document order.
func (s *Session) Annotations(ctx context.Context, url string) ([]Annotation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", "canvas_session="+s.cookie)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch speed grader page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching annotations", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse speed grader page: %w", err)
	}

	var annotations []Annotation
	doc.Find("div.annotation .comment_content, div.annotation-comment").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(s.sanitizer.Sanitize(sel.Text()))
		if text == "" {
			return
		}
		annotations = append(annotations, Annotation{Comment: text})
	})

	s.logger.Debug().Int("count", len(annotations)).Str("url", url).Msg("scraped annotations")

	return annotations, nil
}
