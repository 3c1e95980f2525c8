package goodreads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bookdex/internal/render"
)

// shelfScanLimit bounds how many shelf tags are inspected per book.
const shelfScanLimit = 50

// Shelf tags that mark a book as available on Kindle Unlimited.
var kuMarkers = map[string]struct{}{
	"kindle-unlimited": {},
	"ku":               {},
}

// ShelfChecker derives a book's shelf page from its detail page and scans it
// for Kindle Unlimited markers. The shelf page is client-rendered, so it goes
// through the rendering agent rather than a plain fetch.
type ShelfChecker struct {
	renderer render.Renderer
	logger   *zap.Logger
}

// NewShelfChecker builds a ShelfChecker.
func NewShelfChecker(renderer render.Renderer, logger *zap.Logger) *ShelfChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShelfChecker{renderer: renderer, logger: logger}
}

// KindleUnlimited reports whether any of the first shelfScanLimit shelf tags
// matches a marker. A missing shelves URL defaults to false without error;
// render or parse failures degrade to false with the error reported.
func (c *ShelfChecker) KindleUnlimited(ctx context.Context, doc *goquery.Document) (bool, error) {
	url, err := ShelvesURL(doc)
	if err != nil {
		if errors.Is(err, ErrNoShelvesURL) {
			c.logger.Debug("no shelves url on page")
			return false, nil
		}
		return false, err
	}

	html, err := c.renderer.RenderHTML(ctx, url)
	if err != nil {
		return false, fmt.Errorf("render shelves page: %w", err)
	}

	shelfDoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, fmt.Errorf("parse shelves page: %w", err)
	}

	found := false
	shelfDoc.Find(".shelfStat a").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= shelfScanLimit {
			return false
		}
		shelf := strings.TrimSpace(s.Text())
		if _, ok := kuMarkers[shelf]; ok {
			found = true
			return false
		}
		return true
	})
	return found, nil
}
