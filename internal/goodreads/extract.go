package goodreads

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookdex/internal/book"
)

// maxBlockLen is the destination store's hard limit per text block. Any
// paragraph at or over this length must never reach the upsert stage.
const maxBlockLen = 2000

// maxGenres caps how many genre tags are collected, in document order.
const maxGenres = 4

// ErrNoDescription indicates the description block is missing entirely.
// Callers treat it as "no description available" for the record.
var ErrNoDescription = errors.New("goodreads: description block not found")

// ErrNoIdentity indicates the title/contributor anchors are missing.
var ErrNoIdentity = errors.New("goodreads: identity fields not found")

var (
	lineBreakRe    = regexp.MustCompile(`(?i)<br\s*/?>`)
	markupRe       = regexp.MustCompile(`</?[^>]+(>|$)`)
	encodedNbspRe  = regexp.MustCompile(`(?i)&nbsp;`)
	leadingSpaceRe = regexp.MustCompile(`^[\s\x{00A0}]+`)
	brokenIndentRe = regexp.MustCompile("\n[ \t]+")
	seriesTitleRe  = regexp.MustCompile(`^(.*)\s+#?(\d+)$`)
	leadingDigitRe = regexp.MustCompile(`^\d+`)
)

// Identity holds the fallback identity fields read from the page itself,
// used when the structured source fails.
type Identity struct {
	Title           string
	Author          string
	PublicationYear string
}

// ExtractIdentity reads title, author, and publication year from the page.
// The year is the last four characters of the publication-info line.
func ExtractIdentity(doc *goquery.Document) (Identity, error) {
	title := strings.TrimSpace(doc.Find(".BookPageTitleSection__title h1").First().Text())
	author := strings.TrimSpace(doc.Find(".ContributorLink__name").First().Text())
	if title == "" && author == "" {
		return Identity{}, ErrNoIdentity
	}

	id := Identity{Title: title, Author: author, PublicationYear: book.Unknown}
	if id.Title == "" {
		id.Title = book.Unknown
	}
	pub := strings.TrimSpace(doc.Find(".FeaturedDetails").Find(`p[data-testid="publicationInfo"]`).First().Text())
	if len(pub) >= 4 {
		id.PublicationYear = pub[len(pub)-4:]
	}
	return id, nil
}

// ExtractDescription locates the formatted description block, strips its
// markup, and splits it into paragraphs. When any paragraph is at or over the
// block limit the whole sequence is replaced by a single notice naming the
// title, so oversized content never reaches the destination.
func ExtractDescription(doc *goquery.Document, title string) (book.Description, error) {
	sel := doc.Find(".BookPageMetadataSection__description").Find("span.Formatted").First()
	if sel.Length() == 0 {
		return book.Description{}, ErrNoDescription
	}
	raw, err := sel.Html()
	if err != nil {
		return book.Description{}, fmt.Errorf("read description markup: %w", err)
	}

	text := lineBreakRe.ReplaceAllString(raw, "\n")
	text = markupRe.ReplaceAllString(text, "")
	text = encodedNbspRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = leadingSpaceRe.ReplaceAllString(text, "")
	text = brokenIndentRe.ReplaceAllString(text, "\n")
	text = strings.TrimSpace(text)

	paragraphs := strings.Split(text, "\n")
	for _, p := range paragraphs {
		if len(p) >= maxBlockLen {
			return book.Description{Notice: oversizeNotice(title)}, nil
		}
	}
	return book.Description{Paragraphs: paragraphs}, nil
}

func oversizeNotice(title string) string {
	return fmt.Sprintf("Unable to retrieve description for %s because at least one paragraph is over %d characters in length.", title, maxBlockLen)
}

// ExtractPageCount parses the leading numeric token of the pages/format line,
// stripping thousands separators. Returns 0 when absent or unparseable.
func ExtractPageCount(doc *goquery.Document) int {
	text := doc.Find(".FeaturedDetails").Find(`p[data-testid="pagesFormat"]`).First().Text()
	text = strings.ReplaceAll(text, ",", "")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	token := leadingDigitRe.FindString(fields[0])
	if token == "" {
		return 0
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return n
}

// ExtractGenres collects up to the first four genre tag labels in document order.
func ExtractGenres(doc *goquery.Document) []string {
	var genres []string
	doc.Find(".BookPageMetadataSection__genreButton").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxGenres {
			return false
		}
		genre := strings.TrimSpace(s.Find(".Button__labelItem").Text())
		if genre != "" {
			genres = append(genres, genre)
		}
		return true
	})
	return genres
}

// ExtractSeries reads the series link text and splits it into name and number.
func ExtractSeries(doc *goquery.Document) (string, *float64) {
	text := strings.TrimSpace(doc.Find(".BookPageTitleSection__title a").First().Text())
	return ParseSeriesTitle(text)
}

// ParseSeriesTitle matches "<name> #<digits>" (the "#" is optional) anchored at
// the end of the string. On a match it returns the name before the number and
// the number as a float; otherwise the whole trimmed text with a nil number.
func ParseSeriesTitle(text string) (string, *float64) {
	text = strings.TrimSpace(text)
	m := seriesTitleRe.FindStringSubmatch(text)
	if m == nil {
		return text, nil
	}
	n, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return text, nil
	}
	return strings.TrimSpace(m[1]), &n
}

// ExtractRating parses the average rating as a float, 0 if absent.
func ExtractRating(doc *goquery.Document) float64 {
	text := strings.TrimSpace(doc.Find(".RatingStatistics__rating").First().Text())
	r, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return r
}

// ExtractRatingCount returns the ratings-count text as displayed by the source.
func ExtractRatingCount(doc *goquery.Document) string {
	sel := doc.Find(".RatingStatistics__meta").Find(`span[data-testid="ratingsCount"]`).First()
	return strings.TrimSpace(sel.Contents().First().Text())
}

// ExtractCoverURL reads the cover image source attribute, "" if absent.
func ExtractCoverURL(doc *goquery.Document) string {
	src, _ := doc.Find(".BookCover__image img.ResponsiveImage").First().Attr("src")
	return src
}
