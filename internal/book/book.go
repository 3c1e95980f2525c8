// Package book defines the core record types threaded through the enrichment pipeline.
package book

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is the placeholder stored when neither source supplies a value.
const Unknown = "Unknown"

// Status is the shelf status stamped onto every record in a batch.
type Status string

// Status values accepted by the destination database.
const (
	StatusTBR      Status = "TBR"
	StatusReading  Status = "Reading"
	StatusFinished Status = "Finished"
	StatusDNF      Status = "DNF"
)

// ParseStatus validates a user-supplied status label.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTBR, StatusReading, StatusFinished, StatusDNF:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid status %q (expected TBR, Reading, Finished, or DNF)", s)
	}
}

// IdentifierRecord is one destination row awaiting enrichment: its page ID
// paired with the ISBN to enrich it from.
type IdentifierRecord struct {
	PageID string
	ISBN   string
}

// Record is the accumulating normalized result for one ISBN.
type Record struct {
	PageID          string
	ISBN            string
	Title           string
	Author          string
	PublicationYear string
	PageCount       int
	AverageRating   float64
	RatingCount     string
	SeriesName      string
	SeriesNumber    *float64
	Genres          []string
	CoverImageURL   string
	Description     Description
	AvailableOnKU   bool
}

// Description is either an ordered paragraph sequence or a single fallback
// notice when any paragraph exceeds the destination block limit. Exactly one
// of the two fields is set.
type Description struct {
	Paragraphs []string
	Notice     string
}

// Blocks returns the content blocks to append for this description, in order.
func (d Description) Blocks() []string {
	if d.Notice != "" {
		return []string{d.Notice}
	}
	return d.Paragraphs
}

// Empty reports whether no description was recovered at all.
func (d Description) Empty() bool {
	return d.Notice == "" && len(d.Paragraphs) == 0
}

// AmazonSearchURL returns the marketplace search link for an ISBN.
func AmazonSearchURL(isbn string) string {
	return fmt.Sprintf("https://www.amazon.com/s?k=%s", isbn)
}

// GoodreadsSearchURL returns the catalog search link for an ISBN.
func GoodreadsSearchURL(isbn string) string {
	return fmt.Sprintf("https://www.goodreads.com/search?q=%s", isbn)
}

// TitleCase capitalizes each word of an author or title string.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
