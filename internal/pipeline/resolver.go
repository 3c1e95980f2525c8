// Package pipeline sequences source resolution and destination upserts for a batch.
package pipeline

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bookdex/internal/book"
	"bookdex/internal/goodreads"
	"bookdex/internal/googlebooks"
	"bookdex/internal/metrics"
)

// MetadataSource is the structured lookup consulted before the HTML fallback.
type MetadataSource interface {
	Lookup(ctx context.Context, isbn string) (googlebooks.Volume, error)
}

// PageFetcher retrieves the parsed detail page for an ISBN.
type PageFetcher interface {
	SearchPage(ctx context.Context, isbn string) (*goquery.Document, error)
}

// AvailabilityChecker resolves the Kindle Unlimited flag from a parsed page.
type AvailabilityChecker interface {
	KindleUnlimited(ctx context.Context, doc *goquery.Document) (bool, error)
}

// Resolver builds one Record per identifier. Identity fields come from the
// structured source, falling back to the page itself; rating, genres, series,
// description, and availability always come from the page, since the
// structured source never carries them. Both paths read the same fetched page.
type Resolver struct {
	source  MetadataSource
	fetcher PageFetcher
	shelves AvailabilityChecker
	logger  *zap.Logger
}

// NewResolver builds a Resolver.
func NewResolver(source MetadataSource, fetcher PageFetcher, shelves AvailabilityChecker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source:  source,
		fetcher: fetcher,
		shelves: shelves,
		logger:  logger,
	}
}

// Resolve produces the merged record for one identifier.
func (r *Resolver) Resolve(ctx context.Context, id book.IdentifierRecord) (book.Record, error) {
	rec := book.Record{PageID: id.PageID, ISBN: id.ISBN}

	doc, err := r.fetcher.SearchPage(ctx, id.ISBN)
	if err != nil {
		return rec, fmt.Errorf("fetch detail page: %w", err)
	}

	r.resolveIdentity(ctx, &rec, doc)
	r.enrich(ctx, &rec, doc)

	r.logger.Info("resolved record",
		zap.String("isbn", rec.ISBN),
		zap.String("title", rec.Title),
	)
	return rec, nil
}

func (r *Resolver) resolveIdentity(ctx context.Context, rec *book.Record, doc *goquery.Document) {
	vol, err := r.source.Lookup(ctx, rec.ISBN)
	if err == nil {
		rec.Title = vol.Title
		if rec.Title == "" {
			rec.Title = book.Unknown
		}
		rec.Author = book.TitleCase(vol.Author)
		rec.PublicationYear = vol.PublishedYear
		if rec.PublicationYear == "" {
			rec.PublicationYear = book.Unknown
		}
		return
	}

	r.logger.Warn("structured source failed, falling back to page fields",
		zap.String("isbn", rec.ISBN),
		zap.Error(err),
	)
	metrics.ObserveSourceFallback()

	identity, ierr := goodreads.ExtractIdentity(doc)
	if ierr != nil {
		// The record keeps its zero identity fields; the run continues.
		r.logger.Error("identity fallback failed",
			zap.String("isbn", rec.ISBN),
			zap.Error(ierr),
		)
		return
	}
	rec.Title = identity.Title
	rec.Author = identity.Author
	rec.PublicationYear = identity.PublicationYear
}

func (r *Resolver) enrich(ctx context.Context, rec *book.Record, doc *goquery.Document) {
	rec.AverageRating = goodreads.ExtractRating(doc)
	rec.RatingCount = goodreads.ExtractRatingCount(doc)
	rec.SeriesName, rec.SeriesNumber = goodreads.ExtractSeries(doc)
	rec.Genres = goodreads.ExtractGenres(doc)
	rec.PageCount = goodreads.ExtractPageCount(doc)
	rec.CoverImageURL = goodreads.ExtractCoverURL(doc)

	desc, err := goodreads.ExtractDescription(doc, rec.Title)
	if err != nil {
		r.logger.Warn("no description available",
			zap.String("isbn", rec.ISBN),
			zap.Error(err),
		)
	} else {
		rec.Description = desc
	}

	ku, err := r.shelves.KindleUnlimited(ctx, doc)
	if err != nil {
		// Degrades to false; the record itself still goes through.
		r.logger.Error("shelf availability check failed",
			zap.String("isbn", rec.ISBN),
			zap.Error(err),
		)
	}
	rec.AvailableOnKU = ku
	metrics.ObserveKUCheck(ku)
}
