package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookdex/internal/book"
	"bookdex/internal/metrics"
)

// RecordResolver produces one merged record per identifier.
type RecordResolver interface {
	Resolve(ctx context.Context, id book.IdentifierRecord) (book.Record, error)
}

// Destination abstracts the record store writes the driver performs.
type Destination interface {
	PendingBooks(ctx context.Context) ([]book.IdentifierRecord, error)
	GetOrCreateSeries(ctx context.Context, name, coverURL, author string) (string, error)
	GetOrCreateGenre(ctx context.Context, name string) (string, error)
	UpsertRecord(ctx context.Context, rec book.Record, seriesRef string, genreRefs []string, status book.Status) error
}

// Driver runs a batch end to end: resolve every pending identifier first, then
// upsert every resolved record. Records are processed strictly one at a time;
// a failure in either phase is logged and skips only that record.
type Driver struct {
	resolver RecordResolver
	dest     Destination
	logger   *zap.Logger
}

// NewDriver builds a Driver.
func NewDriver(resolver RecordResolver, dest Destination, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{resolver: resolver, dest: dest, logger: logger}
}

// Run enriches every pending row, stamping status onto each record.
func (d *Driver) Run(ctx context.Context, status book.Status) error {
	logger := d.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("status", string(status)),
	)

	ids, err := d.dest.PendingBooks(ctx)
	if err != nil {
		return fmt.Errorf("list pending books: %w", err)
	}
	logger.Info("starting batch", zap.Int("pending", len(ids)))

	records := make([]book.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := d.resolver.Resolve(ctx, id)
		if err != nil {
			logger.Error("resolve failed",
				zap.String("isbn", id.ISBN),
				zap.Error(err),
			)
			metrics.ObserveRecord("resolve_failed")
			continue
		}
		metrics.ObserveRecord("resolved")
		records = append(records, rec)
	}

	upserted := 0
	for _, rec := range records {
		if err := d.upsert(ctx, rec, status); err != nil {
			// No rollback: the row's title stays empty, so a later run
			// with the same filter retries it.
			logger.Error("upsert failed",
				zap.String("isbn", rec.ISBN),
				zap.Error(err),
			)
			metrics.ObserveRecord("upsert_failed")
			continue
		}
		metrics.ObserveRecord("upserted")
		upserted++
	}

	logger.Info("batch finished",
		zap.Int("resolved", len(records)),
		zap.Int("upserted", upserted),
	)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (d *Driver) upsert(ctx context.Context, rec book.Record, status book.Status) error {
	seriesRef, err := d.dest.GetOrCreateSeries(ctx, rec.SeriesName, rec.CoverImageURL, rec.Author)
	if err != nil {
		return fmt.Errorf("resolve series: %w", err)
	}

	genreRefs := make([]string, 0, len(rec.Genres))
	for _, genre := range rec.Genres {
		ref, err := d.dest.GetOrCreateGenre(ctx, genre)
		if err != nil {
			return fmt.Errorf("resolve genre %q: %w", genre, err)
		}
		if ref != "" {
			genreRefs = append(genreRefs, ref)
		}
	}

	if err := d.dest.UpsertRecord(ctx, rec, seriesRef, genreRefs, status); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
