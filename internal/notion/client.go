// Package notion writes enriched records into the destination Notion databases.
package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"bookdex/internal/book"
	"bookdex/internal/clock"
)

// Page icons, matching the shelf databases' conventions.
const (
	bookEmoji   = "📕"
	seriesEmoji = "📚"
	genreEmoji  = "🏷️"
)

// Config identifies the three destination databases.
type Config struct {
	BooksDatabaseID  string
	SeriesDatabaseID string
	GenresDatabaseID string
}

// The narrow slices of the Notion API the store depends on. The notionapi
// client satisfies all three; tests substitute fakes.
type databaseQuerier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, request *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageWriter interface {
	Create(ctx context.Context, request *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, request *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

type blockAppender interface {
	AppendChildren(ctx context.Context, id notionapi.BlockID, request *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
}

// Store implements the destination side of the pipeline: the pending-book
// query, series/genre get-or-create, and the per-record upsert.
type Store struct {
	databases databaseQuerier
	pages     pageWriter
	blocks    blockAppender
	cfg       Config
	clock     clock.Clock
	logger    *zap.Logger

	// relationRefs memoizes name lookups within a run so the same series or
	// genre name always resolves to the same page without a second query.
	relationRefs map[string]string
}

// NewStore wraps a Notion API client.
func NewStore(client *notionapi.Client, cfg Config, clk clock.Clock, logger *zap.Logger) *Store {
	return newStore(client.Database, client.Page, client.Block, cfg, clk, logger)
}

func newStore(databases databaseQuerier, pages pageWriter, blocks blockAppender, cfg Config, clk clock.Clock, logger *zap.Logger) *Store {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		databases:    databases,
		pages:        pages,
		blocks:       blocks,
		cfg:          cfg,
		clock:        clk,
		logger:       logger,
		relationRefs: make(map[string]string),
	}
}

// PendingBooks returns the rows whose title is empty but whose ISBN is set.
func (s *Store) PendingBooks(ctx context.Context) ([]book.IdentifierRecord, error) {
	resp, err := s.databases.Query(ctx, notionapi.DatabaseID(s.cfg.BooksDatabaseID), &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			notionapi.PropertyFilter{
				Property: "Name",
				RichText: &notionapi.TextFilterCondition{IsEmpty: true},
			},
			notionapi.PropertyFilter{
				Property: "ISBN",
				RichText: &notionapi.TextFilterCondition{IsNotEmpty: true},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query pending books: %w", err)
	}

	records := make([]book.IdentifierRecord, 0, len(resp.Results))
	for _, page := range resp.Results {
		isbn := richTextValue(page.Properties["ISBN"])
		if isbn == "" {
			continue
		}
		records = append(records, book.IdentifierRecord{
			PageID: string(page.ID),
			ISBN:   isbn,
		})
	}
	return records, nil
}

// GetOrCreateSeries resolves a series name to its page, creating it with the
// cover and author extras when missing. An empty name resolves to no relation.
func (s *Store) GetOrCreateSeries(ctx context.Context, name, coverURL, author string) (string, error) {
	extra := notionapi.Properties{
		"Author": notionapi.RichTextProperty{RichText: richText(author)},
	}
	if coverURL != "" {
		extra["Cover"] = notionapi.FilesProperty{Files: []notionapi.File{
			{Name: "Book Cover", Type: notionapi.FileTypeExternal, External: &notionapi.FileObject{URL: coverURL}},
		}}
	}
	return s.getOrCreate(ctx, "series", s.cfg.SeriesDatabaseID, name, extra, seriesEmoji)
}

// GetOrCreateGenre resolves a genre name to its page, creating it when
// missing. An empty name resolves to no relation.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (string, error) {
	return s.getOrCreate(ctx, "genre", s.cfg.GenresDatabaseID, name, nil, genreEmoji)
}

func (s *Store) getOrCreate(ctx context.Context, kind, dbID, name string, extra notionapi.Properties, emoji string) (string, error) {
	if name == "" {
		return "", nil
	}
	cacheKey := kind + "/" + name
	if ref, ok := s.relationRefs[cacheKey]; ok {
		return ref, nil
	}

	resp, err := s.databases.Query(ctx, notionapi.DatabaseID(dbID), &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Name",
			RichText: &notionapi.TextFilterCondition{Contains: name},
		},
	})
	if err != nil {
		return "", fmt.Errorf("search %s %q: %w", kind, name, err)
	}
	if len(resp.Results) > 0 {
		ref := string(resp.Results[0].ID)
		s.relationRefs[cacheKey] = ref
		return ref, nil
	}

	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{Title: richText(name)},
	}
	for key, prop := range extra {
		props[key] = prop
	}

	page, err := s.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Icon:       emojiIcon(emoji),
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, name, err)
	}
	s.logger.Debug("created relation page", zap.String("kind", kind), zap.String("name", name))

	// Let the write settle before the reference is used further.
	if err := s.paced(ctx, relationSettleDelay, nil); err != nil {
		return "", err
	}
	ref := string(page.ID)
	s.relationRefs[cacheKey] = ref
	return ref, nil
}

// UpsertRecord writes the merged record's properties onto its page and appends
// the summary blocks beneath it.
func (s *Store) UpsertRecord(ctx context.Context, rec book.Record, seriesRef string, genreRefs []string, status book.Status) error {
	if err := s.paced(ctx, updateLeadDelay, nil); err != nil {
		return err
	}

	props := bookProperties(rec, seriesRef, genreRefs, status)
	err := s.paced(ctx, updateIssueDelay, func(ctx context.Context) error {
		_, err := s.pages.Update(ctx, notionapi.PageID(rec.PageID), &notionapi.PageUpdateRequest{
			Icon:       emojiIcon(bookEmoji),
			Properties: props,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("update page for isbn %s: %w", rec.ISBN, err)
	}

	if _, err := s.blocks.AppendChildren(ctx, notionapi.BlockID(rec.PageID), &notionapi.AppendBlockChildrenRequest{
		Children: summaryBlocks(rec.Description),
	}); err != nil {
		return fmt.Errorf("append summary for isbn %s: %w", rec.ISBN, err)
	}
	return s.paced(ctx, appendSettleDelay, nil)
}

func bookProperties(rec book.Record, seriesRef string, genreRefs []string, status book.Status) notionapi.Properties {
	year := rec.PublicationYear
	if year == "" {
		year = book.Unknown
	}

	genreOptions := make([]notionapi.Option, 0, len(rec.Genres))
	for _, g := range rec.Genres {
		genreOptions = append(genreOptions, notionapi.Option{Name: g})
	}

	seriesRelation := []notionapi.Relation{}
	if seriesRef != "" {
		seriesRelation = append(seriesRelation, notionapi.Relation{ID: notionapi.PageID(seriesRef)})
	}
	genreRelations := make([]notionapi.Relation, 0, len(genreRefs))
	for _, ref := range genreRefs {
		genreRelations = append(genreRelations, notionapi.Relation{ID: notionapi.PageID(ref)})
	}

	props := notionapi.Properties{
		"Name":             notionapi.TitleProperty{Title: richText(rec.Title)},
		"Author":           notionapi.RichTextProperty{RichText: richText(rec.Author)},
		"Pages":            notionapi.NumberProperty{Number: float64(rec.PageCount)},
		"KU?":              notionapi.CheckboxProperty{Checkbox: rec.AvailableOnKU},
		"Publication Date": notionapi.RichTextProperty{RichText: richText(year)},
		"Genres":           notionapi.MultiSelectProperty{MultiSelect: genreOptions},
		"Average Rating":   notionapi.NumberProperty{Number: rec.AverageRating},
		"Number of Ratings": notionapi.RichTextProperty{
			RichText: richText(rec.RatingCount),
		},
		"Links": notionapi.FilesProperty{Files: []notionapi.File{
			{Name: "Amazon", Type: notionapi.FileTypeExternal, External: &notionapi.FileObject{URL: book.AmazonSearchURL(rec.ISBN)}},
			{Name: "Goodreads", Type: notionapi.FileTypeExternal, External: &notionapi.FileObject{URL: book.GoodreadsSearchURL(rec.ISBN)}},
		}},
		"Series":          notionapi.RelationProperty{Relation: seriesRelation},
		"Genres Database": notionapi.RelationProperty{Relation: genreRelations},
		"Status":          notionapi.StatusProperty{Status: notionapi.Option{Name: string(status)}},
	}

	if rec.SeriesNumber != nil {
		props["Series Number"] = notionapi.NumberProperty{Number: *rec.SeriesNumber}
	}
	if rec.CoverImageURL != "" {
		props["Cover"] = notionapi.FilesProperty{Files: []notionapi.File{
			{Name: "Cover", Type: notionapi.FileTypeExternal, External: &notionapi.FileObject{URL: rec.CoverImageURL}},
		}}
	}
	return props
}

// summaryBlocks renders the description as a heading plus one paragraph block
// per entry. Every block is below the store's 2000-character limit because the
// extractor already enforced it.
func summaryBlocks(desc book.Description) []notionapi.Block {
	blocks := []notionapi.Block{
		&notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: notionapi.Heading{RichText: richText("Book Summary")},
		},
	}
	for _, para := range desc.Blocks() {
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{RichText: richText(para)},
		})
	}
	return blocks
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: content}}}
}

func richTextValue(prop notionapi.Property) string {
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	return rt.RichText[0].PlainText
}

func emojiIcon(e string) *notionapi.Icon {
	emoji := notionapi.Emoji(e)
	return &notionapi.Icon{Type: "emoji", Emoji: &emoji}
}
