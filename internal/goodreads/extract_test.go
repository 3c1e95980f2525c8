package goodreads

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDescription_SplitsParagraphs(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="BookPageMetadataSection__description">
		<span class="Formatted">First paragraph with <i>markup</i>.<br><br>&nbsp;Second paragraph.</span>
	</div>`)

	desc, err := ExtractDescription(doc, "Sample Book")
	require.NoError(t, err)
	require.Empty(t, desc.Notice)
	// The double line break survives as an empty paragraph; the split is verbatim.
	require.Equal(t, []string{"First paragraph with markup.", "", "Second paragraph."}, desc.Paragraphs)
}

func TestExtractDescription_OversizedParagraphFallsBack(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 2500)
	doc := mustDoc(t, fmt.Sprintf(
		`<div class="BookPageMetadataSection__description"><span class="Formatted">short<br>%s</span></div>`, long))

	desc, err := ExtractDescription(doc, "Sample Book")
	require.NoError(t, err)
	require.Empty(t, desc.Paragraphs)
	require.Contains(t, desc.Notice, "Sample Book")
	require.Less(t, len(desc.Notice), 2000)

	// Extraction is idempotent: a second pass yields the same notice.
	again, err := ExtractDescription(doc, "Sample Book")
	require.NoError(t, err)
	require.Equal(t, desc.Notice, again.Notice)
}

func TestExtractDescription_ExactLimitFallsBack(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, fmt.Sprintf(
		`<div class="BookPageMetadataSection__description"><span class="Formatted">%s</span></div>`,
		strings.Repeat("b", 2000)))

	desc, err := ExtractDescription(doc, "Edge Case")
	require.NoError(t, err)
	require.NotEmpty(t, desc.Notice)
}

func TestExtractDescription_MissingBlock(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="BookPageMetadataSection__description"></div>`)

	_, err := ExtractDescription(doc, "Sample Book")
	require.ErrorIs(t, err, ErrNoDescription)
}

func TestParseSeriesTitle(t *testing.T) {
	t.Parallel()

	two := 2.0
	one := 1.0
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantNumber *float64
	}{
		{"hash number", "Sample Series #2", "Sample Series", &two},
		{"bare number", "The Stormlight Archive 1", "The Stormlight Archive", &one},
		{"no number", "Standalone Saga", "Standalone Saga", nil},
		{"padded", "  Sample Series #2  ", "Sample Series", &two},
		{"empty", "", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			name, number := ParseSeriesTitle(tc.input)
			require.Equal(t, tc.wantName, name)
			if tc.wantNumber == nil {
				require.Nil(t, number)
			} else {
				require.NotNil(t, number)
				require.InDelta(t, *tc.wantNumber, *number, 0.001)
			}
		})
	}
}

func TestExtractPageCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want int
	}{
		{
			"plain",
			`<div class="FeaturedDetails"><p data-testid="pagesFormat">352 pages, Kindle Edition</p></div>`,
			352,
		},
		{
			"thousands separator",
			`<div class="FeaturedDetails"><p data-testid="pagesFormat">1,007 pages, Hardcover</p></div>`,
			1007,
		},
		{
			"missing",
			`<div class="FeaturedDetails"></div>`,
			0,
		},
		{
			"unparseable",
			`<div class="FeaturedDetails"><p data-testid="pagesFormat">Audiobook</p></div>`,
			0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ExtractPageCount(mustDoc(t, tc.html)))
		})
	}
}

func TestExtractGenres_CapsAtFour(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for _, g := range []string{"Fantasy", "Romance", "Adventure", "Epic", "Extra", "More"} {
		fmt.Fprintf(&b, `<span class="BookPageMetadataSection__genreButton"><span class="Button__labelItem">%s</span></span>`, g)
	}

	genres := ExtractGenres(mustDoc(t, b.String()))
	require.Equal(t, []string{"Fantasy", "Romance", "Adventure", "Epic"}, genres)
}

func TestExtractGenres_FewerThanFour(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<span class="BookPageMetadataSection__genreButton"><span class="Button__labelItem">Fantasy</span></span>`)
	require.Equal(t, []string{"Fantasy"}, ExtractGenres(doc))
}

func TestExtractRating(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="RatingStatistics__rating">4.2</div>`)
	require.InDelta(t, 4.2, ExtractRating(doc), 0.001)

	require.Zero(t, ExtractRating(mustDoc(t, `<div></div>`)))
}

func TestExtractRatingCount(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="RatingStatistics__meta"><span data-testid="ratingsCount">1,234,567 ratings<span>hidden</span></span></div>`)
	require.Equal(t, "1,234,567 ratings", ExtractRatingCount(doc))
}

func TestExtractCoverURL(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div class="BookCover__image"><img class="ResponsiveImage" src="https://img.example.com/cover.jpg"></div>`)
	require.Equal(t, "https://img.example.com/cover.jpg", ExtractCoverURL(doc))

	require.Empty(t, ExtractCoverURL(mustDoc(t, `<div></div>`)))
}

func TestExtractIdentity(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
		<div class="BookPageTitleSection__title"><h1>Fallback Title</h1></div>
		<span class="ContributorLink__name">Jane Doe</span>
		<div class="FeaturedDetails"><p data-testid="publicationInfo">First published May 1, 2020</p></div>`)

	id, err := ExtractIdentity(doc)
	require.NoError(t, err)
	require.Equal(t, "Fallback Title", id.Title)
	require.Equal(t, "Jane Doe", id.Author)
	require.Equal(t, "2020", id.PublicationYear)
}

func TestExtractIdentity_MissingAnchors(t *testing.T) {
	t.Parallel()

	_, err := ExtractIdentity(mustDoc(t, `<div></div>`))
	require.ErrorIs(t, err, ErrNoIdentity)
}
