package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"TBR", "Reading", "Finished", "DNF"} {
		got, err := ParseStatus(valid)
		require.NoError(t, err)
		require.Equal(t, Status(valid), got)
	}

	for _, invalid := range []string{"", "tbr", "Done", "reading"} {
		_, err := ParseStatus(invalid)
		require.Error(t, err, "status %q", invalid)
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Jane Doe", TitleCase("jane doe"))
	require.Equal(t, "Jane Doe", TitleCase("JANE DOE"))
	require.Equal(t, "Ursula K. Le Guin", TitleCase("ursula k. le guin"))
	require.Equal(t, "", TitleCase(""))
}

func TestSearchURLs(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.amazon.com/s?k=9780000000048", AmazonSearchURL("9780000000048"))
	require.Equal(t, "https://www.goodreads.com/search?q=9780000000048", GoodreadsSearchURL("9780000000048"))
}

func TestDescriptionBlocks(t *testing.T) {
	t.Parallel()

	paras := Description{Paragraphs: []string{"one", "", "two"}}
	require.Equal(t, []string{"one", "", "two"}, paras.Blocks())
	require.False(t, paras.Empty())

	notice := Description{Notice: "too long"}
	require.Equal(t, []string{"too long"}, notice.Blocks())
	require.False(t, notice.Empty())

	require.True(t, Description{}.Empty())
	require.Empty(t, Description{}.Blocks())
}
