package goodreads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	html string
	err  error
	urls []string
}

func (f *fakeRenderer) RenderHTML(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func shelfPage(shelves []string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, s := range shelves {
		fmt.Fprintf(&b, `<div class="shelfStat"><a>%s</a></div>`, s)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func repeatShelf(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

func TestKindleUnlimited_MarkerWithinLimit(t *testing.T) {
	t.Parallel()

	shelves := append(repeatShelf("to-read", 10), "kindle-unlimited")
	renderer := &fakeRenderer{html: shelfPage(shelves)}
	checker := NewShelfChecker(renderer, zap.NewNop())

	available, err := checker.KindleUnlimited(context.Background(), mustDoc(t, workPage(t)))
	require.NoError(t, err)
	require.True(t, available)
	require.Equal(t, []string{"https://www.goodreads.com/work/shelves/2"}, renderer.urls)
}

func TestKindleUnlimited_ShortMarker(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{html: shelfPage([]string{"owned", "ku"})}
	checker := NewShelfChecker(renderer, zap.NewNop())

	available, err := checker.KindleUnlimited(context.Background(), mustDoc(t, workPage(t)))
	require.NoError(t, err)
	require.True(t, available)
}

func TestKindleUnlimited_MarkerBeyondScanLimit(t *testing.T) {
	t.Parallel()

	// Marker sits at position 55; the scan stops after 50 entries.
	shelves := append(repeatShelf("to-read", 55), "kindle-unlimited")
	renderer := &fakeRenderer{html: shelfPage(shelves)}
	checker := NewShelfChecker(renderer, zap.NewNop())

	available, err := checker.KindleUnlimited(context.Background(), mustDoc(t, workPage(t)))
	require.NoError(t, err)
	require.False(t, available)
}

func TestKindleUnlimited_NoShelvesURLDefaultsFalse(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{}
	checker := NewShelfChecker(renderer, zap.NewNop())

	available, err := checker.KindleUnlimited(context.Background(), mustDoc(t, "<html></html>"))
	require.NoError(t, err)
	require.False(t, available)
	require.Empty(t, renderer.urls)
}

func TestKindleUnlimited_RenderFailureDegrades(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{err: errors.New("nav timeout")}
	checker := NewShelfChecker(renderer, zap.NewNop())

	available, err := checker.KindleUnlimited(context.Background(), mustDoc(t, workPage(t)))
	require.Error(t, err)
	require.False(t, available)
}

func workPage(t *testing.T) string {
	t.Helper()
	return nextDataPage(`{"Work:2": {"__typename": "Work", "details": {"shelvesUrl": "https://www.goodreads.com/work/shelves/2"}}}`)
}
