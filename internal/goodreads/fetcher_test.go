package goodreads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetcher_FetchParsesPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><div class="RatingStatistics__rating">4.5</div></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{UserAgent: "bookdex-test", Timeout: 5 * time.Second})

	doc, err := f.fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.InDelta(t, 4.5, ExtractRating(doc), 0.001)
}

func TestFetcher_CloneKeepsConfiguredUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{UserAgent: "bookdex-test", Timeout: 5 * time.Second})

	_, err := f.fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "bookdex-test", gotUA)
}

func TestFetcher_FetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{Timeout: 5 * time.Second})

	_, err := f.fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetcher_FetchCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(FetcherConfig{Timeout: 5 * time.Second})

	_, err := f.fetch(ctx, "http://127.0.0.1:0/never")
	require.Error(t, err)
}
