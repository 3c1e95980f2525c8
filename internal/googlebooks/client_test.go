package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLookup_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "isbn:9780000000048", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"volumeInfo": {
				"title": "Sample Book",
				"authors": ["jane doe", "other person"],
				"publishedDate": "2020-05-01"
			}}]
		}`))
	}))
	defer srv.Close()

	c := New(5*time.Second, WithBaseURL(srv.URL))

	vol, err := c.Lookup(context.Background(), "9780000000048")
	require.NoError(t, err)
	require.Equal(t, "Sample Book", vol.Title)
	require.Equal(t, "jane doe", vol.Author)
	require.Equal(t, "2020", vol.PublishedYear)
}

func TestLookup_EmptyResultSet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer srv.Close()

	c := New(5*time.Second, WithBaseURL(srv.URL))

	_, err := c.Lookup(context.Background(), "9999999999999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_MalformedPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(5*time.Second, WithBaseURL(srv.URL))

	_, err := c.Lookup(context.Background(), "9780000000048")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestLookup_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(5*time.Second, WithBaseURL(srv.URL))

	_, err := c.Lookup(context.Background(), "9780000000048")
	require.Error(t, err)
}
