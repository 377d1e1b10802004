package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"topmovies/movie/internal/gateway"
	"topmovies/movie/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalog(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(server.URL+"/3", "Bearer key", zap.NewNop())
}

func TestSearch(t *testing.T) {
	g := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "phone booth", q.Get("query"))
		assert.Equal(t, "true", q.Get("include_adult"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":1817,"title":"Phone Booth","release_date":"2002-11-17","poster_path":"/booth.jpg","overview":"A caller."},
			{"id":2,"title":"Phone Booth 2","release_date":"","poster_path":null,"overview":""}
		]}`))
	})

	got, err := g.Search(context.Background(), "phone booth")
	require.NoError(t, err)
	want := []model.Candidate{
		{ID: 1817, Title: "Phone Booth", ReleaseDate: "2002-11-17", PosterPath: "/booth.jpg", Overview: "A caller."},
		{ID: 2, Title: "Phone Booth 2"},
	}
	assert.Equal(t, "", cmp.Diff(want, got))
}

func TestSearchEmpty(t *testing.T) {
	g := newCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	})
	got, err := g.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetails(t *testing.T) {
	g := newCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/1817", r.URL.Path)
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`{"id":1817,"title":"Phone Booth","release_date":"2002-11-17","poster_path":"/booth.jpg","overview":"A caller."}`))
	})
	got, err := g.Details(context.Background(), 1817)
	require.NoError(t, err)
	assert.Equal(t, &model.Details{
		Title:       "Phone Booth",
		ReleaseDate: "2002-11-17",
		PosterPath:  "/booth.jpg",
		Overview:    "A caller.",
	}, got)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		search  bool
		wantErr error
	}{
		{name: "details not found", status: http.StatusNotFound, body: `{"status_code":34}`, wantErr: gateway.ErrNotFound},
		{name: "details unauthorized", status: http.StatusUnauthorized, body: `{"status_code":7}`, wantErr: gateway.ErrUnavailable},
		{name: "search endpoint missing", status: http.StatusNotFound, body: `{"status_code":34}`, search: true, wantErr: gateway.ErrUnavailable},
		{name: "search server error", status: http.StatusInternalServerError, search: true, wantErr: gateway.ErrUnavailable},
		{name: "details bad json", status: http.StatusOK, body: `{`, wantErr: gateway.ErrUnavailable},
		{name: "details missing title", status: http.StatusOK, body: `{"release_date":"2002-11-17"}`, wantErr: gateway.ErrMalformedMetadata},
		{name: "search result missing id", status: http.StatusOK, body: `{"results":[{"title":"x"}]}`, search: true, wantErr: gateway.ErrMalformedMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			var err error
			if tt.search {
				_, err = g.Search(context.Background(), "x")
			} else {
				_, err = g.Details(context.Background(), 1)
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchNotFoundIsNotAMissingMovie(t *testing.T) {
	g := newCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := g.Search(context.Background(), "heat")
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.NotErrorIs(t, err, gateway.ErrNotFound)
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	g := New(url, "", zap.NewNop(), WithTimeout(time.Second))
	_, err := g.Search(context.Background(), "x")
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestContextCancelled(t *testing.T) {
	g := newCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Search(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	client := &http.Client{}
	g := New("http://catalog/3/", "k", zap.NewNop(), WithHTTPClient(client), WithLanguage("de-DE"), WithTimeout(2*time.Second))
	assert.Equal(t, "http://catalog/3", g.baseURL)
	assert.Equal(t, "de-DE", g.language)
	assert.Equal(t, 2*time.Second, g.httpClient.Timeout)
	assert.Zero(t, client.Timeout)
}
