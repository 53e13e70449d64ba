package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `
	<!DOCTYPE html>
	<html>
	<head><title>Test Article</title></head>
	<body>
		<h1>Test Content</h1>
		<p>This is good content.</p>
		<p>It has two paragraphs.</p>
	</body>
	</html>
`

func TestHTTPFetchArticle(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewHTTPFetcher(Options{UserAgent: "ArticleMetrics/test", Timeout: 5 * time.Second})
	defer f.Close()

	article, err := f.Fetch(context.Background(), server.URL+"/article")
	require.NoError(t, err)

	assert.Equal(t, "Test Article", article.Title)
	assert.Equal(t, "This is good content. It has two paragraphs.", article.Text)
	assert.Equal(t, server.URL+"/article", article.URL)
	assert.Equal(t, "ArticleMetrics/test", userAgent)
}

func TestHTTPFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/image":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		case "/empty":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><head><title>Empty</title></head><body></body></html>`))
		}
	}))
	defer server.Close()

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	defer f.Close()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "not found", url: server.URL + "/missing"},
		{name: "non-webpage", url: server.URL + "/image"},
		{name: "empty article", url: server.URL + "/empty", wantErr: ErrEmptyArticle},
		{name: "invalid URL", url: "not-a-url"},
		{name: "unsupported scheme", url: "ftp://example.com/file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := f.Fetch(context.Background(), tt.url)
			assert.Error(t, err)
			assert.Nil(t, article)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHTTPRespectRobotsTxt(t *testing.T) {
	robotsHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			robotsHits++
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(articleHTML))
		}
	}))
	defer server.Close()

	f := NewHTTPFetcher(Options{FollowRobotsTxt: true, Timeout: 5 * time.Second})
	defer f.Close()

	_, err := f.Fetch(context.Background(), server.URL+"/public/page")
	assert.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL+"/private/page")
	assert.ErrorIs(t, err, ErrDisallowed)

	assert.Equal(t, 1, robotsHits)
}

func TestHTTPRateLimiting(t *testing.T) {
	var requestTimes []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestTimes = append(requestTimes, time.Now())
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewHTTPFetcher(Options{RequestsPerSecond: 5, Timeout: 5 * time.Second})
	defer f.Close()

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}

	require.Len(t, requestTimes, 3)
	for i := 1; i < len(requestTimes); i++ {
		gap := requestTimes[i].Sub(requestTimes[i-1])
		// 5 rps is one token every 200ms, with some tolerance
		assert.Greater(t, gap.Milliseconds(), int64(150))
	}
}

func TestHTTPFetchCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(Options{})
	_, err := f.Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUnknownDriver(t *testing.T) {
	f, err := New(context.Background(), Options{Driver: "selenium"})
	assert.Error(t, err)
	assert.Nil(t, f)
}

func TestNewHTTPDriver(t *testing.T) {
	f, err := New(context.Background(), Options{Driver: "http"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)
	assert.NoError(t, f.Close())
}
