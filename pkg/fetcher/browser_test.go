package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserFetchArticle(t *testing.T) {
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	if _, err := exec.LookPath("google-chrome"); err != nil {
		if _, err := exec.LookPath("chromium"); err != nil {
			t.Skip("no Chrome or Chromium installation found")
		}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Rendered</title></head><body>
			<script>document.addEventListener('DOMContentLoaded', function () {
				var p = document.createElement('p');
				p.textContent = 'Added by script.';
				document.body.appendChild(p);
			});</script>
			<p>Static paragraph.</p>
		</body></html>`))
	}))
	defer server.Close()

	f, err := NewBrowserFetcher(context.Background(), Options{
		Headless:     true,
		RenderWait:   200 * time.Millisecond,
		Timeout:      30 * time.Second,
		WindowWidth:  1280,
		WindowHeight: 800,
	})
	require.NoError(t, err)
	defer f.Close()

	article, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Rendered", article.Title)
	assert.Equal(t, "Static paragraph. Added by script.", article.Text)
	assert.NoError(t, f.Close())
}
