package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/extractor"
)

// maxBodySize caps how much of a page is read
const maxBodySize = 10 << 20

// HTTPFetcher downloads pages without running JavaScript and extracts
// their paragraphs from the static HTML
type HTTPFetcher struct {
	client          *http.Client
	extractor       *extractor.Extractor
	userAgent       string
	followRobotsTxt bool
	robots          map[string]*robotstxt.RobotsData
	limiter         *rate.Limiter
	logger          *log.Logger
}

// NewHTTPFetcher creates an HTTPFetcher with its own connection pool
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	f := &HTTPFetcher{
		client:          &http.Client{Transport: transport, Timeout: opts.Timeout, Jar: jar},
		extractor:       extractor.New(),
		userAgent:       opts.UserAgent,
		followRobotsTxt: opts.FollowRobotsTxt,
		robots:          make(map[string]*robotstxt.RobotsData),
		logger:          logger,
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// Fetch downloads pageURL once and extracts its title and paragraph text
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*models.Article, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL %q", pageURL)
	}

	if f.followRobotsTxt && !f.isAllowedByRobots(ctx, u) {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, ErrDisallowed)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isWebpageMIME(ct) {
		return nil, fmt.Errorf("fetch %s: non-webpage content type %s", pageURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", pageURL, err)
	}

	title, text, err := f.extractor.Extract(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}
	if text == "" {
		return nil, fmt.Errorf("extract %s: %w", pageURL, ErrEmptyArticle)
	}

	return &models.Article{URL: pageURL, Title: title, Text: text}, nil
}

// Close releases idle connections
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *HTTPFetcher) setHeaders(req *http.Request) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// isAllowedByRobots fetches robots.txt once per host. Unreachable or
// malformed robots files allow everything.
func (f *HTTPFetcher) isAllowedByRobots(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host
	robots, seen := f.robots[key]
	if !seen {
		robots = f.loadRobots(ctx, key)
		f.robots[key] = robots
	}
	if robots == nil {
		return true
	}

	agent := f.userAgent
	if agent == "" {
		agent = "*"
	}
	return robots.TestAgent(u.RequestURI(), agent)
}

func (f *HTTPFetcher) loadRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Printf("robots.txt unavailable for %s: %v", origin, err)
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Printf("robots.txt unreadable for %s: %v", origin, err)
		return nil
	}
	return robots
}

func isWebpageMIME(contentType string) bool {
	mimeType := strings.TrimSpace(strings.Split(strings.ToLower(contentType), ";")[0])
	webpageMIMEs := []string{"text/html", "application/xhtml+xml", "application/xhtml", "text/xml", "application/xml", "text/plain"}
	for _, mime := range webpageMIMEs {
		if mime == mimeType {
			return true
		}
	}
	return false
}
