// Package search provides the outbound web search backends (Naver Open API
// and Google Custom Search), with result caching and per-host rate limiting.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"

	"llex-backend/config"
	"llex-backend/models"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Naver search verticals.
const (
	VerticalNews = "news"
	VerticalBlog = "blog"
	VerticalWeb  = "webkr"
)

const defaultDisplay = 5

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripTags removes markup the Naver API embeds in titles and snippets.
func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// Client queries Naver and Google search APIs. Safe for concurrent use.
type Client struct {
	httpClient *http.Client

	naverURL  string
	googleURL string

	naverClientID     string
	naverClientSecret string
	googleKey         string
	googleCX          string

	cache    *gocache.Cache
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
}

// Option configures the Client.
type Option func(*Client)

// WithNaverURL overrides the Naver endpoint (tests).
func WithNaverURL(u string) Option {
	return func(c *Client) { c.naverURL = u }
}

// WithGoogleURL overrides the Google endpoint (tests).
func WithGoogleURL(u string) Option {
	return func(c *Client) { c.googleURL = u }
}

// NewClient creates a search client from configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		httpClient:        &http.Client{Timeout: cfg.SearchTimeout},
		naverURL:          "https://openapi.naver.com/v1/search",
		googleURL:         "https://www.googleapis.com/customsearch/v1",
		naverClientID:     cfg.NaverClientID,
		naverClientSecret: cfg.NaverClientSecret,
		googleKey:         cfg.GoogleSearchKey,
		googleCX:          cfg.GoogleSearchCX,
		cache:             gocache.New(cfg.SearchCacheTTL, 2*cfg.SearchCacheTTL),
		limiters:          make(map[string]*rate.Limiter),
		rps:               rate.Limit(cfg.SearchRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(c.rps, 3)
	c.limiters[host] = l
	return l
}

type naverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

// searchNaver queries one Naver Open API vertical.
func (c *Client) searchNaver(ctx context.Context, vertical, query string, display int) ([]models.SearchResult, error) {
	if c.naverClientID == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s.json", c.naverURL, vertical)
	if err := c.limiter("naver").Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("query", query)
	q.Set("display", strconv.Itoa(display))
	q.Set("sort", "date")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Naver-Client-Id", c.naverClientID)
	req.Header.Set("X-Naver-Client-Secret", c.naverClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver %s search: HTTP %d", vertical, resp.StatusCode)
	}

	var data naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(data.Items))
	for _, item := range data.Items {
		results = append(results, models.SearchResult{
			Title:   stripTags(item.Title),
			Link:    item.Link,
			Snippet: stripTags(item.Description),
			Source:  "naver_" + vertical,
		})
	}
	return results, nil
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type googleResponse struct {
	Items []googleItem `json:"items"`
}

// searchGoogle queries the Google Custom Search API.
func (c *Client) searchGoogle(ctx context.Context, query string, num int) ([]models.SearchResult, error) {
	if c.googleKey == "" {
		return nil, nil
	}

	if err := c.limiter("google").Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.googleURL, nil)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("key", c.googleKey)
	q.Set("cx", c.googleCX)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search: HTTP %d", resp.StatusCode)
	}

	var data googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(data.Items))
	for _, item := range data.Items {
		results = append(results, models.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Source:  "google",
		})
	}
	return results, nil
}

// fanOut runs the given backends concurrently and merges their results in
// backend order, deduplicated by title.
func (c *Client) fanOut(ctx context.Context, cacheKey string, calls ...func(context.Context) ([]models.SearchResult, error)) ([]models.SearchResult, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]models.SearchResult), nil
	}

	results := make([][]models.SearchResult, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call func(context.Context) ([]models.SearchResult, error)) {
			defer wg.Done()
			results[i], errs[i] = call(ctx)
		}(i, call)
	}
	wg.Wait()

	var merged []models.SearchResult
	seen := make(map[string]bool)
	var lastErr error
	for i, rs := range results {
		if errs[i] != nil {
			lastErr = errs[i]
			slog.Warn("search backend failed", "error", errs[i])
			continue
		}
		for _, r := range rs {
			if r.Title == "" || seen[r.Title] {
				continue
			}
			seen[r.Title] = true
			merged = append(merged, r)
		}
	}

	// Only fail when every backend failed; partial results are usable.
	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}

	c.cache.Set(cacheKey, merged, gocache.DefaultExpiration)
	return merged, nil
}

// SearchNews queries the news backends (Naver news + Google) in parallel.
func (c *Client) SearchNews(ctx context.Context, query string) ([]models.SearchResult, error) {
	return c.fanOut(ctx, "news:"+query,
		func(ctx context.Context) ([]models.SearchResult, error) {
			return c.searchNaver(ctx, VerticalNews, query, defaultDisplay)
		},
		func(ctx context.Context) ([]models.SearchResult, error) {
			return c.searchGoogle(ctx, query+" 뉴스", defaultDisplay)
		},
	)
}

// SearchBlogs queries the Naver blog vertical.
func (c *Client) SearchBlogs(ctx context.Context, query string) ([]models.SearchResult, error) {
	return c.fanOut(ctx, "blog:"+query,
		func(ctx context.Context) ([]models.SearchResult, error) {
			return c.searchNaver(ctx, VerticalBlog, query, defaultDisplay)
		},
	)
}

// SearchWeb queries the general web backends in parallel.
func (c *Client) SearchWeb(ctx context.Context, query string) ([]models.SearchResult, error) {
	return c.fanOut(ctx, "web:"+query,
		func(ctx context.Context) ([]models.SearchResult, error) {
			return c.searchNaver(ctx, VerticalWeb, query, defaultDisplay)
		},
		func(ctx context.Context) ([]models.SearchResult, error) {
			return c.searchGoogle(ctx, query, defaultDisplay)
		},
	)
}
