package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llex-backend/config"
)

func testConfig() *config.Config {
	return &config.Config{
		NaverClientID:     "test-id",
		NaverClientSecret: "test-secret",
		GoogleSearchKey:   "test-key",
		GoogleSearchCX:    "test-cx",
		SearchTimeout:     5 * time.Second,
		SearchCacheTTL:    time.Minute,
		SearchRateLimit:   50,
	}
}

func TestSearchNewsMergesBackends(t *testing.T) {
	var naverCalls, googleCalls atomic.Int32

	naver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		naverCalls.Add(1)
		assert.Equal(t, "/news.json", r.URL.Path)
		assert.Equal(t, "test-id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "test-secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.NotEmpty(t, r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"<b>중대재해</b> 감축 로드맵","link":"https://n.example.com/1","description":"고용노동부 &amp; 공단 발표"},
			{"title":"중복 기사","link":"https://n.example.com/2","description":"내용"}
		]}`))
	}))
	defer naver.Close()

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		googleCalls.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"중복 기사","link":"https://g.example.com/1","snippet":"같은 제목"},
			{"title":"구글 단독 기사","link":"https://g.example.com/2","snippet":"내용"}
		]}`))
	}))
	defer google.Close()

	c := NewClient(testConfig(), WithNaverURL(naver.URL), WithGoogleURL(google.URL))

	results, err := c.SearchNews(context.Background(), "중대재해")
	require.NoError(t, err)
	assert.Equal(t, int32(1), naverCalls.Load())
	assert.Equal(t, int32(1), googleCalls.Load())

	require.Len(t, results, 3, "duplicate titles are merged")
	assert.Equal(t, "중대재해 감축 로드맵", results[0].Title, "markup stripped")
	assert.Equal(t, "고용노동부 & 공단 발표", results[0].Snippet, "entities unescaped")
	assert.Equal(t, "naver_news", results[0].Source)
	assert.Equal(t, "중복 기사", results[1].Title)
	assert.Equal(t, "naver_news", results[1].Source, "naver wins the duplicate")
	assert.Equal(t, "google", results[2].Source)
}

func TestSearchCacheShortCircuits(t *testing.T) {
	var calls atomic.Int32
	naver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"items":[{"title":"포스팅","link":"https://b.example.com","description":"후기"}]}`))
	}))
	defer naver.Close()

	c := NewClient(testConfig(), WithNaverURL(naver.URL))

	first, err := c.SearchBlogs(context.Background(), "안전교육 후기")
	require.NoError(t, err)
	second, err := c.SearchBlogs(context.Background(), "안전교육 후기")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second identical query is served from cache")
	assert.Equal(t, first, second)

	_, err = c.SearchBlogs(context.Background(), "다른 질문")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a different query misses the cache")
}

func TestSearchPartialBackendFailure(t *testing.T) {
	naver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"title":"네이버 결과","link":"https://n.example.com","description":"내용"}]}`))
	}))
	defer naver.Close()

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer google.Close()

	c := NewClient(testConfig(), WithNaverURL(naver.URL), WithGoogleURL(google.URL))

	results, err := c.SearchWeb(context.Background(), "질문")
	require.NoError(t, err, "one live backend is enough")
	require.Len(t, results, 1)
	assert.Equal(t, "네이버 결과", results[0].Title)
}

func TestSearchAllBackendsFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer failing.Close()

	c := NewClient(testConfig(), WithNaverURL(failing.URL), WithGoogleURL(failing.URL))

	_, err := c.SearchWeb(context.Background(), "질문")
	require.Error(t, err)
}

func TestSearchWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.NaverClientID = ""
	cfg.GoogleSearchKey = ""
	c := NewClient(cfg)

	results, err := c.SearchNews(context.Background(), "질문")
	require.NoError(t, err, "unconfigured backends are skipped, not errors")
	assert.Empty(t, results)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "안전모 착용 의무", stripTags("<b>안전모</b> 착용 <em>의무</em>"))
	assert.Equal(t, "A & B", stripTags("A &amp; B"))
}
