package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

func fastRetries(r *requester) {
	r.baseDelay = time.Millisecond
	r.jitter = 0
}

const searchListing = `{
  "kind": "Listing",
  "data": {"children": [
    {"kind": "t3", "data": {"id": "abc", "subreddit": "productivity", "title": "Can't focus at home",
      "selftext": "Every afternoon I lose hours.", "score": 42, "num_comments": 7,
      "permalink": "/r/productivity/comments/abc/cant_focus/", "created_utc": 1700000000}},
    {"kind": "t3", "data": {"id": "def", "subreddit": "productivity", "title": "Best timer apps?",
      "selftext": "", "score": 3, "num_comments": 0,
      "permalink": "/r/productivity/comments/def/best_timer/", "created_utc": 1700000100}}
  ]}
}`

const commentListing = `[
  {"kind": "Listing", "data": {"children": []}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"body": "Pomodoro blocks changed everything for me.", "score": 12}},
    {"kind": "more", "data": {"count": 4}}
  ]}}
]`

func newAPITestServer(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Errorf("token request without basic auth")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewAPIClient(context.Background(), APIClientConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "adsynth-test",
		TokenURL:     server.URL + "/api/v1/access_token",
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
	}, zap.NewNop())
	fastRetries(client.requester)
	return client
}

func TestAPIClientSearchParsesPostsAndComments(t *testing.T) {
	client := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "adsynth-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		switch {
		case r.URL.Path == "/r/productivity/search":
			if r.URL.Query().Get("q") != "focus app" || r.URL.Query().Get("restrict_sr") != "1" {
				t.Errorf("unexpected search query %s", r.URL.RawQuery)
			}
			fmt.Fprint(w, searchListing)
		case r.URL.Path == "/r/productivity/comments/abc":
			fmt.Fprint(w, commentListing)
		default:
			http.NotFound(w, r)
		}
	})

	posts, err := client.Search(context.Background(), "productivity", "focus app", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []domain.DiscussionPost{
		{
			Source:       "productivity",
			Title:        "Can't focus at home",
			Body:         "Every afternoon I lose hours.",
			Score:        42,
			CommentCount: 7,
			Permalink:    "https://www.reddit.com/r/productivity/comments/abc/cant_focus/",
			CreatedUTC:   time.Unix(1700000000, 0).UTC(),
			Comments:     []domain.Comment{{Body: "Pomodoro blocks changed everything for me.", Score: 12}},
		},
		{
			Source:       "productivity",
			Title:        "Best timer apps?",
			Score:        3,
			Permalink:    "https://www.reddit.com/r/productivity/comments/def/best_timer/",
			CreatedUTC:   time.Unix(1700000100, 0).UTC(),
			Comments:     []domain.Comment{},
		},
	}
	if diff := cmp.Diff(want, posts); diff != "" {
		t.Fatalf("posts mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments/") {
			fmt.Fprint(w, `[]`)
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, searchListing)
	})

	posts, err := client.Search(context.Background(), "productivity", "focus", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 1 || calls.Load() != 3 {
		t.Fatalf("expected 1 post after 3 attempts, got %d posts and %d calls", len(posts), calls.Load())
	}
}

func TestAPIClientClientErrorIsSearchError(t *testing.T) {
	var calls atomic.Int32
	client := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "private_sub", "focus", 2)
	searchErr, ok := err.(*errors.SearchError)
	if !ok {
		t.Fatalf("expected *SearchError, got %T (%v)", err, err)
	}
	if searchErr.StatusCode != http.StatusForbidden || searchErr.Source != "private_sub" {
		t.Fatalf("unexpected error fields: %+v", searchErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestAPIClientKeepsPostWhenCommentsFail(t *testing.T) {
	client := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, searchListing)
	})

	posts, err := client.Search(context.Background(), "productivity", "focus", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 2 || len(posts[0].Comments) != 0 {
		t.Fatalf("expected posts without comments, got %+v", posts)
	}
}

const searchPage = `<html><body>
<div class="search-result search-result-link">
  <a class="search-title" href="https://old.reddit.com/r/productivity/comments/abc/cant_focus/">Can't focus at home</a>
  <span class="search-score">1,204 points</span>
  <a class="search-comments" href="https://old.reddit.com/r/productivity/comments/abc/cant_focus/">37 comments</a>
  <time datetime="2024-03-01T10:00:00+00:00">2 years ago</time>
  <div class="search-result-body"><div class="md"><p>Every afternoon I lose hours.</p></div></div>
</div>
<div class="search-result search-result-link">
  <a class="search-title" href="https://old.reddit.com/r/productivity/comments/def/timers/">Best timer apps?</a>
  <span class="search-score">5 points</span>
  <a class="search-comments" href="https://old.reddit.com/r/productivity/comments/def/timers/">no comments</a>
</div>
</body></html>`

const commentPage = `<html><body><div class="commentarea"><div class="sitetable">
  <div class="thing comment">
    <div class="entry"><span class="score unvoted" title="15">15 points</span>
      <div class="usertext-body"><div class="md"><p>Pomodoro blocks changed everything for me.</p></div></div>
    </div>
    <div class="child"><div class="sitetable">
      <div class="thing comment"><div class="entry"><div class="usertext-body"><div class="md"><p>nested reply</p></div></div></div></div>
    </div></div>
  </div>
</div></div></body></html>`

func TestHTMLClientScrapesSearchAndComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/productivity/search":
			fmt.Fprint(w, searchPage)
		case "/r/productivity/comments/abc/cant_focus/":
			fmt.Fprint(w, commentPage)
		default:
			fmt.Fprint(w, `<html></html>`)
		}
	}))
	defer server.Close()

	client := NewHTMLClient(HTMLClientConfig{BaseURL: server.URL, UserAgent: "adsynth-test"}, zap.NewNop())
	fastRetries(client.requester)

	posts, err := client.Search(context.Background(), "productivity", "focus", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected limit to cap results at 1, got %d", len(posts))
	}

	post := posts[0]
	if post.Title != "Can't focus at home" || post.Score != 1204 || post.CommentCount != 37 {
		t.Fatalf("unexpected post header: %+v", post)
	}
	if post.Body != "Every afternoon I lose hours." || post.Permalink != "https://www.reddit.com/r/productivity/comments/abc/cant_focus/" {
		t.Fatalf("unexpected post body/permalink: %+v", post)
	}
	if !post.CreatedUTC.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created time %v", post.CreatedUTC)
	}
	want := []domain.Comment{{Body: "Pomodoro blocks changed everything for me.", Score: 15}}
	if diff := cmp.Diff(want, post.Comments); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeadingInt(t *testing.T) {
	cases := map[string]int{
		"1,204 points": 1204,
		"37 comments":  37,
		"no comments":  0,
		"-3 points":    -3,
		"":             0,
	}
	for in, want := range cases {
		if got := parseLeadingInt(in); got != want {
			t.Fatalf("parseLeadingInt(%q) = %d, want %d", in, got, want)
		}
	}
}

type fakeSearcher struct {
	calls int
	posts []domain.DiscussionPost
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string, _ int) ([]domain.DiscussionPost, error) {
	f.calls++
	return f.posts, f.err
}

type memoryCache struct {
	values  map[string][]domain.DiscussionPost
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if m.failGet {
		return false, fmt.Errorf("redis down")
	}
	posts, ok := m.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*[]domain.DiscussionPost)) = posts
	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.([]domain.DiscussionPost)
	return nil
}

func TestCachedSearcherServesRepeatQueriesFromCache(t *testing.T) {
	next := &fakeSearcher{posts: []domain.DiscussionPost{{Title: "cached"}}}
	cache := &memoryCache{values: map[string][]domain.DiscussionPost{}}
	searcher := NewCachedSearcher(next, cache, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		posts, err := searcher.Search(context.Background(), "Productivity", "Focus", 2)
		if err != nil || len(posts) != 1 || posts[0].Title != "cached" {
			t.Fatalf("unexpected result %v %v", posts, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one backend call, got %d", next.calls)
	}
	if _, ok := cache.values["search:productivity:focus:2"]; !ok {
		t.Fatalf("expected normalized cache key, got %v", cache.values)
	}
}

func TestCachedSearcherFallsThroughOnCacheError(t *testing.T) {
	next := &fakeSearcher{posts: []domain.DiscussionPost{{Title: "fresh"}}}
	cache := &memoryCache{values: map[string][]domain.DiscussionPost{}, failGet: true}
	searcher := NewCachedSearcher(next, cache, time.Minute, zap.NewNop())

	posts, err := searcher.Search(context.Background(), "productivity", "focus", 2)
	if err != nil || len(posts) != 1 {
		t.Fatalf("expected backend result, got %v %v", posts, err)
	}
}

func TestCachedSearcherDoesNotCacheErrors(t *testing.T) {
	next := &fakeSearcher{err: fmt.Errorf("boom")}
	cache := &memoryCache{values: map[string][]domain.DiscussionPost{}}
	searcher := NewCachedSearcher(next, cache, time.Minute, zap.NewNop())

	if _, err := searcher.Search(context.Background(), "productivity", "focus", 2); err == nil {
		t.Fatalf("expected backend error")
	}
	if len(cache.values) != 0 {
		t.Fatalf("errors must not be cached")
	}
}

func TestPostURL(t *testing.T) {
	cases := map[string]string{
		"/r/go/comments/x1/title/":                 "https://www.reddit.com/r/go/comments/x1/title/",
		"r/go/comments/x1/title/":                  "https://www.reddit.com/r/go/comments/x1/title/",
		"https://www.reddit.com/r/go/comments/x1/": "https://www.reddit.com/r/go/comments/x1/",
		"":                                         "",
	}
	for in, want := range cases {
		if got := postURL(in); got != want {
			t.Fatalf("postURL(%q) = %q, want %q", in, got, want)
		}
	}
}
