package reddit

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

const (
	selectorSearchResult  = "div.search-result-link"
	selectorSearchTitle   = "a.search-title"
	selectorSearchScore   = "span.search-score"
	selectorSearchComment = "a.search-comments"
	selectorSearchTime    = "time[datetime]"
	selectorSearchBody    = "div.search-result-body"
	selectorComment       = ".commentarea > .sitetable > .thing.comment"
	selectorCommentBody   = ".entry .usertext-body .md"
	selectorCommentScore  = ".score.unvoted"
)

var leadingNumberRegex = regexp.MustCompile(`-?[\d,]+`)

type HTMLClientConfig struct {
	UserAgent string
	BaseURL   string
	Timeout   time.Duration
}

// HTMLClient scrapes the legacy server-rendered site when no API credentials
// are configured.
type HTMLClient struct {
	requester *requester
	baseURL   string
	logger    *zap.Logger
}

func NewHTMLClient(cfg HTMLClientConfig, logger *zap.Logger) *HTMLClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.APIConfig.RedditHTMLBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.RedditTimeout
	}

	logger.Info("Reddit HTML client initialized", zap.String("base_url", cfg.BaseURL))

	return &HTMLClient{
		requester: newRequester(&http.Client{Timeout: cfg.Timeout}, "reddit-html", cfg.UserAgent, logger),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		logger:    logger,
	}
}

func (c *HTMLClient) Search(ctx context.Context, source, query string, limit int) ([]domain.DiscussionPost, error) {
	if limit <= 0 {
		return []domain.DiscussionPost{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "on")
	params.Set("sort", "relevance")
	params.Set("t", "all")
	reqURL := fmt.Sprintf("%s/r/%s/search?%s", c.baseURL, url.PathEscape(source), params.Encode())

	body, err := c.requester.get(ctx, source, query, reqURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewSearchError("HTML parse failed", source, query, http.StatusOK, err)
	}

	type hit struct {
		post        domain.DiscussionPost
		commentsURL string
	}

	hits := make([]hit, 0, limit)
	doc.Find(selectorSearchResult).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(hits) >= limit {
			return false
		}
		post, commentsURL, ok := c.parseSearchResult(sel, source)
		if ok {
			hits = append(hits, hit{post: post, commentsURL: commentsURL})
		}
		return true
	})

	posts := make([]domain.DiscussionPost, 0, len(hits))
	for _, h := range hits {
		post := h.post
		if h.commentsURL != "" {
			comments, err := c.fetchComments(ctx, source, query, h.commentsURL)
			if err != nil {
				c.logger.Warn("Failed to fetch comment page",
					zap.String("source", source),
					zap.String("url", h.commentsURL),
					zap.Error(err),
				)
			} else {
				post.Comments = comments
			}
		}
		posts = append(posts, post)
	}

	c.logger.Debug("Reddit HTML search completed",
		zap.String("source", source),
		zap.String("query", query),
		zap.Int("posts", len(posts)),
	)

	return posts, nil
}

func (c *HTMLClient) parseSearchResult(sel *goquery.Selection, source string) (domain.DiscussionPost, string, bool) {
	titleLink := sel.Find(selectorSearchTitle).First()
	title := strings.TrimSpace(titleLink.Text())
	if title == "" {
		return domain.DiscussionPost{}, "", false
	}

	post := domain.DiscussionPost{
		Source:   source,
		Title:    title,
		Body:     strings.TrimSpace(sel.Find(selectorSearchBody).First().Text()),
		Score:    parseLeadingInt(sel.Find(selectorSearchScore).First().Text()),
		Comments: []domain.Comment{},
	}

	commentsLink := sel.Find(selectorSearchComment).First()
	post.CommentCount = parseLeadingInt(commentsLink.Text())

	href, _ := commentsLink.Attr("href")
	if href == "" {
		href, _ = titleLink.Attr("href")
	}
	commentsURL := c.resolve(href)
	if u, err := url.Parse(href); err == nil && strings.Contains(u.Path, "/comments/") {
		post.Permalink = postURL(u.Path)
	}

	if stamp, ok := sel.Find(selectorSearchTime).First().Attr("datetime"); ok {
		if created, err := time.Parse(time.RFC3339, stamp); err == nil {
			post.CreatedUTC = created.UTC()
		}
	}

	if post.Permalink == "" {
		commentsURL = ""
	}

	return post, commentsURL, true
}

func (c *HTMLClient) fetchComments(ctx context.Context, source, query, pageURL string) ([]domain.Comment, error) {
	body, err := c.requester.get(ctx, source, query, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	comments := make([]domain.Comment, 0)
	doc.Find(selectorComment).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(comments) >= commentFetchLimit {
			return false
		}
		text := strings.TrimSpace(sel.Find(selectorCommentBody).First().Text())
		if text == "" {
			return true
		}
		score := 0
		if title, ok := sel.Find(selectorCommentScore).First().Attr("title"); ok {
			score = parseLeadingInt(title)
		}
		comments = append(comments, domain.Comment{Body: text, Score: score})
		return true
	})

	return comments, nil
}

// resolve rewrites absolute links onto the configured base so that comment
// pages are fetched from the same host as the search page.
func (c *HTMLClient) resolve(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return c.baseURL + u.EscapedPath()
}

func parseLeadingInt(text string) int {
	match := leadingNumberRegex.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
