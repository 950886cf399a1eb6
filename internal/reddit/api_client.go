package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// commentFetchLimit bounds the top-level comments requested per post. The
// collection stage filters and caps them further.
const commentFetchLimit = 10

type APIClientConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	TokenURL     string
	BaseURL      string
	Timeout      time.Duration
}

// APIClient searches through the authenticated JSON API using an
// application-only token.
type APIClient struct {
	requester *requester
	baseURL   string
	logger    *zap.Logger
}

func NewAPIClient(ctx context.Context, cfg APIClientConfig, logger *zap.Logger) *APIClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = constants.APIConfig.RedditTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.APIConfig.RedditAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.RedditTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.APIConfig.DefaultUserAgent
	}

	// The token endpoint rejects requests without a descriptive User-Agent.
	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	httpClient := creds.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	logger.Info("Reddit API client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout),
	)

	return &APIClient{
		requester: newRequester(httpClient, "reddit-api", cfg.UserAgent, logger),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		logger:    logger,
	}
}

// Search returns up to limit posts matching query within source, each with its
// top-level comments. A failed comment fetch keeps the post without comments.
func (c *APIClient) Search(ctx context.Context, source, query string, limit int) ([]domain.DiscussionPost, error) {
	if limit <= 0 {
		return []domain.DiscussionPost{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "relevance")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	reqURL := fmt.Sprintf("%s/r/%s/search?%s", c.baseURL, url.PathEscape(source), params.Encode())

	body, err := c.requester.get(ctx, source, query, reqURL)
	if err != nil {
		return nil, err
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, errors.NewSearchError("failed to decode search listing", source, query, http.StatusOK, err)
	}

	posts := make([]domain.DiscussionPost, 0, util.Min(limit, len(listing.Data.Children)))
	for _, child := range listing.Data.Children {
		if len(posts) >= limit {
			break
		}
		if child.Kind != "t3" {
			continue
		}

		var raw postData
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			c.logger.Debug("Skipping undecodable post", zap.String("source", source), zap.Error(err))
			continue
		}

		post := raw.toDomain(source)
		comments, err := c.fetchComments(ctx, source, query, raw.ID)
		if err != nil {
			c.logger.Warn("Failed to fetch comments",
				zap.String("source", source),
				zap.String("post_id", raw.ID),
				zap.Error(err),
			)
		} else {
			post.Comments = comments
		}
		posts = append(posts, post)
	}

	c.logger.Debug("Reddit API search completed",
		zap.String("source", source),
		zap.String("query", query),
		zap.Int("posts", len(posts)),
	)

	return posts, nil
}

func (c *APIClient) fetchComments(ctx context.Context, source, query, postID string) ([]domain.Comment, error) {
	if postID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(commentFetchLimit))
	params.Set("depth", "1")
	params.Set("sort", "top")
	params.Set("raw_json", "1")
	reqURL := fmt.Sprintf("%s/r/%s/comments/%s?%s", c.baseURL, url.PathEscape(source), url.PathEscape(postID), params.Encode())

	body, err := c.requester.get(ctx, source, query, reqURL)
	if err != nil {
		return nil, err
	}

	// The comments endpoint returns [post listing, comment listing].
	var listings []listingResponse
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("decode comment listing: %w", err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	comments := make([]domain.Comment, 0, len(listings[1].Data.Children))
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var raw commentData
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			continue
		}
		comments = append(comments, domain.Comment{Body: raw.Body, Score: raw.Score})
	}
	return comments, nil
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
