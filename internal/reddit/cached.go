package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
)

// Cache is the subset of cache.CacheService used for search results.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedSearcher memoizes search results per (source, query, limit). Cache
// failures are logged and fall through to the wrapped searcher.
type CachedSearcher struct {
	next   Searcher
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedSearcher {
	return &CachedSearcher{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedSearcher) Search(ctx context.Context, source, query string, limit int) ([]domain.DiscussionPost, error) {
	key := searchCacheKey(source, query, limit)

	var cached []domain.DiscussionPost
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Search cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		s.logger.Debug("Search cache hit", zap.String("key", key), zap.Int("posts", len(cached)))
		if cached == nil {
			cached = []domain.DiscussionPost{}
		}
		return cached, nil
	}

	posts, err := s.next.Search(ctx, source, query, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, posts, s.ttl); err != nil {
		s.logger.Warn("Search cache write failed", zap.String("key", key), zap.Error(err))
	}

	return posts, nil
}

func searchCacheKey(source, query string, limit int) string {
	return fmt.Sprintf("search:%s:%s:%d",
		strings.ToLower(strings.TrimSpace(source)),
		url.QueryEscape(strings.ToLower(strings.TrimSpace(query))),
		limit,
	)
}
