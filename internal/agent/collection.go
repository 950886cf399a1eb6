package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

var (
	defaultCollectionSources = []string{"askreddit", "advice", "tipofmytongue", "buyitforlife"}
	defaultCollectionQueries = []string{"review", "recommendation", "problem", "alternative"}
	retryQueries             = []string{"recommendation", "review", "advice"}
)

// Searcher is the discussion search backend. An empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, source, query string, limit int) ([]domain.DiscussionPost, error)
}

// DataCollectionAgent runs every source/query pair against the searcher.
type DataCollectionAgent struct {
	searcher Searcher
	logger   *zap.Logger
}

func NewDataCollectionAgent(searcher Searcher, logger *zap.Logger) *DataCollectionAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataCollectionAgent{searcher: searcher, logger: logger}
}

// Collect searches each source with each query and concatenates the hits.
// A failing pair is logged and skipped. When nothing was found but at least
// one search call went through, the first few sources are retried with
// generic queries.
func (a *DataCollectionAgent) Collect(ctx context.Context, sources, queries []string, perQueryLimit int) []domain.DiscussionPost {
	if perQueryLimit <= 0 {
		perQueryLimit = constants.CollectionLimits.DefaultPerQuery
	}

	sources = validSources(sources)
	if len(sources) == 0 {
		a.logger.Warn("No valid sources, using defaults", zap.Strings("sources", defaultCollectionSources))
		sources = defaultCollectionSources
	}

	queries = cleanQueries(queries)
	if len(queries) == 0 {
		a.logger.Warn("No valid queries, using defaults", zap.Strings("queries", defaultCollectionQueries))
		queries = defaultCollectionQueries
	}

	posts, succeeded := a.searchAll(ctx, sources, queries, perQueryLimit)

	if len(posts) == 0 && succeeded > 0 && ctx.Err() == nil {
		retrySources := sources
		if len(retrySources) > constants.CollectionLimits.RetrySources {
			retrySources = retrySources[:constants.CollectionLimits.RetrySources]
		}
		a.logger.Info("No posts found, retrying with generic queries",
			zap.Strings("sources", retrySources),
		)
		posts, _ = a.searchAll(ctx, retrySources, retryQueries, perQueryLimit)
	}

	a.logger.Info("Data collection completed",
		zap.Int("posts", len(posts)),
		zap.Int("sources", len(sources)),
		zap.Int("queries", len(queries)),
	)
	return posts
}

func (a *DataCollectionAgent) searchAll(ctx context.Context, sources, queries []string, limit int) ([]domain.DiscussionPost, int) {
	posts := make([]domain.DiscussionPost, 0)
	succeeded := 0

	for _, source := range sources {
		for _, query := range queries {
			if ctx.Err() != nil {
				return posts, succeeded
			}

			found, err := a.searcher.Search(ctx, source, query, limit)
			if err != nil {
				a.logger.Warn("Search failed",
					zap.String("source", source),
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}
			succeeded++

			if len(found) > limit {
				found = found[:limit]
			}
			for _, post := range found {
				post.Comments = filterComments(post.Comments)
				posts = append(posts, post)
			}
			a.logger.Debug("Search completed",
				zap.String("source", source),
				zap.String("query", query),
				zap.Int("posts", len(found)),
			)
		}
	}
	return posts, succeeded
}

func validSources(sources []string) []string {
	valid := make([]string, 0, len(sources))
	for _, source := range sources {
		s := util.Normalize(source)
		if len(s) < constants.ResearchLimits.MinSourceLen {
			continue
		}
		if strings.ContainsAny(s, " /") || strings.HasPrefix(s, "<") {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}

func cleanQueries(queries []string) []string {
	cleaned := make([]string, 0, len(queries))
	for _, query := range queries {
		q := strings.NewReplacer(`"`, "", "'", "").Replace(query)
		q = strings.TrimSpace(q)
		if len(q) < constants.CollectionLimits.MinQueryLength {
			continue
		}
		cleaned = append(cleaned, q)
	}
	return cleaned
}

// filterComments drops short comments, then keeps at most MaxComments.
func filterComments(comments []domain.Comment) []domain.Comment {
	kept := make([]domain.Comment, 0, constants.CollectionLimits.MaxComments)
	for _, comment := range comments {
		if len([]rune(strings.TrimSpace(comment.Body))) < constants.CollectionLimits.MinCommentLength {
			continue
		}
		kept = append(kept, comment)
		if len(kept) == constants.CollectionLimits.MaxComments {
			break
		}
	}
	return kept
}
