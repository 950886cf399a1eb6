package reddit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/config"
)

// NewSearcher picks the API or HTML backend from the configured mode.
func NewSearcher(ctx context.Context, cfg config.RedditConfig, logger *zap.Logger) Searcher {
	if cfg.UseAPI() {
		return NewAPIClient(ctx, APIClientConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			UserAgent:    cfg.UserAgent,
			Timeout:      cfg.Timeout,
		}, logger)
	}
	return NewHTMLClient(HTMLClientConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	}, logger)
}
