package reddit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

// Searcher is satisfied by every search backend in this package.
type Searcher interface {
	Search(ctx context.Context, source, query string, limit int) ([]domain.DiscussionPost, error)
}

type listingResponse struct {
	Kind string `json:"kind"`
	Data struct {
		Children []listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (p postData) toDomain(source string) domain.DiscussionPost {
	sub := p.Subreddit
	if sub == "" {
		sub = source
	}
	return domain.DiscussionPost{
		Source:       sub,
		Title:        strings.TrimSpace(p.Title),
		Body:         strings.TrimSpace(p.Selftext),
		Score:        p.Score,
		CommentCount: p.NumComments,
		Permalink:    postURL(p.Permalink),
		CreatedUTC:   util.FromUnixSeconds(p.CreatedUTC),
		Comments:     []domain.Comment{},
	}
}

type commentData struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// postURL turns a site-relative permalink into an absolute www.reddit.com URL.
func postURL(permalink string) string {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" || strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return constants.APIConfig.RedditPostBaseURL + permalink
}
