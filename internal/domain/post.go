package domain

import "time"

// Comment is a top-level reply kept alongside a discussion post.
type Comment struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// DiscussionPost is one search hit from the discussion backend.
type DiscussionPost struct {
	Source       string    `json:"subreddit"`
	Title        string    `json:"title"`
	Body         string    `json:"content"`
	Score        int       `json:"score"`
	CommentCount int       `json:"num_comments"`
	Permalink    string    `json:"permalink"`
	CreatedUTC   time.Time `json:"created_utc"`
	Comments     []Comment `json:"comments"`
}

// DedupeByPermalink keeps the first post for each permalink. Posts without a
// permalink are always kept.
func DedupeByPermalink(posts []DiscussionPost) []DiscussionPost {
	seen := make(map[string]struct{}, len(posts))
	result := make([]DiscussionPost, 0, len(posts))
	for _, post := range posts {
		if post.Permalink != "" {
			if _, dup := seen[post.Permalink]; dup {
				continue
			}
			seen[post.Permalink] = struct{}{}
		}
		result = append(result, post)
	}
	return result
}
