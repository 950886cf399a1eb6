package prompt

import (
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

// ProductData is ProductInfo with optional fields filled by the sentinel.
type ProductData struct {
	Name           string
	Description    string
	TargetAudience string
	UseCases       string
	Niche          string
	Keywords       string
	CampaignGoal   string
}

func NewProductData(p domain.ProductInfo) ProductData {
	return ProductData{
		Name:           p.Name,
		Description:    p.Description,
		TargetAudience: p.TargetAudience,
		UseCases:       domain.OrNotSpecified(p.UseCases),
		Niche:          domain.OrNotSpecified(p.Niche),
		Keywords:       domain.OrNotSpecified(p.Keywords),
		CampaignGoal:   domain.OrNotSpecified(p.CampaignGoal),
	}
}

type ResearchData struct {
	Product ProductData
}

// PostData is a post excerpt. Index is zero-based.
type PostData struct {
	Index    int
	Title    string
	Content  string
	Comments []string
}

// NewPostData truncates the body and up to maxComments comments.
func NewPostData(index int, post domain.DiscussionPost, bodyChars, maxComments, commentChars int) PostData {
	data := PostData{
		Index:   index,
		Title:   post.Title,
		Content: util.TruncateString(post.Body, bodyChars),
	}
	for i, comment := range post.Comments {
		if i >= maxComments {
			break
		}
		data.Comments = append(data.Comments, util.TruncateString(comment.Body, commentChars))
	}
	return data
}

type RelevanceData struct {
	Product ProductData
	Posts   []PostData
}

type InsightsData struct {
	Product ProductData
	Posts   []PostData
}

type CopywritingData struct {
	Product      ProductData
	PainPoints   []string
	Language     []string
	Topics       []string
	Summary      string
	Instructions string
}

type ReviewData struct {
	Product    ProductData
	Platform   string
	PainPoints []string
	Language   []string
	Criteria   string
	Script     string
}
