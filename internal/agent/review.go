package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
	"github.com/dsaidinesh/adsynth-backedn/internal/sanitize"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

// ReviewAgent critiques a script and proposes an improved version.
type ReviewAgent struct {
	*Base
}

func NewReviewAgent(base *Base) *ReviewAgent {
	return &ReviewAgent{Base: base}
}

func defaultReview(script string, platform domain.Platform) domain.Review {
	return domain.Review{
		Score:                    domain.FlexNumber(constants.ReviewDefaults.Score),
		Strengths:                domain.StringList{"Generally on target"},
		Weaknesses:               domain.StringList{"Could be more specific"},
		Suggestions:              domain.StringList{"Review original script"},
		PlatformSpecificFeedback: domain.FlexText(fmt.Sprintf("Consider optimizing further for %s format", platform)),
		ImprovedScript:           domain.FlexText(script),
		Platform:                 platform,
	}
}

// Review scores the script against the platform criteria. The returned
// review always carries an improved script, falling back to the input.
func (a *ReviewAgent) Review(ctx context.Context, script string, product domain.ProductInfo, insights domain.Insights, platform domain.Platform) domain.Review {
	platform = platform.OrGeneral()
	data := prompt.ReviewData{
		Product:    productData(product),
		Platform:   platform.String(),
		PainPoints: insights.PainPoints,
		Language:   insights.Language,
		Criteria:   prompt.ReviewCriteria(platform),
		Script:     script,
	}

	text := a.render(prompt.TemplateReview, data, func() string { return prompt.FallbackReview(data) })
	resp := a.generateStructured(ctx, StageReview, text)

	var review domain.Review
	if !resp.Decode(&review) {
		parsed, ok := extractReview(resp.Text)
		if !ok {
			a.logger.Warn("Review could not be parsed, using default review",
				zap.String("platform", platform.String()),
			)
			return defaultReview(script, platform)
		}
		review = parsed
	}

	score := review.Score.Int()
	if score == 0 {
		score = constants.ReviewDefaults.Score
	}
	review.Score = domain.FlexNumber(util.Clamp(score, constants.ReviewDefaults.MinScore, constants.ReviewDefaults.MaxScore))

	if strings.TrimSpace(string(review.ImprovedScript)) == "" {
		review.ImprovedScript = domain.FlexText(script)
	}
	review.Platform = platform

	a.logger.Info("Script reviewed",
		zap.String("platform", platform.String()),
		zap.Int("score", review.Score.Int()),
	)
	return review
}

func extractReview(text string) (domain.Review, bool) {
	review := sanitize.Extract(text, domain.Review{})
	if review.Score == 0 && review.ImprovedScript == "" && len(review.Strengths) == 0 && len(review.Weaknesses) == 0 {
		return domain.Review{}, false
	}
	return review, true
}
