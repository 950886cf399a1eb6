package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
	"github.com/dsaidinesh/adsynth-backedn/internal/sanitize"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/ai"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

var (
	noDataInsights = domain.Insights{
		PainPoints: domain.StringList{"No relevant data found"},
		Language:   domain.StringList{"General terms only"},
		Topics:     domain.StringList{"Insufficient data"},
		Summary:    "No relevant data found from Reddit scraping.",
	}

	unparsedInsights = domain.Insights{
		PainPoints: domain.StringList{"Unclear from data"},
		Language:   domain.StringList{"General terms only"},
		Topics:     domain.StringList{"Insufficient data"},
		Summary:    "Analysis failed to parse properly. Please review the raw data.",
	}

	genericPainPoints = []string{
		"Dissatisfaction with the quality of existing solutions",
		"Feeling overwhelmed by too many complex options",
		"Wasting time and money on ineffective products",
		"Stress from dealing with persistent problems",
	}

	genericLanguage = []string{
		"game-changer", "life-changing", "revolutionary", "must-have",
		"essential", "breakthrough", "hassle-free",
	}

	genericTopics = []string{
		"Sustainable and eco-friendly alternatives",
		"Digital transformation in daily life",
		"Health and wellness optimization",
		"Work-life balance improvements",
		"Smart technology integration",
	}

	problemIndicators = []string{"solve", "problem", "challenge", "improve", "enhance", "prevent", "reduce"}

	audienceLanguage = []struct {
		keyword string
		terms   []string
	}{
		{"professional", []string{"ROI", "efficiency", "performance", "productivity"}},
		{"parent", []string{"family-friendly", "time-saving", "child-safe", "peace of mind"}},
		{"health", []string{"wellness", "self-care", "healthy lifestyle", "well-being"}},
		{"tech", []string{"innovative", "cutting-edge", "state-of-the-art", "seamless"}},
	}
)

// AnalysisConfig tunes the relevance filter. Zero values use the defaults.
type AnalysisConfig struct {
	RelevanceThreshold float64
	RelevanceBatchSize int
}

// AnalysisAgent turns collected posts, or product info alone, into insights.
type AnalysisAgent struct {
	*Base
	threshold float64
	batchSize int
}

func NewAnalysisAgent(base *Base, cfg AnalysisConfig) *AnalysisAgent {
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = constants.AnalysisLimits.RelevanceThreshold
	}
	if cfg.RelevanceBatchSize <= 0 {
		cfg.RelevanceBatchSize = constants.AnalysisLimits.RelevanceBatchSize
	}
	return &AnalysisAgent{
		Base:      base,
		threshold: cfg.RelevanceThreshold,
		batchSize: cfg.RelevanceBatchSize,
	}
}

type relevanceEvaluation struct {
	PostIndex      json.RawMessage   `json:"post_index"`
	RelevanceScore domain.FlexNumber `json:"relevance_score"`
	Reason         domain.FlexText   `json:"reason"`
}

// index reads post_index as a whole number or a numeric string such as "1".
func (e relevanceEvaluation) index() (int, bool) {
	raw := bytes.TrimSpace(e.PostIndex)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// FilterByRelevance scores the first batch of posts and keeps those at or
// above the threshold, in input order. When nothing can be scored or nothing
// qualifies the whole batch is returned.
func (a *AnalysisAgent) FilterByRelevance(ctx context.Context, posts []domain.DiscussionPost, product domain.ProductInfo) []domain.DiscussionPost {
	if len(posts) == 0 {
		return posts
	}

	batch := posts[:util.Min(a.batchSize, len(posts))]
	data := prompt.RelevanceData{
		Product: productData(product),
		Posts:   make([]prompt.PostData, 0, len(batch)),
	}
	for i, post := range batch {
		data.Posts = append(data.Posts, prompt.NewPostData(i, post,
			constants.AnalysisLimits.RelevanceBodyChars,
			constants.AnalysisLimits.RelevanceComments,
			constants.AnalysisLimits.RelevanceCommentChars,
		))
	}

	text := a.render(prompt.TemplateRelevanceFilter, data, func() string { return prompt.FallbackRelevanceFilter(data) })
	resp := a.generateStructured(ctx, StageAnalysis, text)

	// The payload holds only the first JSON value found, so an array preceded
	// by prose is parsed from the full text.
	var evaluations []relevanceEvaluation
	if !resp.Defaulted {
		evaluations = parseEvaluations(resp.Text)
	}
	if len(evaluations) == 0 {
		evaluations = parseEvaluations(string(resp.Payload))
	}
	if len(evaluations) == 0 {
		a.logger.Warn("No relevance evaluations parsed, keeping batch", zap.Int("posts", len(batch)))
		return batch
	}

	keep := make([]bool, len(batch))
	for _, eval := range evaluations {
		idx, _ := eval.index()
		if idx < 0 || idx >= len(batch) {
			continue
		}
		if float64(eval.RelevanceScore) >= a.threshold {
			keep[idx] = true
		}
	}

	relevant := make([]domain.DiscussionPost, 0, len(batch))
	for i, post := range batch {
		if keep[i] {
			relevant = append(relevant, post)
		}
	}

	if len(relevant) == 0 {
		a.logger.Info("No posts met the relevance threshold, keeping batch",
			zap.Float64("threshold", a.threshold),
			zap.Int("posts", len(batch)),
		)
		return batch
	}

	a.logger.Info("Filtered posts by relevance",
		zap.Int("relevant", len(relevant)),
		zap.Int("evaluated", len(batch)),
	)
	return relevant
}

// parseEvaluations accepts an array of evaluations or a single evaluation
// object, located anywhere in raw. Array entries are decoded one by one and
// entries without a usable post_index are skipped. The single-object form is
// only tried when raw holds no array of objects.
func parseEvaluations(raw string) []relevanceEvaluation {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	if items, _, ok := sanitize.ExtractWith[evaluationList](raw, sanitize.DefaultStrategies); ok {
		evaluations := make([]relevanceEvaluation, 0, len(items))
		for _, item := range items {
			var eval relevanceEvaluation
			if err := json.Unmarshal(item, &eval); err != nil {
				continue
			}
			if _, ok := eval.index(); ok {
				evaluations = append(evaluations, eval)
			}
		}
		return evaluations
	}

	single, _, ok := sanitize.ExtractWith[relevanceEvaluation](raw, sanitize.DefaultStrategies)
	if !ok {
		return nil
	}
	if _, ok := single.index(); !ok {
		return nil
	}
	return []relevanceEvaluation{single}
}

// evaluationList is a JSON array holding at least one object. Arrays of
// scalars, such as a bracketed "[1]" in prose, do not decode.
type evaluationList []json.RawMessage

func (l *evaluationList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for _, item := range items {
		if trimmed := bytes.TrimSpace(item); len(trimmed) > 0 && trimmed[0] == '{' {
			*l = items
			return nil
		}
	}
	return fmt.Errorf("array holds no evaluation objects")
}

// ExtractInsights asks the model for pain points, language, topics and a
// summary drawn from the first posts. Missing fields get placeholders.
func (a *AnalysisAgent) ExtractInsights(ctx context.Context, posts []domain.DiscussionPost, product domain.ProductInfo) domain.Insights {
	if len(posts) == 0 {
		return noDataInsights
	}

	limit := util.Min(constants.AnalysisLimits.InsightPosts, len(posts))
	data := prompt.InsightsData{
		Product: productData(product),
		Posts:   make([]prompt.PostData, 0, limit),
	}
	for i, post := range posts[:limit] {
		data.Posts = append(data.Posts, prompt.NewPostData(i, post,
			constants.AnalysisLimits.InsightBodyChars,
			constants.AnalysisLimits.InsightComments,
			constants.AnalysisLimits.InsightCommentChars,
		))
	}

	text := a.render(prompt.TemplateInsightsExtract, data, func() string { return prompt.FallbackInsightsExtract(data) })
	resp := a.generateStructured(ctx, StageAnalysis, text)

	insights, ok := decodeInsights(resp)
	if !ok {
		a.logger.Warn("Insight extraction could not be parsed, using placeholders")
		return unparsedInsights
	}

	return fillInsightPlaceholders(insights)
}

func decodeInsights(resp *ai.Response) (domain.Insights, bool) {
	if resp == nil || resp.Defaulted {
		return domain.Insights{}, false
	}
	var insights domain.Insights
	if resp.Decode(&insights) {
		return insights, true
	}
	var zero domain.Insights
	insights = sanitize.Extract(resp.Text, zero)
	if insightsEmpty(insights) {
		return zero, false
	}
	return insights, true
}

func insightsEmpty(i domain.Insights) bool {
	return len(i.PainPoints) == 0 && len(i.Language) == 0 && len(i.Topics) == 0 && i.Summary == ""
}

func fillInsightPlaceholders(insights domain.Insights) domain.Insights {
	if len(insights.PainPoints) == 0 {
		insights.PainPoints = unparsedInsights.PainPoints
	}
	if len(insights.Language) == 0 {
		insights.Language = unparsedInsights.Language
	}
	if len(insights.Topics) == 0 {
		insights.Topics = unparsedInsights.Topics
	}
	if strings.TrimSpace(string(insights.Summary)) == "" {
		insights.Summary = "No specific insights generated."
	}
	return insights
}

// SynthesizeWithoutData produces insights from product info alone. Fields the
// model leaves empty are filled by deterministic generators.
func (a *AnalysisAgent) SynthesizeWithoutData(ctx context.Context, product domain.ProductInfo) domain.Insights {
	data := prompt.ResearchData{Product: productData(product)}
	text := a.render(prompt.TemplateInsightsSynthesis, data, func() string { return prompt.FallbackInsightsSynthesis(data) })
	resp := a.generateStructured(ctx, StageAnalysis, text)

	insights, ok := decodeInsights(resp)
	if !ok {
		a.logger.Warn("Synthesis could not be parsed, generating insights from product info",
			zap.String("product", product.Name),
		)
	}

	if len(insights.PainPoints) == 0 {
		insights.PainPoints = generatePainPoints(product)
	}
	if len(insights.Language) == 0 {
		insights.Language = generateLanguage(product)
	}
	if len(insights.Topics) == 0 {
		insights.Topics = generateTopics(product)
	}
	if strings.TrimSpace(string(insights.Summary)) == "" {
		insights.Summary = domain.FlexText(synthesisSummary(product))
	}
	return insights
}

func synthesisSummary(product domain.ProductInfo) string {
	return fmt.Sprintf("Without access to specific user data, we can infer that %s likely experience issues that %s can solve. "+
		"The marketing campaign should focus on highlighting how the product addresses these pain points while using terminology familiar to the audience.",
		product.TargetAudience, product.Name)
}

func generatePainPoints(product domain.ProductInfo) domain.StringList {
	points := make([]string, 0)

	for _, useCase := range util.SplitComma(strings.ToLower(product.UseCases)) {
		switch {
		case strings.Contains(useCase, "pain"):
			points = append(points, "Chronic or recurring "+useCase)
		case strings.Contains(useCase, "quality"):
			points = append(points, "Poor or inconsistent "+useCase)
		case strings.Contains(useCase, "improve"):
			aspect := strings.ReplaceAll(useCase, "improving", "")
			aspect = strings.TrimSpace(strings.ReplaceAll(aspect, "improve", ""))
			points = append(points, fmt.Sprintf("Dissatisfaction with current %s solutions", aspect))
		default:
			points = append(points, fmt.Sprintf("Frustration with inadequate %s options", useCase))
		}
	}

	if len(points) == 0 {
		description := strings.ToLower(product.Description)
		for _, indicator := range problemIndicators {
			idx := strings.Index(description, indicator)
			if idx < 0 {
				continue
			}
			rest := description[idx+len(indicator):]
			if end := strings.Index(rest, indicator); end >= 0 {
				rest = rest[:end]
			}
			if end := strings.Index(rest, "."); end >= 0 {
				rest = rest[:end]
			}
			if rest = strings.TrimSpace(rest); rest != "" {
				points = append(points, "Difficulty with "+rest)
			}
		}
	}

	if len(points) < constants.AnalysisLimits.MinPainPoints {
		points = append(points, fmt.Sprintf("Frustration with current %s alternatives", product.Name))
		points = append(points, genericPainPoints...)
	}

	return capList(points, constants.AnalysisLimits.MaxPainPoints)
}

func generateLanguage(product domain.ProductInfo) domain.StringList {
	terms := make([]string, 0)
	terms = append(terms, util.SplitComma(product.Keywords)...)

	audience := strings.ToLower(product.TargetAudience)
	for _, entry := range audienceLanguage {
		if strings.Contains(audience, entry.keyword) {
			terms = append(terms, entry.terms...)
		}
	}

	terms = append(terms, util.SplitComma(product.Niche)...)
	terms = append(terms, genericLanguage...)

	return capList(terms, constants.AnalysisLimits.MaxLanguage)
}

func generateTopics(product domain.ProductInfo) domain.StringList {
	topics := make([]string, 0)
	for _, niche := range util.SplitComma(product.Niche) {
		topics = append(topics, niche+" innovation")
	}
	for _, keyword := range util.SplitComma(product.Keywords) {
		topics = append(topics, "Advancements in "+keyword)
	}
	topics = append(topics, genericTopics...)

	return capList(topics, constants.AnalysisLimits.MaxTopics)
}

func capList(items []string, limit int) domain.StringList {
	items = util.UniqueStrings(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return domain.StringList(items)
}
