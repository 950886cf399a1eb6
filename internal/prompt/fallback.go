package prompt

import (
	"fmt"
	"strings"
)

// Fallback prompts are used when an embedded template fails to render. They
// keep the trigger phrases and output contracts of the templates.

func FallbackResearchSources(data ResearchData) string {
	return fmt.Sprintf(`Product: %s - %s
Target Audience: %s

Provide a list of 5-7 most relevant subreddits for this product.
Return ONLY a comma-separated list of subreddit names without the 'r/' prefix.`,
		data.Product.Name, data.Product.Description, data.Product.TargetAudience)
}

func FallbackResearchQueries(data ResearchData) string {
	return fmt.Sprintf(`Product: %s - %s
Target Audience: %s
Keywords: %s

Generate 5 specific search queries to find discussions about problems this product solves.
Return ONLY a comma-separated list of search queries without quotes.`,
		data.Product.Name, data.Product.Description, data.Product.TargetAudience, data.Product.Keywords)
}

func FallbackRelevanceFilter(data RelevanceData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rate each post's relevance to %s (%s) on a scale of 0-10.\n", data.Product.Name, data.Product.Description)
	b.WriteString("Respond with a JSON array of {\"post_index\": <index>, \"relevance_score\": <0-10>, \"reason\": <text>}.\n")
	for _, post := range data.Posts {
		fmt.Fprintf(&b, "\nPost %d:\nTitle: %s\nContent: %s\n", post.Index, post.Title, post.Content)
	}
	return b.String()
}

func FallbackInsightsExtract(data InsightsData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these Reddit posts related to %s (%s).\n", data.Product.Name, data.Product.Description)
	b.WriteString("Respond with a JSON object with keys pain_points, language, topics (lists) and insights (paragraph).\n")
	for _, post := range data.Posts {
		fmt.Fprintf(&b, "\nPost %d:\nTitle: %s\nContent: %s\n", post.Index+1, post.Title, post.Content)
	}
	return b.String()
}

func FallbackInsightsSynthesis(data ResearchData) string {
	return fmt.Sprintf(`Create ad campaign insights for %s (%s) aimed at %s.
Format your response as a JSON object with keys pain_points, language, topics (lists) and insights (paragraph).`,
		data.Product.Name, data.Product.Description, data.Product.TargetAudience)
}

func FallbackCopywriting(data CopywritingData) string {
	return fmt.Sprintf(`You are an expert copywriter creating a viral ad script for %s (%s).
Target Audience: %s
Pain Points: %s

%s

AD SCRIPT:`,
		data.Product.Name, data.Product.Description, data.Product.TargetAudience,
		strings.Join(data.PainPoints, ", "), data.Instructions)
}

func FallbackReview(data ReviewData) string {
	return fmt.Sprintf(`Review this %s ad script for %s.

%s

AD SCRIPT:
%s

Provide a JSON response with: score (1-10), strengths, weaknesses, suggestions, platform_specific_feedback, improved_script.`,
		data.Platform, data.Product.Name, data.Criteria, data.Script)
}
