package agent

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/prompt"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

var generalSources = []string{"askreddit", "advice", "tipofmytongue", "buyitforlife", "frugal"}

// audienceSources maps audience keywords to communities, checked in order.
var audienceSources = []struct {
	keywords []string
	source   string
}{
	{[]string{"professionals", "workers"}, "careers"},
	{[]string{"students"}, "college"},
	{[]string{"parents"}, "parenting"},
	{[]string{"health"}, "health"},
}

// ResearchAgent picks discussion sources and search queries for a product.
type ResearchAgent struct {
	*Base
}

func NewResearchAgent(base *Base) *ResearchAgent {
	return &ResearchAgent{Base: base}
}

// FindRelevantSources asks the model for community names and falls back to
// names derived from the product when nothing usable comes back.
func (a *ResearchAgent) FindRelevantSources(ctx context.Context, product domain.ProductInfo) []string {
	data := prompt.ResearchData{Product: productData(product)}
	text := a.render(prompt.TemplateResearchSources, data, func() string { return prompt.FallbackResearchSources(data) })

	var sources []string
	if out, ok := a.generateText(ctx, StageResearch, text); ok {
		sources = parseSources(out)
	}

	if len(sources) == 0 {
		a.logger.Warn("No usable sources in model output, deriving from product info",
			zap.String("product", product.Name),
		)
		sources = fallbackSources(product)
	}

	a.logger.Info("Found relevant sources", zap.Strings("sources", sources))
	return sources
}

// GenerateQueries asks the model for search queries and falls back to
// frequency-derived templates.
func (a *ResearchAgent) GenerateQueries(ctx context.Context, product domain.ProductInfo) []string {
	data := prompt.ResearchData{Product: productData(product)}
	text := a.render(prompt.TemplateResearchQueries, data, func() string { return prompt.FallbackResearchQueries(data) })

	var queries []string
	if out, ok := a.generateText(ctx, StageResearch, text); ok {
		queries = parseQueries(out)
	}

	if len(queries) == 0 {
		a.logger.Warn("No usable queries in model output, deriving from product info",
			zap.String("product", product.Name),
		)
		queries = fallbackQueries(product)
	}

	a.logger.Info("Generated search queries", zap.Strings("queries", queries))
	return queries
}

func parseSources(out string) []string {
	sources := make([]string, 0)
	for _, part := range strings.Split(out, ",") {
		s := strings.ReplaceAll(util.Normalize(part), "r/", "")
		s = strings.TrimSpace(s)
		if len(s) < constants.ResearchLimits.MinSourceLen {
			continue
		}
		if strings.HasPrefix(s, "<") || strings.HasSuffix(s, ">") {
			continue
		}
		sources = append(sources, s)
	}
	sources = util.UniqueStrings(sources)
	if len(sources) > constants.ResearchLimits.MaxSources {
		sources = sources[:constants.ResearchLimits.MaxSources]
	}
	return sources
}

func fallbackSources(product domain.ProductInfo) []string {
	candidates := make([]string, 0)
	candidates = append(candidates, util.SplitComma(strings.ToLower(product.Niche))...)
	candidates = append(candidates, util.SplitComma(strings.ToLower(product.Keywords))...)

	audience := strings.ToLower(product.TargetAudience)
	for _, entry := range audienceSources {
		for _, keyword := range entry.keywords {
			if strings.Contains(audience, keyword) {
				candidates = append(candidates, entry.source)
				break
			}
		}
	}

	sources := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) >= constants.ResearchLimits.MinSourceLen && isSourceWord(c) {
			sources = append(sources, c)
		}
	}

	if len(sources) < constants.ResearchLimits.MinSources {
		sources = append(sources, generalSources...)
	}

	sources = util.UniqueStrings(sources)
	if len(sources) > constants.ResearchLimits.FallbackSources {
		sources = sources[:constants.ResearchLimits.FallbackSources]
	}
	return sources
}

func isSourceWord(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return s != ""
}

func parseQueries(out string) []string {
	queries := make([]string, 0)
	for _, part := range strings.Split(out, ",") {
		q := strings.TrimSpace(part)
		if len(q) < constants.ResearchLimits.MinQueryLen {
			continue
		}
		q = strings.TrimSpace(strings.ReplaceAll(q, `"`, ""))
		if q == "" {
			continue
		}
		queries = append(queries, q)
	}
	if len(queries) > constants.ResearchLimits.MaxQueries {
		queries = queries[:constants.ResearchLimits.MaxQueries]
	}
	return queries
}

func fallbackQueries(product domain.ProductInfo) []string {
	name := strings.ToLower(product.Name)
	terms := frequentTerms(strings.ToLower(strings.Join([]string{
		product.Name, product.Description, product.UseCases, product.Keywords,
	}, " ")))

	if len(terms) >= 2 {
		first, second := terms[0], terms[1]
		return []string{
			fmt.Sprintf("%s %s discussion", first, second),
			fmt.Sprintf("best %s reviews", first),
			fmt.Sprintf("%s recommendations", second),
			fmt.Sprintf("%s problems solutions", first),
			fmt.Sprintf("%s vs competitors", second),
		}
	}

	return []string{
		name + " discussion",
		name + " reviews",
		name + " problems",
		name + " alternatives",
		name + " recommendations",
	}
}

// frequentTerms returns up to TopWords words longer than four characters,
// most frequent first with ties in order of first appearance, keeping only
// words seen more than once.
func frequentTerms(text string) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range strings.Fields(text) {
		if len(word) < constants.ResearchLimits.MinFallbackWord {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	if len(ranked) > constants.ResearchLimits.TopWords {
		ranked = ranked[:constants.ResearchLimits.TopWords]
	}

	terms := make([]string, 0, len(ranked))
	for _, word := range ranked {
		if counts[word] > 1 {
			terms = append(terms, word)
		}
	}
	return terms
}
