package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/domain"
	"github.com/dsaidinesh/adsynth-backedn/internal/sanitize"
	"github.com/dsaidinesh/adsynth-backedn/internal/service/ai"
)

// fakeInvoker answers text calls with text and structured calls with
// structured. An empty structured answer simulates the safe default.
type fakeInvoker struct {
	mu         sync.Mutex
	text       func(prompt string) (string, bool)
	structured func(prompt string) string
	prompts    []string
}

func (f *fakeInvoker) GenerateText(_ context.Context, prompt string, _ *ai.GenerateOptions) (string, *ai.GenerateMetadata) {
	f.record(prompt)
	if f.text == nil {
		return "Error generating response: no backend", &ai.GenerateMetadata{Failed: true}
	}
	out, failed := f.text(prompt)
	return out, &ai.GenerateMetadata{Provider: "fake", Failed: failed}
}

func (f *fakeInvoker) GenerateStructured(_ context.Context, prompt string, _ *ai.GenerateOptions) (*ai.Response, *ai.GenerateMetadata) {
	f.record(prompt)
	raw := ""
	if f.structured != nil {
		raw = f.structured(prompt)
	}
	if raw == "" {
		err := errors.New("backend down")
		payload, _ := json.Marshal(ai.SafeDefaultPayload(err))
		return &ai.Response{Payload: payload, Structured: true, Defaulted: true, Err: err},
			&ai.GenerateMetadata{Provider: "fake", Defaulted: true, Err: err}
	}
	payload, _ := sanitize.ExtractValue(raw)
	return &ai.Response{Text: raw, Payload: payload, Structured: true}, &ai.GenerateMetadata{Provider: "fake"}
}

func (f *fakeInvoker) record(prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeInvoker) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func textReply(out string) func(string) (string, bool) {
	return func(string) (string, bool) { return out, false }
}

func failedText(string) (string, bool) {
	return "Error generating response: boom", true
}

func structuredReply(out string) func(string) string {
	return func(string) string { return out }
}

func newBase(inv ai.ModelInvoker) *Base {
	return NewBase(inv, nil, Options{}, zap.NewNop())
}

func minimalProduct() domain.ProductInfo {
	return domain.ProductInfo{
		Name:           "FocusFlow",
		Description:    "A focus app",
		TargetAudience: "remote workers",
		CampaignGoal:   "downloads",
	}
}

func TestFindRelevantSourcesParsesModelOutput(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{
		text: textReply("r/Productivity, GetDisciplined, <subreddit>, ab, productivity, remotework"),
	}))

	got := agent.FindRelevantSources(context.Background(), minimalProduct())
	want := []string{"productivity", "getdisciplined", "remotework"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestFindRelevantSourcesCapsAtSeven(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{
		text: textReply("aaa, bbb, ccc, ddd, eee, fff, ggg, hhh, iii"),
	}))

	got := agent.FindRelevantSources(context.Background(), minimalProduct())
	if len(got) != 7 || got[6] != "ggg" {
		t.Fatalf("expected the first seven sources, got %v", got)
	}
}

func TestFindRelevantSourcesFallsBackToProductInfo(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{text: failedText}))

	got := agent.FindRelevantSources(context.Background(), domain.DefaultProduct())
	want := []string{"productivity", "careers", "college"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback sources mismatch (-want +got):\n%s", diff)
	}
}

func TestFindRelevantSourcesPadsWithGeneralCommunities(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{text: textReply("<none>")}))

	product := minimalProduct()
	product.TargetAudience = "gamers"
	product.Niche = "home office, ux"

	got := agent.FindRelevantSources(context.Background(), product)
	want := []string{"askreddit", "advice", "tipofmytongue", "buyitforlife", "frugal"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("padded sources mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateQueriesParsesModelOutput(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{
		text: textReply(`"best focus apps", short, "deep work tips"`),
	}))

	got := agent.GenerateQueries(context.Background(), minimalProduct())
	want := []string{"best focus apps", "deep work tips"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateQueriesFallsBackToFrequentTerms(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{text: failedText}))

	product := minimalProduct()
	product.Name = "Hush"
	product.Description = "noise cancelling headphones for noise sensitive people who want headphones"

	got := agent.GenerateQueries(context.Background(), product)
	want := []string{
		"noise headphones discussion",
		"best noise reviews",
		"headphones recommendations",
		"noise problems solutions",
		"headphones vs competitors",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback queries mismatch (-want +got):\n%s", diff)
	}
}

func TestFrequentTermsOrdersByCountThenFirstAppearance(t *testing.T) {
	text := "timer focus timer habit focus habit timer quiet"

	got := frequentTerms(text)
	want := []string{"timer", "focus", "habit"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("terms mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateQueriesFallsBackToProductName(t *testing.T) {
	agent := NewResearchAgent(newBase(&fakeInvoker{text: textReply("")}))

	got := agent.GenerateQueries(context.Background(), minimalProduct())
	want := []string{
		"focusflow discussion",
		"focusflow reviews",
		"focusflow problems",
		"focusflow alternatives",
		"focusflow recommendations",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("name queries mismatch (-want +got):\n%s", diff)
	}
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.DiscussionPost
	errs    map[string]error
	calls   []string
}

func (s *fakeSearcher) Search(_ context.Context, source, query string, limit int) ([]domain.DiscussionPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := source + "|" + query
	s.calls = append(s.calls, key)
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if err, ok := s.errs[source]; ok {
		return nil, err
	}
	return s.results[key], nil
}

func postsNamed(titles ...string) []domain.DiscussionPost {
	posts := make([]domain.DiscussionPost, 0, len(titles))
	for _, title := range titles {
		posts = append(posts, domain.DiscussionPost{Title: title, Permalink: "/r/x/comments/" + title})
	}
	return posts
}

func TestCollectSkipsInvalidSources(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.DiscussionPost{
		"productivity|focus tips": postsNamed("p1"),
	}}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	posts := agent.Collect(context.Background(), []string{"a", "r/x", "<sub>", "two words", "Productivity"}, []string{"focus tips"}, 2)

	if diff := cmp.Diff([]string{"productivity|focus tips"}, searcher.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(posts) != 1 || posts[0].Title != "p1" {
		t.Fatalf("unexpected posts %+v", posts)
	}
}

func TestCollectIsolatesFailingPairs(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]domain.DiscussionPost{
			"productivity|focus tips": postsNamed("p1", "p2"),
		},
		errs: map[string]error{"broken": errors.New("403 forbidden")},
	}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	posts := agent.Collect(context.Background(), []string{"broken", "productivity"}, []string{"focus tips"}, 2)

	if len(posts) != 2 {
		t.Fatalf("expected posts from the healthy source, got %d", len(posts))
	}
	if len(searcher.calls) != 2 {
		t.Fatalf("expected both pairs to be attempted, got %v", searcher.calls)
	}
}

func TestCollectRetriesWithGenericQueries(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]domain.DiscussionPost{
		"bbb|review": postsNamed("found"),
	}}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	posts := agent.Collect(context.Background(), []string{"aaa", "bbb", "ccc", "ddd"}, []string{"nothing here"}, 2)

	if len(posts) != 1 || posts[0].Title != "found" {
		t.Fatalf("expected the retry hit, got %+v", posts)
	}
	// 4 primary calls, then 3 sources x 3 generic queries.
	if len(searcher.calls) != 4+9 {
		t.Fatalf("unexpected call count %d: %v", len(searcher.calls), searcher.calls)
	}
	for _, call := range searcher.calls[4:] {
		if strings.HasPrefix(call, "ddd|") {
			t.Fatalf("retry must only use the first three sources, got %s", call)
		}
	}
}

func TestCollectDoesNotRetryWhenEverySearchFailed(t *testing.T) {
	searcher := &fakeSearcher{errs: map[string]error{
		"aaa": errors.New("down"),
		"bbb": errors.New("down"),
	}}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	posts := agent.Collect(context.Background(), []string{"aaa", "bbb"}, []string{"focus tips"}, 2)

	if len(posts) != 0 {
		t.Fatalf("expected no posts, got %d", len(posts))
	}
	if len(searcher.calls) != 2 {
		t.Fatalf("expected no retry calls, got %v", searcher.calls)
	}
}

func TestCollectUsesDefaultsWhenInputsInvalid(t *testing.T) {
	searcher := &fakeSearcher{}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	agent.Collect(context.Background(), []string{"x", ""}, []string{`""`, "ab"}, 1)

	if len(searcher.calls) == 0 || searcher.calls[0] != "askreddit|review" {
		t.Fatalf("expected default source and query first, got %v", searcher.calls)
	}
}

func TestCollectFiltersCommentsAndCapsPerPair(t *testing.T) {
	long := strings.Repeat("useful comment ", 2)
	post := domain.DiscussionPost{
		Title: "p1",
		Comments: []domain.Comment{
			{Body: "too short"},
			{Body: long + "1"},
			{Body: long + "2"},
			{Body: long + "3"},
			{Body: long + "4"},
		},
	}
	searcher := &fakeSearcher{results: map[string][]domain.DiscussionPost{
		"productivity|focus tips": {post, post, post},
	}}
	agent := NewDataCollectionAgent(searcher, zap.NewNop())

	posts := agent.Collect(context.Background(), []string{"productivity"}, []string{"focus tips"}, 2)

	if len(posts) != 2 {
		t.Fatalf("expected per-pair cap of 2, got %d", len(posts))
	}
	want := []domain.Comment{{Body: long + "1"}, {Body: long + "2"}, {Body: long + "3"}}
	if diff := cmp.Diff(want, posts[0].Comments); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
}

func manyPosts(n int) []domain.DiscussionPost {
	titles := make([]string, n)
	for i := range titles {
		titles[i] = fmt.Sprintf("post-%d", i)
	}
	return postsNamed(titles...)
}

func titles(posts []domain.DiscussionPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestFilterByRelevanceFailsOpen(t *testing.T) {
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply("I cannot rate these posts.")}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(12), minimalProduct())
	if len(got) != 10 {
		t.Fatalf("expected the 10-post batch, got %d", len(got))
	}
}

func TestFilterByRelevanceFailsOpenOnSafeDefault(t *testing.T) {
	agent := NewAnalysisAgent(newBase(&fakeInvoker{}), AnalysisConfig{RelevanceBatchSize: 4})

	got := agent.FilterByRelevance(context.Background(), manyPosts(6), minimalProduct())
	if len(got) != 4 {
		t.Fatalf("expected the configured batch, got %d", len(got))
	}
}

func TestFilterByRelevanceKeepsInputOrder(t *testing.T) {
	reply := `Here you go:
[{"post_index": 2, "relevance_score": 8, "reason": "on topic"},
 {"post_index": 0, "relevance_score": 9, "reason": "on topic"},
 {"post_index": 1, "relevance_score": 3, "reason": "off topic"},
 {"post_index": 2, "relevance_score": 9, "reason": "dup"},
 {"post_index": 7, "relevance_score": 10, "reason": "out of range"}]`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(3), minimalProduct())
	if diff := cmp.Diff([]string{"post-0", "post-2"}, titles(got)); diff != "" {
		t.Fatalf("relevant posts mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByRelevanceAcceptsSingleObject(t *testing.T) {
	reply := `{"post_index": 1, "relevance_score": "7/10", "reason": "close enough"}`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(3), minimalProduct())
	if diff := cmp.Diff([]string{"post-1"}, titles(got)); diff != "" {
		t.Fatalf("relevant posts mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByRelevanceReturnsBatchWhenNoneQualify(t *testing.T) {
	reply := `[{"post_index": 0, "relevance_score": 2}, {"post_index": 1, "relevance_score": 1}]`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{RelevanceThreshold: 6})

	got := agent.FilterByRelevance(context.Background(), manyPosts(2), minimalProduct())
	if len(got) != 2 {
		t.Fatalf("expected the full batch, got %d", len(got))
	}
}

func TestFilterByRelevanceAcceptsStringIndexes(t *testing.T) {
	reply := `[{"post_index": "1", "relevance_score": 9}, {"post_index": 2, "relevance_score": 8}]`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(4), minimalProduct())
	if diff := cmp.Diff([]string{"post-1", "post-2"}, titles(got)); diff != "" {
		t.Fatalf("relevant posts mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByRelevanceSkipsMalformedEntries(t *testing.T) {
	reply := `Scores:
[{"post_index": "1", "relevance_score": 9, "reason": "on topic"},
 "not an evaluation",
 {"post_index": "first", "relevance_score": 10},
 {"relevance_score": 10},
 {"post_index": 3, "relevance_score": "N/A"},
 {"post_index": 2, "relevance_score": "8/10"}]`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(4), minimalProduct())
	if diff := cmp.Diff([]string{"post-1", "post-2"}, titles(got)); diff != "" {
		t.Fatalf("relevant posts mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByRelevanceReturnsBatchWhenArrayUnusable(t *testing.T) {
	reply := `[{"post_index": "first", "relevance_score": 9}, {"post_index": null, "relevance_score": 8}]`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.FilterByRelevance(context.Background(), manyPosts(4), minimalProduct())
	if len(got) != 4 {
		t.Fatalf("expected the full batch, got %v", titles(got))
	}
}

func TestParseEvaluationsIgnoresBracketedProse(t *testing.T) {
	raw := `See note [1]. {"post_index": 0, "relevance_score": 7, "reason": "matches [the product]"}`

	got := parseEvaluations(raw)
	if len(got) != 1 {
		t.Fatalf("expected one evaluation, got %d", len(got))
	}
	if idx, ok := got[0].index(); !ok || idx != 0 {
		t.Fatalf("unexpected index %d (ok=%v)", idx, ok)
	}
}

func TestExtractInsightsWithoutPosts(t *testing.T) {
	agent := NewAnalysisAgent(newBase(&fakeInvoker{}), AnalysisConfig{})

	got := agent.ExtractInsights(context.Background(), nil, minimalProduct())
	if diff := cmp.Diff(noDataInsights, got); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractInsightsUnparseable(t *testing.T) {
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply("no json at all")}), AnalysisConfig{})

	got := agent.ExtractInsights(context.Background(), manyPosts(2), minimalProduct())
	if diff := cmp.Diff(unparsedInsights, got); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractInsightsFillsMissingFields(t *testing.T) {
	reply := "```json\n{\"pain_points\": [\"losing focus\"], \"insights\": \"People are distracted.\"}\n```"
	inv := &fakeInvoker{structured: structuredReply(reply)}
	agent := NewAnalysisAgent(newBase(inv), AnalysisConfig{})

	got := agent.ExtractInsights(context.Background(), manyPosts(8), minimalProduct())
	want := domain.Insights{
		PainPoints: domain.StringList{"losing focus"},
		Language:   domain.StringList{"General terms only"},
		Topics:     domain.StringList{"Insufficient data"},
		Summary:    "People are distracted.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(inv.lastPrompt(), "post-5") {
		t.Fatalf("insight prompt must include at most five posts")
	}
}

func TestSynthesizeWithoutDataIsCompleteForMinimalProduct(t *testing.T) {
	agent := NewAnalysisAgent(newBase(&fakeInvoker{}), AnalysisConfig{})

	got := agent.SynthesizeWithoutData(context.Background(), minimalProduct())
	if !got.Complete() {
		t.Fatalf("expected every field populated, got %+v", got)
	}
	if len(got.PainPoints) != 5 || got.PainPoints[0] != "Frustration with current FocusFlow alternatives" {
		t.Fatalf("unexpected pain points %v", got.PainPoints)
	}
	if len(got.Language) != 7 || len(got.Topics) != 5 {
		t.Fatalf("expected capped language and topics, got %d and %d", len(got.Language), len(got.Topics))
	}
	if !strings.Contains(string(got.Summary), "remote workers likely experience issues that FocusFlow can solve") {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
}

func TestSynthesizeWithoutDataKeepsModelFields(t *testing.T) {
	reply := `{"pain_points": ["a"], "language": ["b"], "topics": ["c"], "insights": "d"}`
	agent := NewAnalysisAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}), AnalysisConfig{})

	got := agent.SynthesizeWithoutData(context.Background(), minimalProduct())
	want := domain.Insights{
		PainPoints: domain.StringList{"a"},
		Language:   domain.StringList{"b"},
		Topics:     domain.StringList{"c"},
		Summary:    "d",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("insights mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratePainPointsFromUseCases(t *testing.T) {
	product := minimalProduct()
	product.UseCases = "Back pain relief, sleep quality, improving posture, meal prep"

	got := generatePainPoints(product)
	want := domain.StringList{
		"Chronic or recurring back pain relief",
		"Poor or inconsistent sleep quality",
		"Dissatisfaction with current posture solutions",
		"Frustration with inadequate meal prep options",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pain points mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratePainPointsFromDescription(t *testing.T) {
	product := minimalProduct()
	product.Description = "An app to reduce screen time. Fun for everyone."

	got := generatePainPoints(product)
	if len(got) != 5 || got[0] != "Difficulty with screen time" {
		t.Fatalf("unexpected pain points %v", got)
	}
}

func TestGeneratePainPointsStopsAtRepeatedIndicator(t *testing.T) {
	product := minimalProduct()
	product.Description = "We solve boredom and solve fatigue."

	got := generatePainPoints(product)
	if len(got) == 0 || got[0] != "Difficulty with boredom and" {
		t.Fatalf("unexpected pain points %v", got)
	}
}

func TestGenerateLanguageUsesAudienceTerms(t *testing.T) {
	product := minimalProduct()
	product.Keywords = "focus"
	product.TargetAudience = "Busy parents"

	got := generateLanguage(product)
	want := domain.StringList{"focus", "family-friendly", "time-saving", "child-safe", "peace of mind", "game-changer", "life-changing"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("language mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTopics(t *testing.T) {
	product := minimalProduct()
	product.Niche = "productivity"
	product.Keywords = "deep work"

	got := generateTopics(product)
	want := domain.StringList{
		"productivity innovation",
		"Advancements in deep work",
		"Sustainable and eco-friendly alternatives",
		"Digital transformation in daily life",
		"Health and wellness optimization",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func sampleInsights() domain.Insights {
	return domain.Insights{
		PainPoints: domain.StringList{"distractions"},
		Language:   domain.StringList{"deep work"},
		Topics:     domain.StringList{"remote work"},
		Summary:    "Users want focus.",
	}
}

func TestWriteUsesGeneralInstructionsForUnknownPlatform(t *testing.T) {
	inv := &fakeInvoker{text: textReply("  Stay focused with FocusFlow.  ")}
	agent := NewCopywritingAgent(newBase(inv))

	script := agent.Write(context.Background(), sampleInsights(), minimalProduct(), domain.Platform("myspace"))
	if script != "Stay focused with FocusFlow." {
		t.Fatalf("unexpected script %q", script)
	}
	prompt := inv.lastPrompt()
	if !strings.Contains(prompt, "Create a compelling ad script that") {
		t.Fatalf("expected general instructions in prompt:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "AD SCRIPT:") {
		t.Fatalf("prompt must end with the script marker:\n%s", prompt)
	}
}

func TestWriteKeepsInlineErrorOnFailure(t *testing.T) {
	agent := NewCopywritingAgent(newBase(&fakeInvoker{text: failedText}))

	script := agent.Write(context.Background(), sampleInsights(), minimalProduct(), domain.PlatformTikTok)
	if script != "Error generating response: boom" {
		t.Fatalf("expected inline error as script, got %q", script)
	}
}

func TestReviewDefaultsWhenUnparseable(t *testing.T) {
	agent := NewReviewAgent(newBase(&fakeInvoker{structured: structuredReply("Great script, 8/10!")}))

	got := agent.Review(context.Background(), "the script", minimalProduct(), sampleInsights(), domain.PlatformInstagram)
	if diff := cmp.Diff(defaultReview("the script", domain.PlatformInstagram), got); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewFallsBackToInputScript(t *testing.T) {
	reply := `{"score": 0, "strengths": ["hook"], "weaknesses": [], "suggestions": "shorter", "platform_specific_feedback": "ok", "improved_script": "  "}`
	agent := NewReviewAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}))

	got := agent.Review(context.Background(), "the script", minimalProduct(), sampleInsights(), "")
	if got.ImprovedScript != "the script" {
		t.Fatalf("expected input script, got %q", got.ImprovedScript)
	}
	if got.Score.Int() != 7 {
		t.Fatalf("expected missing score to default to 7, got %v", got.Score)
	}
	if got.Platform != domain.PlatformGeneral {
		t.Fatalf("expected general platform, got %q", got.Platform)
	}
	if diff := cmp.Diff(domain.StringList{"shorter"}, got.Suggestions); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewEmptyScriptStillYieldsScript(t *testing.T) {
	agent := NewReviewAgent(newBase(&fakeInvoker{}))

	got := agent.Review(context.Background(), "", minimalProduct(), sampleInsights(), domain.PlatformTikTok)
	if got.Score.Int() != 5 {
		t.Fatalf("expected safe default score, got %v", got.Score)
	}
	if got.ImprovedScript != "" {
		t.Fatalf("expected empty input script to pass through, got %q", got.ImprovedScript)
	}
}

func TestReviewKeepsModelFieldsWithUnreadableScore(t *testing.T) {
	reply := `{"score": "N/A", "strengths": ["a", "b"], "suggestions": ["c"], "improved_script": "model improved version"}`
	agent := NewReviewAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}))

	got := agent.Review(context.Background(), "orig", minimalProduct(), sampleInsights(), domain.PlatformFacebook)
	if got.ImprovedScript != "model improved version" {
		t.Fatalf("expected the model's script, got %q", got.ImprovedScript)
	}
	if got.Score.Int() != 7 {
		t.Fatalf("expected unreadable score to default to 7, got %v", got.Score)
	}
	if diff := cmp.Diff(domain.StringList{"a", "b"}, got.Strengths); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewClampsScore(t *testing.T) {
	reply := `{"score": "15", "improved_script": "better"}`
	agent := NewReviewAgent(newBase(&fakeInvoker{structured: structuredReply(reply)}))

	got := agent.Review(context.Background(), "the script", minimalProduct(), sampleInsights(), domain.PlatformYouTube)
	if got.Score.Int() != 10 || got.ImprovedScript != "better" {
		t.Fatalf("unexpected review %+v", got)
	}
}
