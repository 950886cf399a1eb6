package sanitize

import (
	"strings"
	"testing"
)

func TestCleanRemovesReasoningAndMarkup(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want string
	}{
		"think block":    {raw: "<think>step one\nstep two</think>Final answer", want: "Final answer"},
		"stray think":    {raw: "<think>unterminated reasoning\nAnswer", want: "unterminated reasoning\nAnswer"},
		"html tags":      {raw: "<b>Bold</b> claim", want: "Bold claim"},
		"json fence":     {raw: "```json\n{\"a\": 1}\n```", want: "{\"a\": 1}"},
		"plain fence":    {raw: "```\nplain\n```", want: "plain"},
		"json label":     {raw: "JSON response: {\"a\": 1}", want: "{\"a\": 1}"},
		"short label":    {raw: "JSON: [1, 2]", want: "[1, 2]"},
		"surrounding ws": {raw: "   hello world \n", want: "hello world"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Clean(tc.raw); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"<think>hidden</think>```json\n{\"x\": \"<y>\"}\n```",
		"<<a>b> text",
		"JSON: JSON response: ```inner```",
		"<think><think>nested</think></think> tail",
		"no markup at all",
		"",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

type scored struct {
	Score int `json:"score"`
}

type evaluation struct {
	PostIndex      int `json:"post_index"`
	RelevanceScore int `json:"relevance_score"`
}

func TestExtractStrategyOrder(t *testing.T) {
	cases := map[string]struct {
		raw      string
		strategy string
		score    int
	}{
		"whole":  {raw: `{"score": 8}`, strategy: "whole", score: 8},
		"fenced": {raw: "Here you go:\n```json\n{\"score\": 6}\n```\nThanks", strategy: "fenced", score: 6},
		"object": {raw: `The review is {"score": 9} as requested`, strategy: "object", score: 9},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, strategy, ok := ExtractWith[scored](tc.raw, DefaultStrategies)
			if !ok {
				t.Fatalf("expected extraction to succeed for %q", tc.raw)
			}
			if strategy != tc.strategy {
				t.Fatalf("expected strategy %s, got %s", tc.strategy, strategy)
			}
			if got.Score != tc.score {
				t.Fatalf("expected score %d, got %d", tc.score, got.Score)
			}
		})
	}
}

func TestExtractPrefersLongestBalancedObject(t *testing.T) {
	raw := `noise {"outer": {"inner": 2}, "text": "a } b"} trailing`
	got := Extract[map[string]any](raw, nil)
	if got == nil {
		t.Fatalf("expected object to be extracted")
	}
	if _, ok := got["outer"]; !ok {
		t.Fatalf("expected outer object, got %v", got)
	}
	if got["text"] != "a } b" {
		t.Fatalf("expected brace inside string to be preserved, got %v", got["text"])
	}
}

func TestExtractFallsThroughToArray(t *testing.T) {
	raw := `Evaluation follows: [{"post_index": 0, "relevance_score": 8}, {"post_index": 1, "relevance_score": 3}] end`
	got := Extract[[]evaluation](raw, nil)
	if len(got) != 2 {
		t.Fatalf("expected two evaluations, got %v", got)
	}
	if got[0].RelevanceScore != 8 || got[1].PostIndex != 1 {
		t.Fatalf("unexpected evaluations: %+v", got)
	}
}

func TestExtractReturnsDefaultOnMalformedInput(t *testing.T) {
	def := scored{Score: 7}
	inputs := []string{
		"",
		"plain prose without structure",
		`{"score": `,
		"[[[[",
		strings.Repeat("{", 500),
	}

	for _, in := range inputs {
		if got := Extract(in, def); got != def {
			t.Fatalf("expected default for %q, got %+v", in, got)
		}
	}
}

func TestExtractValueReturnsRawPayload(t *testing.T) {
	payload, ok := ExtractValue("```json\n[1, 2, 3]\n```")
	if !ok {
		t.Fatalf("expected payload")
	}
	if string(payload) != "[1, 2, 3]" {
		t.Fatalf("unexpected payload %s", payload)
	}

	if _, ok := ExtractValue("nothing here"); ok {
		t.Fatalf("expected no payload for prose")
	}
}
