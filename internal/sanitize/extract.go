package sanitize

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Strategy proposes candidate payload substrings from model output. Strategies
// are total: they return an empty slice rather than failing.
type Strategy struct {
	Name       string
	Candidates func(text string) []string
}

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// maxCandidates bounds the balanced-span scan on pathological input.
const maxCandidates = 64

// DefaultStrategies is the extraction order: whole text, fenced blocks,
// longest balanced object, longest balanced array.
var DefaultStrategies = []Strategy{
	{Name: "whole", Candidates: wholeText},
	{Name: "fenced", Candidates: fencedBlocks},
	{Name: "object", Candidates: func(text string) []string { return balancedSpans(text, '{', '}') }},
	{Name: "array", Candidates: func(text string) []string { return balancedSpans(text, '[', ']') }},
}

// Extract decodes the first candidate, in strategy order, that unmarshals into
// T. When none does it returns def. It never panics.
func Extract[T any](raw string, def T) T {
	value, _, ok := ExtractWith[T](raw, DefaultStrategies)
	if !ok {
		return def
	}
	return value
}

// ExtractWith runs the given strategy chain and reports which strategy won.
func ExtractWith[T any](raw string, strategies []Strategy) (T, string, bool) {
	var zero T
	text := strings.TrimSpace(raw)
	if text == "" {
		return zero, "", false
	}
	for _, strategy := range strategies {
		for _, candidate := range strategy.Candidates(text) {
			var value T
			if decode(candidate, &value) {
				return value, strategy.Name, true
			}
		}
	}
	return zero, "", false
}

// ExtractValue returns the first candidate that is valid JSON of any shape.
func ExtractValue(raw string) (json.RawMessage, bool) {
	value, _, ok := ExtractWith[json.RawMessage](raw, DefaultStrategies)
	if !ok || len(value) == 0 {
		return nil, false
	}
	return value, true
}

func decode(candidate string, dest any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	return json.Unmarshal([]byte(candidate), dest) == nil
}

func wholeText(text string) []string {
	return []string{text}
}

func fencedBlocks(text string) []string {
	matches := fencedBlock.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// balancedSpans returns every balanced open..close span, longest first.
// Brackets inside JSON strings are ignored.
func balancedSpans(text string, open, close byte) []string {
	var spans []string
	for start := 0; start < len(text) && len(spans) < maxCandidates; start++ {
		if text[start] != open {
			continue
		}
		if end := matchClose(text, start, open, close); end > start {
			spans = append(spans, text[start:end+1])
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return len(spans[i]) > len(spans[j])
	})
	return spans
}

func matchClose(text string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
