package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestModelManagerFallsBackOnce(t *testing.T) {
	primary := &fakeProvider{name: "groq", model: "llama", err: errors.New("503 service unavailable")}
	fallback := &fakeProvider{name: "openai", model: "gpt-4o", text: "Fallback copy"}

	mm, err := NewModelManager(ModelManagerConfig{Primary: primary, Fallback: fallback}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, meta := mm.GenerateText(context.Background(), "Write an ad.", &GenerateOptions{Model: "llama"})
	if text != "Fallback copy" {
		t.Fatalf("expected fallback text, got %q", text)
	}
	if !meta.UsedFallback || meta.Provider != "openai" {
		t.Fatalf("expected fallback metadata, got %+v", meta)
	}
	if len(primary.requests) != 1 || len(fallback.requests) != 1 {
		t.Fatalf("expected exactly one call each, got primary=%d fallback=%d", len(primary.requests), len(fallback.requests))
	}
	if fallback.requests[0].Model != "gpt-4o" {
		t.Fatalf("fallback must use its default model, got %q", fallback.requests[0].Model)
	}
}

func TestModelManagerReturnsInlineErrorWhenAllFail(t *testing.T) {
	primary := &fakeProvider{name: "claude", model: "sonnet", err: errors.New("invalid request")}
	fallback := &fakeProvider{name: "openai", model: "gpt-4o", err: errors.New("also broken")}

	mm, _ := NewModelManager(ModelManagerConfig{Primary: primary, Fallback: fallback}, zap.NewNop())

	text, meta := mm.GenerateText(context.Background(), "Write an ad.", nil)
	if !strings.HasPrefix(text, "Error generating response: ") {
		t.Fatalf("expected inline error string, got %q", text)
	}
	if !strings.Contains(text, "invalid request") {
		t.Fatalf("expected primary error in text, got %q", text)
	}
	if !meta.Failed {
		t.Fatalf("expected failed metadata")
	}
	if len(fallback.requests) != 1 {
		t.Fatalf("expected a single fallback attempt, got %d", len(fallback.requests))
	}
}

func TestModelManagerStructuredAbsorbsFailures(t *testing.T) {
	primary := &fakeProvider{name: "claude", model: "sonnet", err: errors.New("invalid request")}
	fallback := &fakeProvider{name: "openai", model: "gpt-4o", text: "{}"}

	mm, _ := NewModelManager(ModelManagerConfig{Primary: primary, Fallback: fallback}, zap.NewNop())

	resp, meta := mm.GenerateStructured(context.Background(), "Provide a JSON response with: score", nil)
	if resp == nil || !resp.Defaulted || !meta.Defaulted {
		t.Fatalf("expected safe default, got %+v", resp)
	}
	if len(fallback.requests) != 0 {
		t.Fatalf("structured calls must not use the fallback backend")
	}
}

func TestModelManagerOpensCircuitAfterServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "openai", model: "gpt-4o", err: errors.New("500 internal server error")}
	fallback := &fakeProvider{name: "openai", model: "gpt-4o", text: "Fallback copy"}

	mm, _ := NewModelManager(ModelManagerConfig{Primary: primary, Fallback: fallback}, zap.NewNop())

	for i := 0; i < 5; i++ {
		mm.GenerateText(context.Background(), "Write an ad.", nil)
	}

	if mm.CircuitStatus().State != "OPEN" {
		t.Fatalf("expected circuit to open, got %s", mm.CircuitStatus().State)
	}
	if len(primary.requests) != 3 {
		t.Fatalf("expected primary to be skipped once open, got %d calls", len(primary.requests))
	}
	if len(fallback.requests) != 5 {
		t.Fatalf("expected every call to reach the fallback, got %d", len(fallback.requests))
	}
}

func TestIsServiceFailure(t *testing.T) {
	cases := map[string]bool{
		"POST https://api: 503 Service Unavailable": true,
		"429 Too Many Requests":                     true,
		"context deadline exceeded":                 true,
		`{"error":{"code":500}}`:                    true,
		"invalid api key":                           false,
	}
	for msg, want := range cases {
		if got := isServiceFailure(errors.New(msg)); got != want {
			t.Fatalf("isServiceFailure(%q) = %v, want %v", msg, got, want)
		}
	}
}
