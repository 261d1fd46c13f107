package moderator

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"orquix-backend/pkg/llm"
)

type stubAdapter struct {
	text string
	err  error
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Generate(_ context.Context, _ string, _ llm.Params) (*llm.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{Text: s.text}, nil
}

func (s *stubAdapter) Health(_ context.Context) error { return nil }

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", log.LstdFlags)
}

func TestSynthesizeParsesModelJSON(t *testing.T) {
	adapter := &stubAdapter{text: `Here is the synthesis:
{
  "synthesis_text": "Both providers recommend indexing the embeddings column.",
  "key_themes": ["vector indexing"],
  "consensus_areas": ["use an ANN index"],
  "contradictions": [],
  "source_references": {"openai": ["use an ANN index"], "anthropic": ["use an ANN index"]}
}`}
	m := New(adapter, testLogger())

	resp := m.Synthesize(context.Background(), "how should I index?", []ProviderAnswer{
		{Provider: "openai", Text: "Use an ANN index."},
		{Provider: "anthropic", Text: "An ANN index is best."},
	}, nil, DefaultOptions())

	if resp.FallbackUsed {
		t.Fatal("expected model synthesis, got fallback")
	}
	if resp.Quality != QualityHigh {
		t.Errorf("expected high quality, got %s", resp.Quality)
	}
	if len(resp.SourceReferences) != 2 {
		t.Errorf("expected 2 source references, got %d", len(resp.SourceReferences))
	}
}

func TestSynthesizeContradictionsLowerQuality(t *testing.T) {
	adapter := &stubAdapter{text: `{
  "synthesis_text": "The providers disagree on the retention policy.",
  "key_themes": ["retention"],
  "consensus_areas": ["data must be retained"],
  "contradictions": ["30 days vs 90 days"],
  "source_references": {"openai": ["30 days"], "anthropic": ["90 days"]}
}`}
	m := New(adapter, testLogger())

	resp := m.Synthesize(context.Background(), "retention?", []ProviderAnswer{
		{Provider: "openai", Text: "Keep 30 days."},
		{Provider: "anthropic", Text: "Keep 90 days."},
	}, nil, DefaultOptions())

	if resp.Quality != QualityMedium {
		t.Errorf("expected medium quality with open contradictions, got %s", resp.Quality)
	}
}

func TestSynthesizeSingleAnswerIsLow(t *testing.T) {
	adapter := &stubAdapter{text: `{"synthesis_text": "Only one provider responded.", "key_themes": [], "consensus_areas": [], "contradictions": [], "source_references": {"openai": ["only answer"]}}`}
	m := New(adapter, testLogger())

	resp := m.Synthesize(context.Background(), "q", []ProviderAnswer{
		{Provider: "openai", Text: "The only answer."},
	}, nil, DefaultOptions())

	if resp.Quality != QualityLow {
		t.Errorf("expected low quality for single answer, got %s", resp.Quality)
	}
}

func TestSynthesizeNoAnswersIsFailed(t *testing.T) {
	m := New(&stubAdapter{}, testLogger())

	resp := m.Synthesize(context.Background(), "q", nil, []FailureNote{
		{Provider: "openai", Kind: "timeout"},
		{Provider: "anthropic", Kind: "auth"},
	}, DefaultOptions())

	if resp.Quality != QualityFailed {
		t.Fatalf("expected failed quality, got %s", resp.Quality)
	}
	if !resp.FallbackUsed {
		t.Error("failed response should be marked as fallback")
	}
	if !strings.Contains(resp.SynthesisText, "openai (timeout)") {
		t.Errorf("expected redacted failure mention, got %q", resp.SynthesisText)
	}
}

func TestSynthesizeFallsBackOnAdapterError(t *testing.T) {
	m := New(&stubAdapter{err: errors.New("connection refused")}, testLogger())
	answers := []ProviderAnswer{
		{Provider: "openai", Text: "Answer A."},
		{Provider: "anthropic", Text: "Answer B."},
	}

	resp := m.Synthesize(context.Background(), "q", answers, nil, DefaultOptions())

	if !resp.FallbackUsed {
		t.Fatal("expected fallback on adapter error")
	}
	if !strings.Contains(resp.SynthesisText, "openai") || !strings.Contains(resp.SynthesisText, "Answer B.") {
		t.Errorf("fallback should contain all provider texts, got %q", resp.SynthesisText)
	}
}

func TestSynthesizeFallsBackOnGarbageOutput(t *testing.T) {
	m := New(&stubAdapter{text: "I cannot produce JSON today."}, testLogger())

	resp := m.Synthesize(context.Background(), "q", []ProviderAnswer{
		{Provider: "openai", Text: "Something."},
	}, nil, DefaultOptions())

	if !resp.FallbackUsed {
		t.Fatal("expected fallback on unparseable output")
	}
	if resp.Quality != QualityLow {
		t.Errorf("expected low quality for single-answer fallback, got %s", resp.Quality)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	answers := []ProviderAnswer{
		{Provider: "openai", Text: "First answer."},
		{Provider: "anthropic", Text: "Second answer."},
	}

	a := Fallback(answers, DefaultOptions())
	b := Fallback(answers, DefaultOptions())

	if a.SynthesisText != b.SynthesisText {
		t.Error("fallback synthesis must be deterministic for identical inputs")
	}
	if a.Quality != QualityMedium {
		t.Errorf("expected medium quality for multi-answer fallback, got %s", a.Quality)
	}
}

func TestCapWords(t *testing.T) {
	text := strings.Repeat("word ", 300)
	capped := capWords(text, 250)
	if got := len(strings.Fields(capped)); got != 250 {
		t.Errorf("expected 250 words, got %d", got)
	}
}
