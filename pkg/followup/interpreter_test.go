package followup

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
)

// stubEmbedder returns fixed vectors so similarity is controllable: the
// first text maps to vecA, the second to vecB.
type stubEmbedder struct {
	vecA []float32
	vecB []float32
	err  error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vecA, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return [][]float32{s.vecA, s.vecB}, nil
}

func (s *stubEmbedder) Dimension() int    { return len(s.vecA) }
func (s *stubEmbedder) ModelName() string { return "stub" }

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", log.LstdFlags)
}

func prior() *PriorInteraction {
	return &PriorInteraction{
		ID:            "prev-1",
		Prompt:        "Diseña un plan de marketing para mi panadería",
		SynthesisText: "El plan de marketing debería enfocarse en redes sociales locales.",
	}
}

func TestNilPriorIsAlwaysNewTopic(t *testing.T) {
	i := New(&stubEmbedder{}, 0.6, testLogger())

	d := i.Interpret(context.Background(), "¿y si lo mejoramos?", ModeAuto, nil)

	if d.Type != QueryTypeNewTopic {
		t.Errorf("no prior interaction must yield new_topic, got %s", d.Type)
	}
}

func TestExplicitModesOverrideHeuristics(t *testing.T) {
	i := New(&stubEmbedder{err: errors.New("down")}, 0.6, testLogger())

	if d := i.Interpret(context.Background(), "anything", ModeNew, prior()); d.Type != QueryTypeNewTopic {
		t.Errorf("mode new must force new_topic, got %s", d.Type)
	}
	d := i.Interpret(context.Background(), "sigue con el plan de marketing", ModeContinue, prior())
	if d.Type != QueryTypeContinuation {
		t.Errorf("mode continue must force continuation, got %s", d.Type)
	}
	if d.PriorID != "prev-1" {
		t.Error("continuation must reference the prior interaction")
	}
}

func TestReferenceCueDetected(t *testing.T) {
	i := New(&stubEmbedder{}, 0.6, testLogger())

	for _, prompt := range []string{
		"¿y si usamos TikTok en vez de Instagram?",
		"mejora la tercera sección",
		"dame otra opción más barata",
	} {
		d := i.Interpret(context.Background(), prompt, ModeAuto, prior())
		if d.Type != QueryTypeReferenceToPrevious {
			t.Errorf("prompt %q: expected reference_to_previous, got %s", prompt, d.Type)
		}
	}
}

func TestShortQuestionIsReference(t *testing.T) {
	i := New(&stubEmbedder{}, 0.6, testLogger())

	d := i.Interpret(context.Background(), "¿por qué?", ModeAuto, prior())

	if d.Type != QueryTypeReferenceToPrevious {
		t.Errorf("short anaphoric question should reference the prior, got %s", d.Type)
	}
}

func TestHighSimilarityIsContinuation(t *testing.T) {
	i := New(&stubEmbedder{
		vecA: []float32{1, 0, 0},
		vecB: []float32{0.9, 0.1, 0},
	}, 0.6, testLogger())

	d := i.Interpret(context.Background(), "detalla el presupuesto del plan de marketing", ModeAuto, prior())

	if d.Type != QueryTypeContinuation {
		t.Fatalf("similar prompt should be continuation, got %s", d.Type)
	}
	if d.Similarity < 0.6 {
		t.Errorf("expected similarity above threshold, got %f", d.Similarity)
	}
	if len(d.ContextualKeywords) == 0 {
		t.Error("continuation should carry shared keywords")
	}
}

func TestLowSimilarityIsNewTopic(t *testing.T) {
	i := New(&stubEmbedder{
		vecA: []float32{1, 0, 0},
		vecB: []float32{0, 1, 0},
	}, 0.6, testLogger())

	d := i.Interpret(context.Background(), "explícame la fotosíntesis de las plantas tropicales", ModeAuto, prior())

	if d.Type != QueryTypeNewTopic {
		t.Errorf("orthogonal prompt should be new_topic, got %s", d.Type)
	}
}

func TestEmbedderFailureDegradesToCues(t *testing.T) {
	i := New(&stubEmbedder{err: errors.New("embedding service down")}, 0.6, testLogger())

	d := i.Interpret(context.Background(), "además quiero un calendario de publicaciones del plan", ModeAuto, prior())

	if d.Type != QueryTypeContinuation {
		t.Errorf("cue-prefixed prompt should continue even without embeddings, got %s", d.Type)
	}
	if !d.Degraded {
		t.Error("decision should be flagged as degraded")
	}

	d = i.Interpret(context.Background(), "un tema completamente distinto sobre astronomía", ModeAuto, prior())
	if d.Type != QueryTypeNewTopic || !d.Degraded {
		t.Errorf("cueless prompt without embeddings should degrade to new_topic, got %s degraded=%v", d.Type, d.Degraded)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 2}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
		})
	}
}
