package followup

import (
	"context"
	"log"
	"math"
	"strings"

	"orquix-backend/pkg/embedding"
)

type QueryType string

const (
	QueryTypeNewTopic            QueryType = "new_topic"
	QueryTypeContinuation        QueryType = "continuation"
	QueryTypeReferenceToPrevious QueryType = "reference_to_previous"
)

type ConversationMode string

const (
	ModeNew      ConversationMode = "new"
	ModeContinue ConversationMode = "continue"
	ModeAuto     ConversationMode = "auto"
)

const DefaultSimilarityThreshold = 0.6

// PriorInteraction is the previous completed interaction the new prompt may
// be continuing. The caller loads it; the interpreter only compares.
type PriorInteraction struct {
	ID            string
	Prompt        string
	SynthesisText string
}

// Decision explains how the new prompt relates to the conversation so far.
type Decision struct {
	Type               QueryType
	Confidence         float64
	Similarity         float64
	ContextualKeywords []string
	PriorID            string
	Degraded           bool
}

// IsContinuation reports whether prior context should be carried into the
// new orchestration cycle.
func (d *Decision) IsContinuation() bool {
	return d.Type == QueryTypeContinuation || d.Type == QueryTypeReferenceToPrevious
}

// Interpreter classifies each incoming prompt as a new topic, a continuation,
// or an explicit reference to the previous answer. It combines lexical cues
// with embedding similarity against the prior prompt and synthesis.
type Interpreter struct {
	embedder  embedding.Provider
	threshold float64
	logger    *log.Logger
}

func New(embedder embedding.Provider, threshold float64, logger *log.Logger) *Interpreter {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Interpreter{
		embedder:  embedder,
		threshold: threshold,
		logger:    logger,
	}
}

// referenceCues are phrases that directly point at the previous answer.
var referenceCues = []string{
	"¿y si",
	"y si ",
	"mejora",
	"mejóralo",
	"otra opción",
	"otra alternativa",
	"lo anterior",
	"la respuesta anterior",
	"eso que dijiste",
	"expand on that",
	"improve it",
	"the previous answer",
	"another option",
}

// continuationCues suggest the same topic continues without naming the answer.
var continuationCues = []string{
	"también",
	"además",
	"ahora",
	"entonces",
	"and also",
	"what about",
	"además de eso",
}

// Interpret resolves the relation of prompt to prior under the requested
// mode. Mode new and continue are explicit overrides; auto decides from cues
// and embedding similarity. A nil prior always yields a new topic.
func (i *Interpreter) Interpret(ctx context.Context, prompt string, mode ConversationMode, prior *PriorInteraction) *Decision {
	if prior == nil {
		return &Decision{Type: QueryTypeNewTopic, Confidence: 1.0}
	}

	switch mode {
	case ModeNew:
		return &Decision{Type: QueryTypeNewTopic, Confidence: 1.0}
	case ModeContinue:
		return &Decision{
			Type:               QueryTypeContinuation,
			Confidence:         1.0,
			ContextualKeywords: sharedKeywords(prompt, prior),
			PriorID:            prior.ID,
		}
	}

	lower := strings.ToLower(strings.TrimSpace(prompt))

	for _, cue := range referenceCues {
		if strings.Contains(lower, cue) {
			return &Decision{
				Type:               QueryTypeReferenceToPrevious,
				Confidence:         0.9,
				ContextualKeywords: sharedKeywords(prompt, prior),
				PriorID:            prior.ID,
			}
		}
	}

	// Very short prompts rarely stand alone: "why?", "¿cómo?".
	if len(strings.Fields(lower)) <= 3 && strings.Contains(lower, "?") {
		return &Decision{
			Type:               QueryTypeReferenceToPrevious,
			Confidence:         0.75,
			ContextualKeywords: sharedKeywords(prompt, prior),
			PriorID:            prior.ID,
		}
	}

	cueHit := false
	for _, cue := range continuationCues {
		if strings.HasPrefix(lower, cue) {
			cueHit = true
			break
		}
	}

	sim, err := i.similarity(ctx, prompt, prior)
	if err != nil {
		i.logger.Printf("[FOLLOWUP] embedding comparison unavailable, using lexical cues only: %v", err)
		if cueHit {
			return &Decision{
				Type:               QueryTypeContinuation,
				Confidence:         0.65,
				ContextualKeywords: sharedKeywords(prompt, prior),
				PriorID:            prior.ID,
				Degraded:           true,
			}
		}
		return &Decision{Type: QueryTypeNewTopic, Confidence: 0.5, Degraded: true}
	}

	if sim >= i.threshold || cueHit {
		confidence := sim
		if cueHit && confidence < 0.7 {
			confidence = 0.7
		}
		return &Decision{
			Type:               QueryTypeContinuation,
			Confidence:         confidence,
			Similarity:         sim,
			ContextualKeywords: sharedKeywords(prompt, prior),
			PriorID:            prior.ID,
		}
	}

	return &Decision{
		Type:       QueryTypeNewTopic,
		Confidence: 1 - sim,
		Similarity: sim,
	}
}

// similarity embeds the new prompt and the prior prompt plus synthesis and
// returns their cosine similarity.
func (i *Interpreter) similarity(ctx context.Context, prompt string, prior *PriorInteraction) (float64, error) {
	priorText := prior.Prompt
	if prior.SynthesisText != "" {
		priorText += "\n" + prior.SynthesisText
	}

	vectors, err := i.embedder.EmbedBatch(ctx, []string{prompt, priorText})
	if err != nil {
		return 0, err
	}

	return cosineSimilarity(vectors[0], vectors[1]), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sharedKeywords collects the significant words the new prompt has in common
// with the prior exchange. They seed chunk retrieval for continuations.
func sharedKeywords(prompt string, prior *PriorInteraction) []string {
	priorWords := make(map[string]bool)
	for _, w := range tokenize(prior.Prompt + " " + prior.SynthesisText) {
		priorWords[w] = true
	}

	seen := make(map[string]bool)
	var shared []string
	for _, w := range tokenize(prompt) {
		if priorWords[w] && !seen[w] {
			seen[w] = true
			shared = append(shared, w)
		}
	}
	return shared
}

var stopwords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "de": true, "que": true,
	"y": true, "en": true, "un": true, "una": true, "es": true, "por": true,
	"para": true, "con": true, "del": true, "se": true, "mi": true, "como": true,
	"the": true, "a": true, "an": true, "of": true, "to": true, "and": true,
	"is": true, "in": true, "for": true, "on": true, "with": true, "my": true,
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') &&
			!strings.ContainsRune("áéíóúñü", r)
	})

	var words []string
	for _, f := range fields {
		if len(f) > 2 && !stopwords[f] {
			words = append(words, f)
		}
	}
	return words
}
