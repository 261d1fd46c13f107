package moderator

import (
	"fmt"
	"strings"
)

// Fallback builds a deterministic concatenation synthesis used whenever the
// synthesizer model is unreachable or returns unparseable output. Same
// inputs always produce the same text.
func Fallback(answers []ProviderAnswer, opts Options) *Response {
	if len(answers) == 0 {
		return failedResponse(nil)
	}

	var b strings.Builder
	b.WriteString("Respuestas de los proveedores de IA:\n\n")

	refs := make(map[string][]string, len(answers))
	for _, a := range answers {
		fmt.Fprintf(&b, "### %s\n%s\n\n", a.Provider, strings.TrimSpace(a.Text))
		refs[a.Provider] = []string{firstSentence(a.Text)}
	}

	quality := QualityMedium
	if len(answers) == 1 {
		quality = QualityLow
	}

	return &Response{
		SynthesisText:    capWords(strings.TrimSpace(b.String()), opts.MaxSynthesisWords*2),
		KeyThemes:        []string{},
		ConsensusAreas:   []string{},
		Contradictions:   []string{},
		SourceReferences: refs,
		Quality:          quality,
		FallbackUsed:     true,
	}
}
