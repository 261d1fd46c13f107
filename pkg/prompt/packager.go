package prompt

import (
	"fmt"
	"strings"
)

// Chunk is one retrieved knowledge fragment with its provenance.
type Chunk struct {
	SourceIdentifier string
	Content          string
	Similarity       float64
}

// Input carries everything that competes for space in the provider prompt,
// in descending priority: the query always fits, then conversational
// context, then the prior synthesis, then retrieved chunks.
type Input struct {
	Query                 string
	ConversationalContext string
	PriorSynthesis        string
	Chunks                []Chunk
}

// Package is the assembled prompt plus an audit trail of what made it in.
type Package struct {
	Text            string
	EstimatedTokens int
	IncludedChunks  []string
	Truncated       bool
	UsedSummary     string
}

const usedSummaryLimit = 500

// Packager assembles provider prompts under a token budget.
type Packager struct {
	maxContextTokens int
	tokenBuffer      int
	separator        string
}

func NewPackager(maxContextTokens, tokenBuffer int, separator string) *Packager {
	if separator == "" {
		separator = "\n\n---\n\n"
	}
	return &Packager{
		maxContextTokens: maxContextTokens,
		tokenBuffer:      tokenBuffer,
		separator:        separator,
	}
}

// EstimateTokens approximates token usage as one token per four characters.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Build assembles the prompt. Sections are added in priority order; a
// section that would overflow the budget is dropped whole, except chunks
// which are dropped individually from the least similar end.
func (p *Packager) Build(in Input) *Package {
	budget := p.maxContextTokens - p.tokenBuffer

	var sections []string
	add := func(section string) bool {
		candidate := strings.Join(append(sections[:len(sections):len(sections)], section), p.separator)
		if EstimateTokens(candidate) > budget {
			return false
		}
		sections = append(sections, section)
		return true
	}

	truncated := false

	// The query itself is never dropped, even when it alone exceeds the
	// budget.
	query := strings.TrimSpace(in.Query)
	sections = append(sections, query)

	if cc := strings.TrimSpace(in.ConversationalContext); cc != "" {
		if !add(cc) {
			truncated = true
		}
	}
	if ps := strings.TrimSpace(in.PriorSynthesis); ps != "" {
		if !add("Síntesis previa:\n" + ps) {
			truncated = true
		}
	}

	var included []string
	for _, c := range in.Chunks {
		section := fmt.Sprintf("[%s]\n%s", c.SourceIdentifier, strings.TrimSpace(c.Content))
		if add(section) {
			included = append(included, c.SourceIdentifier)
		} else {
			truncated = true
		}
	}

	text := strings.Join(sections, p.separator)
	return &Package{
		Text:            text,
		EstimatedTokens: EstimateTokens(text),
		IncludedChunks:  included,
		Truncated:       truncated,
		UsedSummary:     summarize(sections[1:], included),
	}
}

// summarize produces the short audit string stored on the interaction event.
func summarize(contextSections []string, included []string) string {
	if len(contextSections) == 0 {
		return ""
	}

	var b strings.Builder
	if len(included) > 0 {
		fmt.Fprintf(&b, "Fuentes: %s. ", strings.Join(included, ", "))
	}
	for _, s := range contextSections {
		b.WriteString(firstLine(s))
		b.WriteString(" ")
		if b.Len() >= usedSummaryLimit {
			break
		}
	}

	summary := strings.TrimSpace(b.String())
	if runes := []rune(summary); len(runes) > usedSummaryLimit {
		summary = string(runes[:usedSummaryLimit])
	}
	return summary
}

func firstLine(s string) string {
	if idx := strings.Index(s, "\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
