package contextbuilder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Spanish markers used in the rendered context document. They are part of
// the stored format and must stay stable across releases.
const (
	SynthesisMarker     = "🔬 Análisis del Moderador IA"
	MainQueryMarker     = "🎯 Consulta Principal"
	RelevantInfoMarker  = "📋 Contexto Relevante"
	synthesisHashPrefix = "<!-- síntesis:"
)

// Facts maps a topic to the facts filed under it.
type Facts map[string][]string

// Total counts facts across all topics.
func (f Facts) Total() int {
	n := 0
	for _, items := range f {
		n += len(items)
	}
	return n
}

// topicOrder fixes rendering order so the same document always serializes
// identically.
var topicOrder = []string{
	TopicBusiness,
	TopicProblem,
	TopicGoal,
	TopicConstraint,
	TopicMetric,
	TopicGeneral,
}

// Document is the parsed form of a project's accumulated context: topic
// sections built up by the sidebar plus appended moderator syntheses.
type Document struct {
	Facts     Facts
	Syntheses []Synthesis
}

type Synthesis struct {
	Hash string
	Text string
}

func NewDocument() *Document {
	return &Document{Facts: make(Facts)}
}

// Merge folds newly extracted facts into the document. Existing facts are
// never removed or rewritten; duplicates within a topic are skipped.
func (d *Document) Merge(incoming Facts) {
	for topic, items := range incoming {
		existing := make(map[string]bool, len(d.Facts[topic]))
		for _, f := range d.Facts[topic] {
			existing[strings.ToLower(f)] = true
		}
		for _, item := range items {
			if !existing[strings.ToLower(item)] {
				d.Facts[topic] = append(d.Facts[topic], item)
				existing[strings.ToLower(item)] = true
			}
		}
	}
}

// Ready reports whether the context is complete enough to finalize into an
// orchestration query: the business, goal and constraint topics each hold at
// least one fact and five facts exist overall.
func (d *Document) Ready() bool {
	for _, topic := range []string{TopicBusiness, TopicGoal, TopicConstraint} {
		if len(d.Facts[topic]) == 0 {
			return false
		}
	}
	return d.Facts.Total() >= 5
}

// Suggestions proposes what the user should cover next. A ready document
// suggests finalizing; otherwise each missing core topic gets a nudge.
func (d *Document) Suggestions() []string {
	if d.Ready() {
		return []string{"Tu contexto está completo. Formula tu pregunta final para lanzar la orquestación."}
	}

	var suggestions []string
	if len(d.Facts[TopicBusiness]) == 0 {
		suggestions = append(suggestions, "Describe tu negocio o proyecto.")
	}
	if len(d.Facts[TopicGoal]) == 0 {
		suggestions = append(suggestions, "¿Cuál es tu objetivo principal?")
	}
	if len(d.Facts[TopicConstraint]) == 0 {
		suggestions = append(suggestions, "¿Qué restricciones o límites tienes?")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Añade más detalles sobre tu situación.")
	}
	return suggestions
}

// AppendSynthesis attaches a moderator synthesis to the document. The call
// is idempotent per synthesis text: re-appending the same text is a no-op,
// while a different synthesis adds a new block.
func (d *Document) AppendSynthesis(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	hash := synthesisHash(text)
	for _, s := range d.Syntheses {
		if s.Hash == hash {
			return false
		}
	}

	d.Syntheses = append(d.Syntheses, Synthesis{Hash: hash, Text: text})
	return true
}

// Render serializes the document to the stored text form.
func (d *Document) Render() string {
	var b strings.Builder

	for _, topic := range orderedTopics(d.Facts) {
		items := d.Facts[topic]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", topic)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	for _, s := range d.Syntheses {
		fmt.Fprintf(&b, "## %s\n", SynthesisMarker)
		fmt.Fprintf(&b, "%s%s -->\n", synthesisHashPrefix, s.Hash)
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// Parse rebuilds a Document from its stored text form. Unrecognized lines
// before any section header are ignored.
func Parse(text string) *Document {
	doc := NewDocument()
	if strings.TrimSpace(text) == "" {
		return doc
	}

	var (
		topic     string
		synthesis *Synthesis
	)
	flush := func() {
		if synthesis != nil {
			synthesis.Text = strings.TrimSpace(synthesis.Text)
			doc.Syntheses = append(doc.Syntheses, *synthesis)
			synthesis = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			header := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			if header == SynthesisMarker {
				topic = ""
				synthesis = &Synthesis{}
			} else {
				topic = header
			}
		case synthesis != nil && strings.HasPrefix(line, synthesisHashPrefix):
			synthesis.Hash = strings.TrimSuffix(strings.TrimPrefix(line, synthesisHashPrefix), " -->")
		case synthesis != nil:
			synthesis.Text += line + "\n"
		case topic != "" && strings.HasPrefix(line, "- "):
			doc.Facts[topic] = append(doc.Facts[topic], strings.TrimPrefix(line, "- "))
		}
	}
	flush()

	// Text stored before hashes existed gets one computed on read.
	for i := range doc.Syntheses {
		if doc.Syntheses[i].Hash == "" {
			doc.Syntheses[i].Hash = synthesisHash(doc.Syntheses[i].Text)
		}
	}
	return doc
}

// PackageForOrchestration formats the finalized query plus the accumulated
// context into the prompt block the orchestrator sends to providers.
func PackageForOrchestration(query, renderedContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s:\n%s\n", MainQueryMarker, strings.TrimSpace(query))
	if strings.TrimSpace(renderedContext) != "" {
		fmt.Fprintf(&b, "\n%s:\n%s\n", RelevantInfoMarker, strings.TrimSpace(renderedContext))
	}

	return b.String()
}

func orderedTopics(facts Facts) []string {
	seen := make(map[string]bool, len(topicOrder))
	ordered := make([]string, 0, len(facts))
	for _, t := range topicOrder {
		seen[t] = true
		if len(facts[t]) > 0 {
			ordered = append(ordered, t)
		}
	}

	var extra []string
	for t := range facts {
		if !seen[t] {
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

func synthesisHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
