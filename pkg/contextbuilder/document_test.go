package contextbuilder

import (
	"strings"
	"testing"
)

func TestMergeNeverErases(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{TopicBusiness: {"panadería artesanal en Madrid"}})
	doc.Merge(Facts{TopicBusiness: {"tres empleados"}, TopicGoal: {"duplicar ventas online"}})

	if got := len(doc.Facts[TopicBusiness]); got != 2 {
		t.Errorf("expected 2 business facts, got %d", got)
	}
	if got := len(doc.Facts[TopicGoal]); got != 1 {
		t.Errorf("expected 1 goal fact, got %d", got)
	}
}

func TestMergeSkipsDuplicates(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{TopicGoal: {"Duplicar Ventas"}})
	doc.Merge(Facts{TopicGoal: {"duplicar ventas"}})

	if got := len(doc.Facts[TopicGoal]); got != 1 {
		t.Errorf("case-insensitive duplicate should be skipped, got %d facts", got)
	}
}

func TestReadyRequiresCoreTopicsAndFiveFacts(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{
		TopicBusiness:   {"panadería"},
		TopicGoal:       {"duplicar ventas"},
		TopicConstraint: {"presupuesto de 500 euros"},
	})
	if doc.Ready() {
		t.Error("three facts should not be ready yet")
	}

	doc.Merge(Facts{TopicMetric: {"ventas mensuales"}, TopicProblem: {"poca visibilidad online"}})
	if !doc.Ready() {
		t.Error("core topics covered with five facts should be ready")
	}
}

func TestReadyRequiresEachCoreTopic(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{TopicBusiness: {"a", "b", "c", "d", "e", "f"}})

	if doc.Ready() {
		t.Error("missing goal and constraint topics must block readiness")
	}
}

func TestAppendSynthesisIsIdempotentPerText(t *testing.T) {
	doc := NewDocument()

	if !doc.AppendSynthesis("Primera síntesis del moderador.") {
		t.Fatal("first append should succeed")
	}
	if doc.AppendSynthesis("Primera síntesis del moderador.") {
		t.Error("re-appending identical synthesis should be a no-op")
	}
	if !doc.AppendSynthesis("Una síntesis diferente.") {
		t.Error("a distinct synthesis should append")
	}
	if len(doc.Syntheses) != 2 {
		t.Errorf("expected 2 synthesis blocks, got %d", len(doc.Syntheses))
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{
		TopicBusiness: {"panadería en Madrid"},
		TopicGoal:     {"duplicar ventas", "abrir segunda tienda"},
	})
	doc.AppendSynthesis("Los proveedores recomiendan invertir en redes sociales.")

	rendered := doc.Render()
	if !strings.Contains(rendered, SynthesisMarker) {
		t.Fatal("rendered document should carry the synthesis marker")
	}

	parsed := Parse(rendered)
	if got := len(parsed.Facts[TopicGoal]); got != 2 {
		t.Errorf("round trip lost goal facts, got %d", got)
	}
	if len(parsed.Syntheses) != 1 {
		t.Fatalf("round trip lost syntheses, got %d", len(parsed.Syntheses))
	}
	if parsed.Syntheses[0].Hash != doc.Syntheses[0].Hash {
		t.Error("synthesis hash should survive the round trip")
	}
	if parsed.AppendSynthesis("Los proveedores recomiendan invertir en redes sociales.") {
		t.Error("idempotence must hold after a round trip")
	}
}

func TestParseEmpty(t *testing.T) {
	doc := Parse("   ")
	if doc.Facts.Total() != 0 || len(doc.Syntheses) != 0 {
		t.Error("blank text should parse to an empty document")
	}
}

func TestPackageForOrchestration(t *testing.T) {
	packaged := PackageForOrchestration("¿Cómo duplico mis ventas?", "## negocio\n- panadería")

	if !strings.Contains(packaged, MainQueryMarker+":") {
		t.Error("package should open with the main query marker")
	}
	if !strings.Contains(packaged, RelevantInfoMarker+":") {
		t.Error("package should include the relevant context marker")
	}
	if strings.Index(packaged, MainQueryMarker) > strings.Index(packaged, RelevantInfoMarker) {
		t.Error("query must precede context")
	}
}

func TestPackageForOrchestrationWithoutContext(t *testing.T) {
	packaged := PackageForOrchestration("pregunta", "  ")

	if strings.Contains(packaged, RelevantInfoMarker) {
		t.Error("empty context should omit the context section")
	}
}

func TestSuggestionsNameMissingCoreTopics(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{TopicBusiness: {"panadería artesanal"}})

	suggestions := doc.Suggestions()
	if len(suggestions) != 2 {
		t.Fatalf("expected nudges for the two missing core topics, got %v", suggestions)
	}
	for _, s := range suggestions {
		if strings.Contains(s, "negocio") {
			t.Errorf("covered topic should not be suggested: %q", s)
		}
	}
}

func TestSuggestionsOnReadyDocument(t *testing.T) {
	doc := NewDocument()
	doc.Merge(Facts{
		TopicBusiness:   {"panadería artesanal"},
		TopicGoal:       {"compensar la caída de ventas"},
		TopicConstraint: {"presupuesto limitado"},
		TopicProblem:    {"las ventas caen en verano"},
		TopicMetric:     {"ticket medio de 8 euros"},
	})

	suggestions := doc.Suggestions()
	if len(suggestions) != 1 || !strings.Contains(suggestions[0], "pregunta final") {
		t.Errorf("ready document should suggest finalizing, got %v", suggestions)
	}
}
