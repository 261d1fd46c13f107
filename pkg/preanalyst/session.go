package preanalyst

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ClarificationSession accumulates the question/answer exchange that follows
// a vague prompt until the analyst can produce an executable refined prompt.
type ClarificationSession struct {
	ID             string
	ProjectID      string
	UserID         string
	OriginalPrompt string
	Exchanges      []Exchange
	CreatedAt      time.Time
}

type Exchange struct {
	Questions []string
	Answer    string
}

func NewSession(id, projectID, userID, originalPrompt string, questions []string) *ClarificationSession {
	return &ClarificationSession{
		ID:             id,
		ProjectID:      projectID,
		UserID:         userID,
		OriginalPrompt: originalPrompt,
		Exchanges:      []Exchange{{Questions: questions}},
		CreatedAt:      time.Now(),
	}
}

// Continue records the user's answer to the latest questions and re-runs the
// analysis over the full exchange. When the result still needs clarification
// a new exchange round is appended.
func (a *Analyst) Continue(ctx context.Context, session *ClarificationSession, answer string) *Analysis {
	if len(session.Exchanges) > 0 {
		session.Exchanges[len(session.Exchanges)-1].Answer = answer
	}

	analysis := a.Analyze(ctx, session.combinedPrompt())
	if analysis.NeedsClarification() {
		session.Exchanges = append(session.Exchanges, Exchange{Questions: analysis.ClarificationQuestions})
	}
	return analysis
}

func (s *ClarificationSession) combinedPrompt() string {
	var b strings.Builder
	b.WriteString(s.OriginalPrompt)

	for _, ex := range s.Exchanges {
		if strings.TrimSpace(ex.Answer) == "" {
			continue
		}
		b.WriteString("\n\nAclaraciones adicionales:\n")
		for _, q := range ex.Questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		fmt.Fprintf(&b, "Respuesta: %s", ex.Answer)
	}

	return b.String()
}
