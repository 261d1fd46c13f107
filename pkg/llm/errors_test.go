package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimited},
		{408, KindTimeout},
		{504, KindTimeout},
		{500, KindUpstream},
		{503, KindUpstream},
		{400, KindInvalidRequest},
		{422, KindInvalidRequest},
		{200, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			if got := ClassifyStatus(tt.status); got != tt.want {
				t.Errorf("ClassifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestClassifyDeadline(t *testing.T) {
	pe := Classify("openai", context.DeadlineExceeded)
	if pe.Kind != KindTimeout {
		t.Errorf("deadline exceeded should classify as timeout, got %s", pe.Kind)
	}
	if pe.Provider != "openai" {
		t.Errorf("provider = %q", pe.Provider)
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := &ProviderError{Kind: KindAuth, Message: "bad key"}
	wrapped := fmt.Errorf("call failed: %w", orig)

	pe := Classify("anthropic", wrapped)
	if pe.Kind != KindAuth {
		t.Errorf("kind = %s, want auth", pe.Kind)
	}
	if pe.Provider != "anthropic" {
		t.Errorf("provider should be filled in, got %q", pe.Provider)
	}
}

func TestClassifyUnknown(t *testing.T) {
	pe := Classify("ollama", errors.New("something odd"))
	if pe.Kind != KindUnknown {
		t.Errorf("kind = %s, want unknown", pe.Kind)
	}
}

func TestRetryable(t *testing.T) {
	retryable := []ErrorKind{KindTimeout, KindRateLimited, KindUpstream}
	terminal := []ErrorKind{KindAuth, KindInvalidRequest, KindUnknown}

	for _, k := range retryable {
		if !(&ProviderError{Kind: k}).Retryable() {
			t.Errorf("%s should be retryable", k)
		}
	}
	for _, k := range terminal {
		if (&ProviderError{Kind: k}).Retryable() {
			t.Errorf("%s should not be retryable", k)
		}
	}
}

func TestRedactedHidesMessage(t *testing.T) {
	pe := &ProviderError{Provider: "openai", Kind: KindUpstream, Message: "secret body sk-123"}
	if got := pe.Redacted(); got != "upstream (openai)" {
		t.Errorf("Redacted() = %q", got)
	}
}
