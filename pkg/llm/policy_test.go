package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAdapter struct {
	calls int
	fail  *ProviderError
	// failFirst makes only the first call fail.
	failFirst bool
}

func (a *countingAdapter) Name() string { return "counting" }

func (a *countingAdapter) Generate(ctx context.Context, prompt string, params Params) (*Result, error) {
	a.calls++
	if a.fail != nil && (!a.failFirst || a.calls == 1) {
		return nil, a.fail
	}
	return &Result{Text: "ok"}, nil
}

func (a *countingAdapter) Health(ctx context.Context) error { return nil }

func TestPolicyRetriesAfterFirstAttempt(t *testing.T) {
	inner := &countingAdapter{fail: &ProviderError{Provider: "counting", Kind: KindTimeout, Message: "deadline"}}
	adapter := WithPolicy(inner, time.Second, 1)

	_, err := adapter.Generate(context.Background(), "hola", Params{})
	require.Error(t, err)
	// One retry on top of the initial attempt.
	assert.Equal(t, 2, inner.calls)
}

func TestPolicyDoesNotRetryAuthErrors(t *testing.T) {
	inner := &countingAdapter{fail: &ProviderError{Provider: "counting", Kind: KindAuth, Message: "bad key"}}
	adapter := WithPolicy(inner, time.Second, 3)

	_, err := adapter.Generate(context.Background(), "hola", Params{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestPolicyRecoversOnRetry(t *testing.T) {
	inner := &countingAdapter{
		fail:      &ProviderError{Provider: "counting", Kind: KindUpstream, Message: "502"},
		failFirst: true,
	}
	adapter := WithPolicy(inner, time.Second, 2)

	res, err := adapter.Generate(context.Background(), "hola", Params{})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 2, inner.calls)
}
