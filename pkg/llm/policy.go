package llm

import (
	"context"
	"time"

	"orquix-backend/pkg/retry"
)

// policyAdapter enforces the per-provider timeout and retry policy around
// any raw adapter. Only transient kinds are retried; auth and
// invalid_request fail immediately.
type policyAdapter struct {
	inner      Adapter
	timeout    time.Duration
	maxRetries int
}

// WithPolicy wraps an adapter with a hard per-call timeout and exponential
// backoff retries on transient errors.
func WithPolicy(inner Adapter, timeout time.Duration, maxRetries int) Adapter {
	return &policyAdapter{
		inner:      inner,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

func (p *policyAdapter) Name() string {
	return p.inner.Name()
}

func (p *policyAdapter) Generate(ctx context.Context, prompt string, params Params) (*Result, error) {
	cfg := retry.DefaultConfig()
	// maxRetries counts retries after the first attempt.
	cfg.MaxAttempts = p.maxRetries + 1
	cfg.InitialDelay = 500 * time.Millisecond
	cfg.Retryable = func(err error) bool {
		pe := Classify(p.inner.Name(), err)
		return pe.Retryable()
	}

	result, err := retry.DoWithResult(ctx, cfg, func() (*Result, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		start := time.Now()
		res, err := p.inner.Generate(callCtx, prompt, params)
		if err != nil {
			return nil, Classify(p.inner.Name(), err)
		}
		if res.LatencyMs == 0 {
			res.LatencyMs = time.Since(start).Milliseconds()
		}
		return res, nil
	})
	if err != nil {
		return nil, Classify(p.inner.Name(), err)
	}
	return result, nil
}

func (p *policyAdapter) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.inner.Health(healthCtx)
}
