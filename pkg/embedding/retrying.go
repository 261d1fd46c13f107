package embedding

import (
	"context"
	"time"

	"orquix-backend/internal/pkg/apperrors"
)

// retryingProvider retries transient embedding failures with a fixed delay.
// After exhausting the attempts it fails with EmbeddingUnavailable.
type retryingProvider struct {
	inner      Provider
	maxRetries int
	retryDelay time.Duration
}

func NewRetrying(inner Provider, maxRetries int, retryDelay time.Duration) Provider {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &retryingProvider{
		inner:      inner,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (r *retryingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		vector, err := r.inner.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.KindCancelled, "embedding cancelled", ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}
	return nil, apperrors.Wrap(apperrors.KindEmbeddingUnavailable, "embedding failed after retries", lastErr)
}

func (r *retryingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		vectors, err := r.inner.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.KindCancelled, "embedding cancelled", ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}
	return nil, apperrors.Wrap(apperrors.KindEmbeddingUnavailable, "embedding batch failed after retries", lastErr)
}

func (r *retryingProvider) Dimension() int {
	return r.inner.Dimension()
}

func (r *retryingProvider) ModelName() string {
	return r.inner.ModelName()
}
