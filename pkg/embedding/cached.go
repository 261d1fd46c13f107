package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedProvider memoizes embeddings in redis. Embeddings are deterministic
// per model, so the cache key is the model plus a digest of the text.
type cachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCached(inner Provider, rdb *redis.Client) Provider {
	return &cachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   24 * time.Hour,
	}
}

func (c *cachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "|" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

func (c *cachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var vector []float32
		if err := json.Unmarshal(raw, &vector); err == nil && len(vector) == c.inner.Dimension() {
			return vector, nil
		}
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vector); err == nil {
		// Cache failures are not embedding failures.
		c.rdb.Set(ctx, key, raw, c.ttl)
	}
	return vector, nil
}

func (c *cachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var misses []string
	var missIdx []int

	for i, text := range texts {
		if raw, err := c.rdb.Get(ctx, c.key(text)).Bytes(); err == nil {
			var vector []float32
			if err := json.Unmarshal(raw, &vector); err == nil && len(vector) == c.inner.Dimension() {
				vectors[i] = vector
				continue
			}
		}
		misses = append(misses, text)
		missIdx = append(missIdx, i)
	}

	if len(misses) > 0 {
		fresh, err := c.inner.EmbedBatch(ctx, misses)
		if err != nil {
			return nil, err
		}
		for j, vector := range fresh {
			vectors[missIdx[j]] = vector
			if raw, err := json.Marshal(vector); err == nil {
				c.rdb.Set(ctx, c.key(misses[j]), raw, c.ttl)
			}
		}
	}

	return vectors, nil
}

func (c *cachedProvider) Dimension() int {
	return c.inner.Dimension()
}

func (c *cachedProvider) ModelName() string {
	return c.inner.ModelName()
}
