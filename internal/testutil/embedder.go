// Package testutil provides deterministic test doubles shared across
// packages. Nothing here is used in production code paths.
package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/philippgille/chromem-go"
)

const embeddingDim = 64

// EmbeddingFunc returns a deterministic embedding function. Each word is
// hashed into a fixed-dimension bag-of-words vector, so texts sharing
// vocabulary score high on cosine similarity and ranking behaves like a
// real embedder without network calls.
func EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, embeddingDim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vec[h.Sum32()%embeddingDim]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			vec[0] = 1
			norm = 1
		}
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
		return vec, nil
	}
}

// FailingEmbeddingFunc returns an embedding function that always returns
// err. Useful for exercising embedding failure paths.
func FailingEmbeddingFunc(err error) chromem.EmbeddingFunc {
	return func(context.Context, string) ([]float32, error) {
		return nil, err
	}
}

// CountingEmbeddingFunc wraps fn and counts invocations via calls.
func CountingEmbeddingFunc(fn chromem.EmbeddingFunc, calls *int) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		*calls++
		return fn(ctx, text)
	}
}
