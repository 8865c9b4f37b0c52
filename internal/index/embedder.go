package index

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/philippgille/chromem-go"
)

// NewEmbeddingFunc adapts a genkit embedder to the chromem embedding
// interface. Embeddings are computed one text at a time; corpus builds rely
// on chromem's internal concurrency for throughput.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
			Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		})
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			return nil, fmt.Errorf("embedder returned no embedding")
		}
		return resp.Embeddings[0].Embedding, nil
	}
}
