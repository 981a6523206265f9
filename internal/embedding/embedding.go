// Package embedding provides a pluggable interface for text embedding
// providers. The focusing pipeline treats the provider as an opaque
// text-to-vector capability.
package embedding

import (
	"context"
	"fmt"
	"math"
	"os"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dims() int
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string // "ollama" or "openai"
	Model    string
	BaseURL  string
	APIKey   string
	Dims     int
}

// New creates an embedder from settings. An empty provider is an error;
// the caller decides whether a missing embedder is fatal.
func New(s Settings) (Embedder, error) {
	switch s.Provider {
	case "ollama":
		model := s.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllama(s.BaseURL, model), nil
	case "openai":
		key := s.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAI(s.BaseURL, key, s.Model, s.Dims), nil
	case "":
		return nil, fmt.Errorf("no embedding provider configured")
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}
