// Package focus reduces a topic's full text to a bounded, semantically
// relevant subset before it is handed to a downstream generator. It
// orchestrates chunking, the embedding cache, and similarity retrieval
// under a difficulty and question-count policy, degrading to the
// original content on any failure.
package focus

import (
	"context"
	"fmt"
	"strings"

	"github.com/focal-dev/focal/internal/chunker"
	"github.com/focal-dev/focal/internal/embedding"
	"github.com/focal-dev/focal/internal/logger"
	"github.com/focal-dev/focal/internal/vcache"
	"github.com/focal-dev/focal/internal/vecindex"
)

// Status reports how a focusing result was produced.
type Status string

const (
	// StatusFull means the content was already small enough; it is
	// returned unchanged and the embedding provider was never called.
	StatusFull Status = "full"
	// StatusFocused means retrieval ran and reduced the content.
	StatusFocused Status = "focused"
	// StatusFallback means a failure occurred and the original content
	// was returned unfiltered.
	StatusFallback Status = "fallback"
)

// Result is the outcome of a single focusing request.
type Result struct {
	Text           string `json:"text"`
	SourceChunks   int    `json:"source_chunks"`
	RetainedChunks int    `json:"retained_chunks"`
	Status         Status `json:"status"`
}

// queryTemplates select content by difficulty: easy favors definitions
// and basic facts, medium favors concepts and relationships, hard favors
// analysis and applications.
var queryTemplates = map[string]string{
	"easy":   "basic definitions, key terms, simple facts and fundamental concepts about %s",
	"medium": "important concepts, principles, processes, relationships and examples in %s",
	"hard":   "complex analysis, advanced concepts, applications, problem-solving and detailed understanding of %s",
}

var baseChunks = map[string]int{
	"easy":   6,
	"medium": 10,
	"hard":   16,
}

const maxChunkBudget = 15

// normalizeDifficulty lowercases difficulty and maps unrecognized values
// to "medium".
func normalizeDifficulty(difficulty string) string {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	if _, ok := baseChunks[d]; !ok {
		return "medium"
	}
	return d
}

// Query builds the retrieval query string for a topic at a difficulty.
func Query(topicName, difficulty string) string {
	return fmt.Sprintf(queryTemplates[normalizeDifficulty(difficulty)], topicName)
}

// ChunkBudget computes k, the number of chunks to retain: a per-difficulty
// base scaled by the question count and capped.
func ChunkBudget(difficulty string, numQuestions int) int {
	k := baseChunks[normalizeDifficulty(difficulty)] + numQuestions/3
	if k > maxChunkBudget {
		k = maxChunkBudget
	}
	return k
}

// Focuser runs the chunk, embed, retrieve pipeline.
type Focuser struct {
	embedder embedding.Embedder
	cache    *vcache.Cache
	chunking chunker.Options
}

// New creates a Focuser with the pipeline's default chunking parameters.
func New(emb embedding.Embedder, cache *vcache.Cache) *Focuser {
	return &Focuser{
		embedder: emb,
		cache:    cache,
		chunking: chunker.DefaultOptions(),
	}
}

// NewWithChunking creates a Focuser with explicit chunking parameters.
func NewWithChunking(emb embedding.Embedder, cache *vcache.Cache, opts chunker.Options) *Focuser {
	return &Focuser{embedder: emb, cache: cache, chunking: opts}
}

// Focus reduces content to the chunks most relevant to topicName at the
// given difficulty. When the content already fits within the chunk
// budget it is returned unchanged. Any failure degrades to the original
// content so downstream generation always receives usable input.
func (f *Focuser) Focus(ctx context.Context, content, topicName, difficulty string, numQuestions int) Result {
	k := ChunkBudget(difficulty, numQuestions)
	chunks := chunker.Split(content, f.chunking)
	logger.Debug("focus: %d chars split into %d chunks, budget %d", len(content), len(chunks), k)

	if len(chunks) <= k {
		return Result{
			Text:           content,
			SourceChunks:   len(chunks),
			RetainedChunks: len(chunks),
			Status:         StatusFull,
		}
	}

	fallback := Result{
		Text:           content,
		SourceChunks:   len(chunks),
		RetainedChunks: len(chunks),
		Status:         StatusFallback,
	}

	ix, hit, err := f.cache.GetOrCreate(ctx, content, func(ctx context.Context) (*vecindex.Index, error) {
		return vecindex.Build(ctx, chunks, f.embedder)
	})
	if err != nil {
		logger.Warn("focus: index build failed, returning unfiltered content: %v", err)
		return fallback
	}
	logger.Debug("focus: index ready (cache hit=%v)", hit)

	hits, err := f.retrieve(ctx, ix, topicName, difficulty, k)
	if err != nil {
		logger.Warn("focus: retrieval failed, returning unfiltered content: %v", err)
		return fallback
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}

	reduced := strings.Join(texts, "\n\n")
	logger.Info("focus: content reduced %d -> %d chars (%d of %d chunks)",
		len(content), len(reduced), len(hits), len(chunks))

	return Result{
		Text:           reduced,
		SourceChunks:   len(chunks),
		RetainedChunks: len(hits),
		Status:         StatusFocused,
	}
}

// retrieve embeds the difficulty query and searches the index.
func (f *Focuser) retrieve(ctx context.Context, ix *vecindex.Index, topicName, difficulty string, k int) ([]vecindex.Hit, error) {
	query := Query(topicName, difficulty)
	qv, err := f.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.Search(qv, k), nil
}

// RetrievedChunk is one chunk record for multi-topic chunk retrieval.
// ChunkIndex is the chunk's position in original document order;
// RelevanceRank is 1-based and present only when retrieval ran.
type RetrievedChunk struct {
	Content       string `json:"content"`
	ChunkIndex    int    `json:"chunk_index"`
	RelevanceRank int    `json:"relevance_rank,omitempty"`
}

// RetrieveChunks returns up to n chunks of content ranked by relevance
// to topicName at the given difficulty. When the content has n or fewer
// chunks, all of them are returned in document order without ranks.
// Retrieval failures fall back to the first n chunks in document order.
func (f *Focuser) RetrieveChunks(ctx context.Context, content, topicName, difficulty string, n int) []RetrievedChunk {
	chunks := chunker.Split(content, f.chunking)

	if len(chunks) <= n {
		return documentOrder(chunks)
	}

	ix, _, err := f.cache.GetOrCreate(ctx, content, func(ctx context.Context) (*vecindex.Index, error) {
		return vecindex.Build(ctx, chunks, f.embedder)
	})
	if err != nil {
		logger.Warn("retrieve: index build failed, falling back to leading chunks: %v", err)
		return documentOrder(chunks[:n])
	}

	hits, err := f.retrieve(ctx, ix, topicName, difficulty, n)
	if err != nil {
		logger.Warn("retrieve: query failed, falling back to leading chunks: %v", err)
		return documentOrder(chunks[:n])
	}

	out := make([]RetrievedChunk, len(hits))
	for i, h := range hits {
		out[i] = RetrievedChunk{Content: h.Text, ChunkIndex: h.Seq, RelevanceRank: i + 1}
	}
	return out
}

func documentOrder(chunks []chunker.Chunk) []RetrievedChunk {
	out := make([]RetrievedChunk, len(chunks))
	for i, c := range chunks {
		out[i] = RetrievedChunk{Content: c.Text, ChunkIndex: c.Index}
	}
	return out
}
