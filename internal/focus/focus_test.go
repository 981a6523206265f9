package focus

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/focal-dev/focal/internal/chunker"
	"github.com/focal-dev/focal/internal/embedding"
	"github.com/focal-dev/focal/internal/vcache"
)

// hashEmbedder produces a deterministic vector from text content.
type hashEmbedder struct {
	calls int
	fail  bool
}

func (e *hashEmbedder) Embed(_ context.Context, text string) (embedding.Vector, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedding provider unavailable")
	}
	v := make(embedding.Vector, 8)
	for i, r := range text {
		v[i%8] += float32(r%32) / 32
	}
	return v, nil
}

func (e *hashEmbedder) Dims() int { return 8 }

func newTestFocuser(t *testing.T, emb embedding.Embedder, opts chunker.Options) *Focuser {
	t.Helper()
	cache, err := vcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("vcache.New: %v", err)
	}
	return NewWithChunking(emb, cache, opts)
}

func TestChunkBudget(t *testing.T) {
	tests := []struct {
		difficulty   string
		numQuestions int
		want         int
	}{
		{"easy", 0, 6},
		{"medium", 0, 10},
		{"hard", 0, 16}, // capped below
		{"easy", 9, 9},
		{"medium", 6, 12},
		{"hard", 30, 15},   // base 16 already above cap
		{"medium", 30, 15}, // 10 + 10 capped
		{"unknown", 0, 10}, // unrecognized difficulty behaves like medium
		{"EASY", 3, 7},     // case-insensitive
	}

	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			got := ChunkBudget(tt.difficulty, tt.numQuestions)
			if got > maxChunkBudget && tt.want <= maxChunkBudget {
				t.Fatalf("budget %d exceeds cap", got)
			}
			if got != tt.want {
				t.Errorf("ChunkBudget(%q, %d) = %d, want %d", tt.difficulty, tt.numQuestions, got, tt.want)
			}
		})
	}
}

func TestChunkBudget_HardUncapped(t *testing.T) {
	// hard base is 16, which is already over the cap of 15.
	if got := ChunkBudget("hard", 0); got != 15 {
		t.Errorf("ChunkBudget(hard, 0) = %d, want 15", got)
	}
}

func TestQuery_TemplateSelection(t *testing.T) {
	if q := Query("Light", "easy"); !strings.Contains(q, "basic definitions") || !strings.Contains(q, "Light") {
		t.Errorf("easy query = %q", q)
	}
	if q := Query("Light", "hard"); !strings.Contains(q, "complex analysis") {
		t.Errorf("hard query = %q", q)
	}
	// Unrecognized difficulty uses the medium template.
	if Query("Light", "extreme") != Query("Light", "medium") {
		t.Error("unrecognized difficulty should use the medium template")
	}
}

func TestFocus_ShortCircuit(t *testing.T) {
	emb := &hashEmbedder{}
	f := newTestFocuser(t, emb, chunker.Options{Size: 200, Overlap: 40})

	content := "A short chapter that fits in a handful of chunks."
	res := f.Focus(context.Background(), content, "Light", "medium", 5)

	if res.Status != StatusFull {
		t.Errorf("status = %s, want %s", res.Status, StatusFull)
	}
	if res.Text != content {
		t.Error("short-circuit must return content unchanged")
	}
	if emb.calls != 0 {
		t.Errorf("embedding provider called %d times on short-circuit path, want 0", emb.calls)
	}
	if res.SourceChunks != res.RetainedChunks {
		t.Errorf("source %d != retained %d on identity path", res.SourceChunks, res.RetainedChunks)
	}
}

func TestFocus_ReducesLargeContent(t *testing.T) {
	f := newTestFocuser(t, &hashEmbedder{}, chunker.Options{Size: 120, Overlap: 20})

	content := strings.Repeat("Reflection of light occurs at smooth surfaces. ", 200)
	res := f.Focus(context.Background(), content, "Light", "easy", 0)

	if res.Status != StatusFocused {
		t.Fatalf("status = %s, want %s", res.Status, StatusFocused)
	}
	if res.RetainedChunks != 6 {
		t.Errorf("retained %d chunks, want the easy budget of 6", res.RetainedChunks)
	}
	if res.SourceChunks <= res.RetainedChunks {
		t.Errorf("source chunks %d should exceed retained %d", res.SourceChunks, res.RetainedChunks)
	}
	if len(res.Text) >= len(content) {
		t.Errorf("focused text (%d chars) not smaller than input (%d chars)", len(res.Text), len(content))
	}
}

func TestFocus_FallbackOnProviderFailure(t *testing.T) {
	f := newTestFocuser(t, &hashEmbedder{fail: true}, chunker.Options{Size: 120, Overlap: 20})

	content := strings.Repeat("Acids turn blue litmus red. ", 200)
	res := f.Focus(context.Background(), content, "Acids", "medium", 10)

	if res.Status != StatusFallback {
		t.Errorf("status = %s, want %s", res.Status, StatusFallback)
	}
	if res.Text != content {
		t.Error("fallback must return the original content")
	}
}

func TestFocus_SecondCallHitsCache(t *testing.T) {
	emb := &hashEmbedder{}
	f := newTestFocuser(t, emb, chunker.Options{Size: 120, Overlap: 20})

	content := strings.Repeat("The heart pumps blood through the body. ", 200)

	f.Focus(context.Background(), content, "Circulation", "medium", 5)
	buildCalls := emb.calls

	f.Focus(context.Background(), content, "Circulation", "medium", 5)
	// Only the query embedding should be computed on the second call.
	if emb.calls != buildCalls+1 {
		t.Errorf("second call made %d embed calls, want 1 (query only)", emb.calls-buildCalls)
	}
}

func TestRetrieveChunks_SmallContentReturnsAll(t *testing.T) {
	f := newTestFocuser(t, &hashEmbedder{}, chunker.Options{Size: 200, Overlap: 40})

	content := "A tiny chapter."
	got := f.RetrieveChunks(context.Background(), content, "Tiny", "medium", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0].RelevanceRank != 0 {
		t.Error("document-order chunks must not carry a relevance rank")
	}
}

func TestRetrieveChunks_RankedResults(t *testing.T) {
	f := newTestFocuser(t, &hashEmbedder{}, chunker.Options{Size: 120, Overlap: 20})

	content := strings.Repeat("Electric current is the flow of charge. ", 200)
	got := f.RetrieveChunks(context.Background(), content, "Electricity", "medium", 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(got))
	}
	for i, c := range got {
		if c.RelevanceRank != i+1 {
			t.Errorf("chunk %d has rank %d, want %d", i, c.RelevanceRank, i+1)
		}
	}
}

func TestRetrieveChunks_FallbackToLeadingChunks(t *testing.T) {
	f := newTestFocuser(t, &hashEmbedder{fail: true}, chunker.Options{Size: 120, Overlap: 20})

	content := strings.Repeat("Plants make food by photosynthesis. ", 200)
	got := f.RetrieveChunks(context.Background(), content, "Plants", "medium", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 fallback chunks, got %d", len(got))
	}
	for i, c := range got {
		if c.ChunkIndex != i {
			t.Errorf("fallback chunk %d has index %d, want document order", i, c.ChunkIndex)
		}
		if c.RelevanceRank != 0 {
			t.Error("fallback chunks must not carry a relevance rank")
		}
	}
}
