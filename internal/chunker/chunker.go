// Package chunker splits text into overlapping, boundary-aware chunks for
// embedding and retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultSize    = 2500
	DefaultOverlap = 500
)

// Options configures chunking behavior. Size is the maximum chunk length
// in characters; Overlap is the number of trailing characters repeated at
// the start of the following chunk.
type Options struct {
	Size    int
	Overlap int
}

// DefaultOptions returns the chunking parameters used by the focusing
// pipeline.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Chunk is a bounded, contiguous slice of the input text. Index is the
// chunk's position in original document order, which is distinct from
// retrieval-rank order.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// separators in priority order. Raw character cut is the implicit last
// resort when none fits.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split divides text into chunks no longer than opts.Size, preferring to
// break at a paragraph break, then a line break, then a sentence end,
// then a word boundary. Consecutive chunks share opts.Overlap characters
// of context. Output is deterministic for fixed options.
//
// Concatenating the chunks with the overlap prefix stripped from every
// chunk after the first reconstructs the input exactly.
func Split(text string, opts Options) []Chunk {
	if opts.Size <= 0 {
		opts = DefaultOptions()
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.Size {
		opts.Overlap = opts.Size / 4
	}

	if text == "" {
		return nil
	}
	runes := []rune(text)
	n := len(runes)
	if n <= opts.Size {
		return []Chunk{{Index: 0, Text: text}}
	}

	var chunks []Chunk
	start := 0
	for start < n {
		end := start + opts.Size
		if end >= n {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:])})
			break
		}
		cut := breakPoint(runes, start, end, start+opts.Overlap)
		chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:cut])})
		start = cut - opts.Overlap
	}

	return chunks
}

// breakPoint picks the cut position (a rune offset) for a chunk starting
// at start, with end = start + size. Each separator is tried in priority
// order; the rightmost occurrence inside the window wins, with the
// separator kept on the leading side of the cut. Cuts at or before min
// are rejected so the next chunk always makes progress past the overlap;
// if no separator qualifies, the chunk is cut at end.
func breakPoint(runes []rune, start, end, min int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		i := strings.LastIndex(window, sep)
		if i < 0 {
			continue
		}
		cut := start + utf8.RuneCountInString(window[:i+len(sep)])
		if cut > min {
			return cut
		}
	}
	return end
}

// Join reassembles chunks into a single string, stripping the declared
// overlap (in runes) from every chunk after the first. It is the inverse
// of Split.
func Join(chunks []Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c.Text)
			continue
		}
		runes := []rune(c.Text)
		if overlap < len(runes) {
			b.WriteString(string(runes[overlap:]))
		}
	}
	return b.String()
}
