// Package vecindex builds, persists, and searches a vector index over
// text chunks. Search is brute-force cosine similarity, which is exact
// and fast enough for the per-chapter chunk counts this system handles.
package vecindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/focal-dev/focal/internal/chunker"
	"github.com/focal-dev/focal/internal/embedding"
)

// Entry is one indexed chunk with its embedding vector.
type Entry struct {
	Seq    int
	Text   string
	Vector embedding.Vector
}

// Index holds indexed chunks in memory, ordered by insertion.
type Index struct {
	entries []Entry
	dims    int
}

// Hit is a similarity search result.
type Hit struct {
	Seq        int
	Text       string
	Similarity float64
}

// Build embeds every chunk through the provider and returns a fresh
// index. This is the only path that calls the embedding provider for
// chunk content.
func Build(ctx context.Context, chunks []chunker.Chunk, emb embedding.Embedder) (*Index, error) {
	ix := &Index{dims: emb.Dims(), entries: make([]Entry, 0, len(chunks))}
	for _, c := range chunks {
		vec, err := emb.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", c.Index, err)
		}
		ix.entries = append(ix.entries, Entry{Seq: c.Index, Text: c.Text, Vector: vec})
	}
	return ix, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.entries) }

// Dims returns the vector dimensionality recorded for this index.
func (ix *Index) Dims() int { return ix.dims }

// Search returns the k entries most similar to the query vector, ordered
// by non-increasing similarity. Ties keep insertion order. Fewer than k
// hits are returned only when the index holds fewer entries.
func (ix *Index) Search(query embedding.Vector, k int) []Hit {
	if k <= 0 || len(ix.entries) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		hits = append(hits, Hit{
			Seq:        e.Seq,
			Text:       e.Text,
			Similarity: embedding.CosineSimilarity(query, e.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS vectors (
	seq       INTEGER PRIMARY KEY,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);
`

// SaveTo writes the index to a SQLite file at path, overwriting any
// existing content. The written file is a complete, self-consistent
// artifact.
func (ix *Index) SaveTo(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open index db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vectors`); err != nil {
		return err
	}
	for _, e := range ix.entries {
		if _, err := tx.Exec(
			`INSERT INTO vectors (seq, text, embedding) VALUES (?, ?, ?)`,
			e.Seq, e.Text, encodeVector(e.Vector),
		); err != nil {
			return fmt.Errorf("insert vector %d: %w", e.Seq, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range map[string]string{
		"dims":       fmt.Sprintf("%d", ix.dims),
		"created_at": now,
	} {
		if _, err := tx.Exec(
			`INSERT INTO index_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Load reads a previously saved index from a SQLite file. No embedding
// provider is needed; the stored vectors are used as-is.
func Load(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	defer db.Close()

	ix := &Index{}

	var dims string
	if err := db.QueryRow(`SELECT value FROM index_meta WHERE key = 'dims'`).Scan(&dims); err == nil {
		fmt.Sscanf(dims, "%d", &ix.dims)
	}

	rows, err := db.Query(`SELECT seq, text, embedding FROM vectors ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var blob []byte
		if err := rows.Scan(&e.Seq, &e.Text, &blob); err != nil {
			return nil, err
		}
		e.Vector = decodeVector(blob)
		ix.entries = append(ix.entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ix, nil
}

// encodeVector packs a vector as little-endian float32 bytes.
func encodeVector(v embedding.Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(b []byte) embedding.Vector {
	v := make(embedding.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
