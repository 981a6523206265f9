// Package catalog loads and normalizes the board/class/subject index
// files that map curriculum coordinates to book identifiers.
//
// The upstream JSON is inconsistent: board and subject keys vary in
// case, class keys carry stray whitespace, and book records name their
// fields differently from file to file. All of that is normalized once
// at load time so the rest of the system works with strict records.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/focal-dev/focal/internal/logger"
)

// Book identifies one source document for a subject.
type Book struct {
	ID   string `json:"book_id"`
	Name string `json:"name"`
}

// UnmarshalJSON tolerates the field-name variants seen in real catalog
// files: book_id/id/bookId for the identifier and Name/name for the
// display name.
func (b *Book) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	b.ID = firstString(m, "book_id", "id", "bookId")
	b.Name = firstString(m, "Name", "name")
	if b.Name == "" && b.ID != "" {
		b.Name = "Book-" + b.ID
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
		}
	}
	return ""
}

// Catalog is the normalized index: boards → classes → subjects → books,
// plus topic names per subject.
type Catalog struct {
	books  map[string]map[string]map[string][]Book
	topics map[string]map[string]map[string]map[string]string
}

// Load reads and normalizes both index files. A missing or malformed
// file is logged and treated as empty data; Load never fails.
func Load(categoryPath, topicsPath string) *Catalog {
	c := &Catalog{
		books:  make(map[string]map[string]map[string][]Book),
		topics: make(map[string]map[string]map[string]map[string]string),
	}
	c.loadCategory(categoryPath)
	c.loadTopics(topicsPath)
	return c
}

type rawCategory struct {
	Boards map[string]struct {
		Classes map[string]struct {
			Subjects map[string]struct {
				Books json.RawMessage `json:"Books"`
			} `json:"Subjects"`
		} `json:"Classes"`
	} `json:"Boards"`
}

func (c *Catalog) loadCategory(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("category file %s not readable, continuing with empty catalog: %v", path, err)
		return
	}

	var raw rawCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("failed to decode %s, continuing with empty catalog: %v", path, err)
		return
	}

	for boardName, board := range raw.Boards {
		bkey := normKey(boardName)
		if c.books[bkey] == nil {
			c.books[bkey] = make(map[string]map[string][]Book)
		}
		for className, class := range board.Classes {
			ckey := strings.TrimSpace(className)
			if c.books[bkey][ckey] == nil {
				c.books[bkey][ckey] = make(map[string][]Book)
			}
			for subjName, subj := range class.Subjects {
				c.books[bkey][ckey][normKey(subjName)] = parseBooks(subj.Books)
			}
		}
	}
}

// parseBooks accepts the Books container as either a JSON object
// (decoded in file order so probe order is preserved) or an array.
func parseBooks(raw json.RawMessage) []Book {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '[' {
		var books []Book
		if err := json.Unmarshal(raw, &books); err != nil {
			logger.Warn("unparseable book list, skipping: %v", err)
			return nil
		}
		return keepIdentified(books)
	}

	// Object form: walk tokens so insertion order survives.
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil
	}
	var books []Book
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			break
		}
		var b Book
		if err := dec.Decode(&b); err != nil {
			logger.Warn("unparseable book entry, skipping: %v", err)
			break
		}
		books = append(books, b)
	}
	return keepIdentified(books)
}

// keepIdentified drops records that carry no usable book id.
func keepIdentified(books []Book) []Book {
	out := books[:0]
	for _, b := range books {
		if b.ID == "" {
			logger.Debug("skipping book entry without an id (%q)", b.Name)
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Catalog) loadTopics(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("topics file %s not readable, continuing with empty topics: %v", path, err)
		return
	}

	var raw map[string]map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("failed to decode %s, continuing with empty topics: %v", path, err)
		return
	}

	for boardName, classes := range raw {
		bkey := normKey(boardName)
		if c.topics[bkey] == nil {
			c.topics[bkey] = make(map[string]map[string]map[string]string)
		}
		for className, subjects := range classes {
			ckey := strings.TrimSpace(className)
			if c.topics[bkey][ckey] == nil {
				c.topics[bkey][ckey] = make(map[string]map[string]string)
			}
			for subjName, topics := range subjects {
				normalized := make(map[string]string, len(topics))
				for num, name := range topics {
					normalized[strings.TrimSpace(num)] = name
				}
				c.topics[bkey][ckey][normKey(subjName)] = normalized
			}
		}
	}
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Boards returns the normalized board names, sorted.
func (c *Catalog) Boards() []string {
	return sortedKeys(c.books)
}

// Classes returns the class keys available for a board, sorted.
func (c *Catalog) Classes(board string) []string {
	return sortedKeys(c.books[normKey(board)])
}

// Subjects returns the normalized subject names for a board and class,
// sorted.
func (c *Catalog) Subjects(board, class string) []string {
	return sortedKeys(c.books[normKey(board)][strings.TrimSpace(class)])
}

// Books returns the books registered for the coordinates, in catalog
// order.
func (c *Catalog) Books(board, class, subject string) []Book {
	return c.books[normKey(board)][strings.TrimSpace(class)][normKey(subject)]
}

// Topics returns the topic number → name map for the coordinates.
func (c *Catalog) Topics(board, class, subject string) map[string]string {
	return c.topics[normKey(board)][strings.TrimSpace(class)][normKey(subject)]
}

// TopicName resolves a topic number to its display name, if known.
func (c *Catalog) TopicName(board, class, subject, topicNum string) (string, bool) {
	name, ok := c.Topics(board, class, subject)[strings.TrimSpace(topicNum)]
	return name, ok
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
