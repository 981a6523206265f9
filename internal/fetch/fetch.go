// Package fetch resolves curriculum coordinates to raw topic text by
// probing the books registered for a subject and extracting the marked
// topic span from the first book that contains it.
package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/focal-dev/focal/internal/catalog"
	"github.com/focal-dev/focal/internal/logger"
	"github.com/focal-dev/focal/internal/marker"
	"github.com/focal-dev/focal/internal/subtopic"
)

// ErrNoBooks reports that the catalog has no books registered for the
// requested coordinates.
var ErrNoBooks = errors.New("no books registered for subject")

// Topic is an extracted topic with its resolved display name and the
// book it came from.
type Topic struct {
	ID   string
	Name string
	Book string
	Text string

	// Filtered reports whether a requested subtopic selection was
	// actually applied. It stays false when no subtopics were asked
	// for, and also when the selection matched nothing and the full
	// topic text was kept instead.
	Filtered bool
}

// Fetcher reads book text files from a data directory and extracts
// topics from them.
type Fetcher struct {
	catalog *catalog.Catalog
	dataDir string
}

func New(cat *catalog.Catalog, dataDir string) *Fetcher {
	return &Fetcher{catalog: cat, dataDir: dataDir}
}

// Fetch extracts topic topicID for the given coordinates, probing each
// registered book in catalog order and keeping the first hit. When
// subtopicIDs is non-empty the topic text is narrowed to those
// sections; a selection that matches nothing falls back to the full
// topic text with Filtered left false.
func (f *Fetcher) Fetch(board, class, subject, topicID string, subtopicIDs []string) (Topic, error) {
	topicID = strings.TrimSpace(topicID)
	books := f.catalog.Books(board, class, subject)
	if len(books) == 0 {
		return Topic{}, fmt.Errorf("%w: board=%q class=%q subject=%q", ErrNoBooks, board, class, subject)
	}

	var checked []string
	for _, book := range books {
		checked = append(checked, book.ID)
		text, err := f.readBook(book.ID)
		if err != nil {
			logger.Debug("book %s unreadable, trying next: %v", book.ID, err)
			continue
		}
		span, err := marker.Extract(text, topicID)
		if err != nil {
			if errors.Is(err, marker.ErrNotFound) {
				logger.Debug("topic %s not marked in book %s, trying next", topicID, book.ID)
				continue
			}
			return Topic{}, fmt.Errorf("extract topic %s from book %s: %w", topicID, book.ID, err)
		}

		topic := Topic{
			ID:   topicID,
			Name: f.topicName(board, class, subject, topicID),
			Book: book.Name,
			Text: span,
		}
		if len(subtopicIDs) > 0 {
			filtered, ok := subtopic.Filter(span, subtopicIDs)
			if !ok {
				logger.Warn("subtopic selection %v matched nothing in topic %s, keeping full topic", subtopicIDs, topicID)
			}
			topic.Text = filtered
			topic.Filtered = ok
		}
		return topic, nil
	}

	return Topic{}, fmt.Errorf("topic %s not found in any book (checked %s)", topicID, strings.Join(checked, ", "))
}

// readBook loads <dataDir>/<bookID>.txt. The id is reduced to its base
// name so catalog data cannot point outside the data directory.
func (f *Fetcher) readBook(bookID string) (string, error) {
	name := filepath.Base(bookID) + ".txt"
	data, err := os.ReadFile(filepath.Join(f.dataDir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *Fetcher) topicName(board, class, subject, topicID string) string {
	if name, ok := f.catalog.TopicName(board, class, subject, topicID); ok {
		return name
	}
	return "Topic " + topicID
}
