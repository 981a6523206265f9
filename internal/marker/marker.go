// Package marker tokenizes raw book text into topic markers and extracts
// the text span belonging to a single topic.
//
// Two marker grammars are recognized, case-insensitively:
//
//	##8##        fenced numeric marker
//	UNIT-8       unit marker (dash or whitespace after UNIT)
//
// Marker ids are compared as exact strings after trimming: "08" and "8"
// are distinct ids.
package marker

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFound is returned when no marker with the requested id exists.
var ErrNotFound = errors.New("topic marker not found")

// Kind identifies which grammar produced a marker.
type Kind int

const (
	// HashKind is a fenced numeric marker: ##8##
	HashKind Kind = iota
	// UnitKind is a unit marker: UNIT-8, Unit 8
	UnitKind
)

// String returns a short name for the marker kind.
func (k Kind) String() string {
	switch k {
	case HashKind:
		return "hash"
	case UnitKind:
		return "unit"
	default:
		return "unknown"
	}
}

// Marker is a topic delimiter found in raw text.
type Marker struct {
	Kind Kind
	ID   string
	Pos  int // byte offset of the marker's first character
	End  int // byte offset just past the marker's last character
}

var (
	hashRe = regexp.MustCompile(`##\s*(\d+)\s*##`)
	unitRe = regexp.MustCompile(`(?i)\bUNIT(?:\s*-\s*|\s+)(\d+)`)
)

// Lex scans text left to right and returns all markers of both grammars,
// ordered by position.
func Lex(text string) []Marker {
	var markers []Marker

	for _, m := range hashRe.FindAllStringSubmatchIndex(text, -1) {
		markers = append(markers, Marker{
			Kind: HashKind,
			ID:   strings.TrimSpace(text[m[2]:m[3]]),
			Pos:  m[0],
			End:  m[1],
		})
	}
	for _, m := range unitRe.FindAllStringSubmatchIndex(text, -1) {
		markers = append(markers, Marker{
			Kind: UnitKind,
			ID:   strings.TrimSpace(text[m[2]:m[3]]),
			Pos:  m[0],
			End:  m[1],
		})
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Pos < markers[j].Pos
	})

	return markers
}

// Extract returns the text span for the topic with the given id.
//
// The span begins immediately after the first marker whose id equals
// topicID and ends immediately before the next marker of either grammar,
// or at end of text if none follows. Returns ErrNotFound when no marker
// matches.
func Extract(text, topicID string) (string, error) {
	want := strings.TrimSpace(topicID)
	markers := Lex(text)

	for i, m := range markers {
		if m.ID != want {
			continue
		}
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].Pos
		}
		return strings.TrimSpace(text[m.End:end]), nil
	}

	return "", ErrNotFound
}
