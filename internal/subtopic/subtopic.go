// Package subtopic segments a topic's text into named subtopic spans and
// filters the text down to a requested subset of them.
package subtopic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/focal-dev/focal/internal/marker"
)

// AllID is the synthetic subtopic id covering the entire topic text.
const AllID = "all"

// Subtopic is a named span start within a topic's text.
type Subtopic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start int    `json:"start"`
}

// headingRe matches numbered section headings at line starts, e.g.
// "8.1 Types of Chemical Reactions". The numeric id may contain internal
// whitespace around the dots ("8 . 1"), which is normalized away.
var headingRe = regexp.MustCompile(`(?m)^[ \t]*(\d+(?:[ \t]*\.[ \t]*\d+)+)[ \t]+(\S.*)$`)

var idSpaceRe = regexp.MustCompile(`[ \t]+`)

// Segment returns the subtopics found in topicText, ordered by start
// offset and deduplicated by id (first occurrence wins).
//
// Two independent passes run over the text: numbered-heading detection
// and the marker grammars from package marker. If neither pass finds
// anything, a single synthetic "Full Chapter" subtopic covering the whole
// text is returned.
func Segment(topicText string) []Subtopic {
	var subs []Subtopic

	for _, m := range headingRe.FindAllStringSubmatchIndex(topicText, -1) {
		id := idSpaceRe.ReplaceAllString(topicText[m[2]:m[3]], "")
		name := strings.TrimSpace(topicText[m[4]:m[5]])
		subs = append(subs, Subtopic{ID: id, Name: name, Start: m[0]})
	}

	for _, m := range marker.Lex(topicText) {
		subs = append(subs, Subtopic{
			ID:    m.ID,
			Name:  fmt.Sprintf("Section %s", m.ID),
			Start: m.Pos,
		})
	}

	if len(subs) == 0 {
		return []Subtopic{{ID: AllID, Name: "Full Chapter", Start: 0}}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Start < subs[j].Start
	})

	seen := make(map[string]bool, len(subs))
	out := subs[:0]
	for _, s := range subs {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}

	return out
}

// Filter returns the portions of topicText belonging to the requested
// subtopic ids, each prefixed with a "--- Subtopic <id> ---" label. A
// requested id of AllID selects the entire text.
//
// The second return value reports whether filtering actually matched
// anything: when no requested id matches (or the filtered result is
// whitespace-only) the full, unfiltered topicText is returned with false
// so callers can log the degraded case.
func Filter(topicText string, subtopicIDs []string) (string, bool) {
	subs := Segment(topicText)
	index := make(map[string]int, len(subs))
	for i, s := range subs {
		index[s.ID] = i
	}

	var b strings.Builder
	for _, raw := range subtopicIDs {
		id := strings.TrimSpace(raw)

		var span string
		switch {
		case id == AllID:
			span = topicText
		default:
			i, ok := index[id]
			if !ok {
				continue
			}
			end := len(topicText)
			if i+1 < len(subs) {
				end = subs[i+1].Start
			}
			span = topicText[subs[i].Start:end]
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Subtopic %s ---\n%s", id, span)
	}

	result := b.String()
	if strings.TrimSpace(result) == "" {
		return topicText, false
	}
	return result, true
}
