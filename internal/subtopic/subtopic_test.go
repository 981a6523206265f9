package subtopic

import (
	"strings"
	"testing"
)

func TestSegment_NumberedHeadings(t *testing.T) {
	text := "8.1 Intro\ntext\n8.2 Details\nmore"
	subs := Segment(text)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subtopics, got %d: %v", len(subs), subs)
	}
	if subs[0].ID != "8.1" || subs[0].Name != "Intro" {
		t.Errorf("first subtopic = %+v, want id 8.1 name Intro", subs[0])
	}
	if subs[1].ID != "8.2" || subs[1].Name != "Details" {
		t.Errorf("second subtopic = %+v, want id 8.2 name Details", subs[1])
	}
	if subs[0].Start != 0 {
		t.Errorf("first subtopic start = %d, want 0", subs[0].Start)
	}
	if want := strings.Index(text, "8.2"); subs[1].Start != want {
		t.Errorf("second subtopic start = %d, want %d", subs[1].Start, want)
	}
}

func TestSegment_NormalizesIDWhitespace(t *testing.T) {
	subs := Segment("8 . 1 Spaced Heading\nbody")
	if len(subs) != 1 {
		t.Fatalf("expected 1 subtopic, got %d", len(subs))
	}
	if subs[0].ID != "8.1" {
		t.Errorf("id = %q, want 8.1", subs[0].ID)
	}
}

func TestSegment_MarkerGrammarPass(t *testing.T) {
	text := "UNIT-1 first part\nsome text\nUNIT-2 second part"
	subs := Segment(text)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subtopics, got %d: %v", len(subs), subs)
	}
	if subs[0].ID != "1" || subs[1].ID != "2" {
		t.Errorf("ids = %q, %q, want 1, 2", subs[0].ID, subs[1].ID)
	}
}

func TestSegment_DedupKeepsFirstOccurrence(t *testing.T) {
	text := "1.1 First\nbody\n1.1 Repeated\nmore"
	subs := Segment(text)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subtopic after dedup, got %d", len(subs))
	}
	if subs[0].Name != "First" {
		t.Errorf("kept %+v, want first occurrence", subs[0])
	}
}

func TestSegment_Unstructured(t *testing.T) {
	subs := Segment("A chapter of plain prose with no headings at all.")
	if len(subs) != 1 {
		t.Fatalf("expected the synthetic subtopic, got %d", len(subs))
	}
	if subs[0].ID != AllID || subs[0].Name != "Full Chapter" || subs[0].Start != 0 {
		t.Errorf("synthetic subtopic = %+v", subs[0])
	}
}

func TestFilter_SelectsSpan(t *testing.T) {
	text := "8.1 Intro\nalpha\n8.2 Details\nbeta\n8.3 Summary\ngamma"

	got, ok := Filter(text, []string{"8.2"})
	if !ok {
		t.Fatal("expected a successful filter")
	}
	if !strings.Contains(got, "--- Subtopic 8.2 ---") {
		t.Errorf("missing label: %q", got)
	}
	if !strings.Contains(got, "beta") {
		t.Errorf("missing span body: %q", got)
	}
	if strings.Contains(got, "alpha") || strings.Contains(got, "gamma") {
		t.Errorf("span leaked neighboring subtopics: %q", got)
	}
}

func TestFilter_LastSubtopicRunsToEnd(t *testing.T) {
	text := "8.1 Intro\nalpha\n8.2 Details\nbeta ends here"
	got, ok := Filter(text, []string{"8.2"})
	if !ok {
		t.Fatal("expected a successful filter")
	}
	if !strings.Contains(got, "beta ends here") {
		t.Errorf("last span truncated: %q", got)
	}
}

func TestFilter_MultipleIDs(t *testing.T) {
	text := "8.1 Intro\nalpha\n8.2 Details\nbeta\n8.3 Summary\ngamma"
	got, ok := Filter(text, []string{"8.1", "8.3"})
	if !ok {
		t.Fatal("expected a successful filter")
	}
	first := strings.Index(got, "--- Subtopic 8.1 ---")
	second := strings.Index(got, "--- Subtopic 8.3 ---")
	if first < 0 || second < 0 || second < first {
		t.Errorf("expected labeled blocks in request order: %q", got)
	}
}

func TestFilter_NoMatchFallsBack(t *testing.T) {
	text := "8.1 Intro\nalpha\n8.2 Details\nbeta"
	got, ok := Filter(text, []string{"nonexistent-id"})
	if ok {
		t.Error("expected degraded status for unmatched filter")
	}
	if got != text {
		t.Errorf("expected full text fallback, got %q", got)
	}
}

func TestFilter_AllSelectsEverything(t *testing.T) {
	text := "plain prose, no structure"
	got, ok := Filter(text, []string{AllID})
	if !ok {
		t.Fatal("expected a successful filter")
	}
	if !strings.Contains(got, "--- Subtopic all ---") || !strings.Contains(got, text) {
		t.Errorf("got %q", got)
	}
}
