package review

import (
	"testing"

	"github.com/loorthu/dna/internal/timecode"
)

func ev(ts, speaker, text, version string) Event {
	return Event{
		Timestamp:  timecode.Parse(ts),
		Speaker:    speaker,
		Text:       text,
		VersionRaw: version,
		VersionID:  version,
	}
}

func knownSet(ids ...string) map[string]KnownVersion {
	m := make(map[string]KnownVersion, len(ids))
	for _, id := range ids {
		m[id] = KnownVersion{VersionID: id}
	}
	return m
}

func segment(events []Event, known map[string]KnownVersion, threshold int) []*Discussion {
	s := NewSegmenter(known, threshold)
	for _, e := range events {
		s.Feed(e)
	}
	return s.Finish()
}

func TestSegmenter_SingleDiscussion(t *testing.T) {
	events := []Event{
		ev("00:00:10", "Alice", "", "101"),
		ev("00:00:40", "Bob", "looks good", "101"),
	}

	discussions := segment(events, knownSet("101"), 30)
	if len(discussions) != 1 {
		t.Fatalf("expected 1 discussion, got %d", len(discussions))
	}

	d := discussions[0]
	if d.VersionID != "101" {
		t.Errorf("version = %q, want '101'", d.VersionID)
	}
	if len(d.Events) != 2 {
		t.Errorf("events = %d, want 2", len(d.Events))
	}
	if got := d.Start.String(); got != "00:00:10" {
		t.Errorf("start = %q, want 00:00:10", got)
	}
	if got := d.End.String(); got != "00:00:40" {
		t.Errorf("end = %q, want 00:00:40", got)
	}
	if len(d.References) != 0 {
		t.Errorf("references = %v, want none", d.References)
	}
}

func TestSegmenter_BriefMentionBecomesReference(t *testing.T) {
	// Version 201 interrupts 200 for five seconds, then 200 resumes.
	events := []Event{
		ev("00:00:00", "Alice", "starting 200", "200"),
		ev("00:00:10", "Bob", "compare with 201", "201"),
		ev("00:00:15", "Alice", "back on 200", "200"),
	}

	discussions := segment(events, knownSet("200"), 30)
	if len(discussions) != 1 {
		t.Fatalf("expected 1 discussion, got %d", len(discussions))
	}

	d := discussions[0]
	if d.VersionID != "200" {
		t.Errorf("version = %q, want '200'", d.VersionID)
	}
	if len(d.References) != 1 {
		t.Fatalf("references = %v, want exactly one", d.References)
	}
	if d.References[0].VersionID != "201" {
		t.Errorf("reference id = %q, want '201'", d.References[0].VersionID)
	}
	if got := d.References[0].Timestamp.String(); got != "00:00:10" {
		t.Errorf("reference timestamp = %q, want 00:00:10", got)
	}
	if len(d.Events) != 3 {
		t.Errorf("events = %d, want all 3 folded in", len(d.Events))
	}
}

func TestSegmenter_ShortKnownDiscussionMergesBack(t *testing.T) {
	// 300 is discussed for 60s, then 301 (also known) for only 10s, then a
	// switch back. 301 is below the threshold, so it demotes to a reference.
	events := []Event{
		ev("00:00:00", "Alice", "first look", "300"),
		ev("00:01:00", "Alice", "wrapping up", "300"),
		ev("00:01:10", "Bob", "quick aside", "301"),
		ev("00:01:20", "Alice", "back again", "300"),
	}

	discussions := segment(events, knownSet("300", "301"), 30)
	if len(discussions) != 1 {
		t.Fatalf("expected 1 discussion, got %d", len(discussions))
	}

	d := discussions[0]
	if d.VersionID != "300" {
		t.Errorf("version = %q, want '300'", d.VersionID)
	}
	if len(d.References) != 1 || d.References[0].VersionID != "301" {
		t.Fatalf("references = %v, want one entry for 301", d.References)
	}
	if got := d.End.String(); got != "00:01:20" {
		t.Errorf("end = %q, want 00:01:20 after merge", got)
	}
}

func TestSegmenter_ThresholdBoundary(t *testing.T) {
	// Exactly threshold seconds stands alone; one second less merges.
	build := func(spanSec string) []Event {
		return []Event{
			ev("00:00:00", "Alice", "main", "400"),
			ev("00:02:00", "Alice", "still main", "400"),
			ev("00:02:10", "Bob", "aside", "401"),
			ev(spanSec, "Bob", "aside end", "401"),
			ev("00:05:00", "Alice", "next", "402"),
			ev("00:05:40", "Alice", "next still", "402"),
		}
	}
	known := knownSet("400", "401", "402")

	// 30s span: standalone.
	discussions := segment(build("00:02:40"), known, 30)
	if len(discussions) != 3 {
		t.Fatalf("at boundary: expected 3 discussions, got %d", len(discussions))
	}

	// 29s span: merged as reference.
	discussions = segment(build("00:02:39"), known, 30)
	if len(discussions) != 2 {
		t.Fatalf("below boundary: expected 2 discussions, got %d", len(discussions))
	}
	if refs := discussions[0].References; len(refs) != 1 || refs[0].VersionID != "401" {
		t.Errorf("references = %v, want 401 on the first discussion", refs)
	}
}

func TestSegmenter_ContextualEventsRideAlong(t *testing.T) {
	events := []Event{
		ev("00:00:00", "Alice", "on 500", "500"),
		ev("00:00:05", "Bob", "general chatter", ""),
		{Speaker: "Carol", Text: "no timestamp", VersionID: "500"},
		ev("00:00:50", "Alice", "still 500", "500"),
	}

	discussions := segment(events, knownSet("500"), 30)
	if len(discussions) != 1 {
		t.Fatalf("expected 1 discussion, got %d", len(discussions))
	}
	if len(discussions[0].Events) != 4 {
		t.Errorf("events = %d, want 4 (contextual events folded in)", len(discussions[0].Events))
	}
	if got := discussions[0].End.String(); got != "00:00:50" {
		t.Errorf("end = %q, want 00:00:50", got)
	}
}

func TestSegmenter_NoSelfReference(t *testing.T) {
	events := []Event{
		ev("00:00:00", "Alice", "a", "600"),
		ev("00:01:00", "Alice", "b", "600"),
		ev("00:01:10", "Bob", "aside", "601"),
		ev("00:01:12", "Bob", "back", "600"),
		ev("00:01:14", "Bob", "aside again", "601"),
		ev("00:01:16", "Bob", "back again", "600"),
	}

	discussions := segment(events, knownSet("600"), 30)
	for _, d := range discussions {
		for _, ref := range d.References {
			if ref.VersionID == d.VersionID {
				t.Errorf("discussion %s references itself", d.VersionID)
			}
		}
	}
}

func TestSegmenter_ReferenceDedupKeepsFirstTimestamp(t *testing.T) {
	events := []Event{
		ev("00:00:00", "Alice", "a", "700"),
		ev("00:01:00", "Alice", "b", "700"),
		ev("00:01:10", "Bob", "first mention", "701"),
		ev("00:01:20", "Alice", "back", "700"),
		ev("00:01:25", "Bob", "second mention", "701"),
		ev("00:01:30", "Alice", "back again", "700"),
	}

	discussions := segment(events, knownSet("700"), 30)
	if len(discussions) != 1 {
		t.Fatalf("expected 1 discussion, got %d", len(discussions))
	}
	refs := discussions[0].References
	if len(refs) != 1 {
		t.Fatalf("references = %v, want deduplicated single entry", refs)
	}
	if got := refs[0].Timestamp.String(); got != "00:01:10" {
		t.Errorf("kept timestamp = %q, want first-seen 00:01:10", got)
	}
}

func TestSegmenter_MonotonicTimes(t *testing.T) {
	events := []Event{
		ev("00:00:00", "A", "x", "800"),
		ev("00:00:45", "A", "y", "800"),
		ev("00:00:50", "B", "z", "801"),
		ev("00:02:00", "B", "w", "801"),
		ev("00:02:05", "A", "v", "800"),
	}

	for _, d := range segment(events, knownSet("800", "801"), 30) {
		if d.End.Before(d.Start) {
			t.Errorf("discussion %s: end %s before start %s", d.VersionID, d.End, d.Start)
		}
	}
}

func TestSegmenter_UnknownLongDiscussionStandsAloneUnflagged(t *testing.T) {
	// A version absent from the known set, discussed for 60 seconds with a
	// known discussion before it: stays standalone, marked not known.
	events := []Event{
		ev("00:00:00", "A", "main", "900"),
		ev("00:01:00", "A", "main still", "900"),
		ev("00:01:10", "B", "mystery", "999"),
		ev("00:02:10", "B", "mystery still", "999"),
	}

	s := NewSegmenter(knownSet("900"), 30)
	for _, e := range events {
		s.Feed(e)
	}
	discussions := s.Finish()

	// 999 ran past the threshold, so it stands alone rather than demoting to
	// a reference, and being unknown it will never surface as a row.
	if len(discussions) != 2 {
		t.Fatalf("expected 2 discussions, got %d", len(discussions))
	}
	if discussions[1].VersionID != "999" || discussions[1].IsKnown {
		t.Errorf("discussion[1] = %+v, want unknown 999", discussions[1])
	}
	if s.DroppedUnknown() != 1 {
		t.Errorf("DroppedUnknown = %d, want 1", s.DroppedUnknown())
	}
}

func TestSegmenter_LeadingUnknownVersionSkipped(t *testing.T) {
	// Mentions before any known version neither open a discussion nor crash.
	events := []Event{
		ev("00:00:00", "A", "warmup", "111"),
		ev("00:00:05", "A", "start", "110"),
		ev("00:00:45", "A", "more", "110"),
	}

	discussions := segment(events, knownSet("110"), 30)
	if len(discussions) != 1 || discussions[0].VersionID != "110" {
		t.Fatalf("discussions = %+v, want only 110", discussions)
	}
}
