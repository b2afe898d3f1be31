package review

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	Rows []OutputRow

	// Discussions holds the raw segmentation output, in order, including
	// standalone discussions of versions absent from the known set (those do
	// not surface as rows).
	Discussions []*Discussion

	// DroppedUnknown counts standalone discussions excluded from the output
	// because their version is not in the known set.
	DroppedUnknown int

	// OrphanedLeading counts leading events that never found a home because
	// no known version was ever discussed.
	OrphanedLeading int

	// Residual counts known versions that never appeared in the transcript.
	Residual int
}

// Reconcile runs the full pipeline over a chronologically ordered event
// stream: segmentation, known-version matching, pre-discussion pooling,
// residual fill-in, and row building. It guarantees exactly one output row
// per known version.
func Reconcile(events []Event, known map[string]KnownVersion, thresholdSec int) Result {
	seg := NewSegmenter(known, thresholdSec)
	for _, ev := range events {
		seg.Feed(ev)
	}
	discussions := seg.Finish()

	pool := preDiscussionPool(events, known)

	var res Result
	res.Discussions = discussions
	res.DroppedUnknown = seg.DroppedUnknown()

	// A version revisited at length later in the meeting produces a second
	// discussion with the same id; coalesce so each known version gets
	// exactly one row, with all of its events and references combined.
	merged := coalesceByVersion(discussions, known)

	processed := make(map[string]bool, len(merged))
	for _, d := range merged {
		processed[d.VersionID] = true

		rowEvents := d.Events
		if len(res.Rows) == 0 && len(pool) > 0 {
			// Early chatter before the first identifiable version belongs to
			// the first discussion on record.
			rowEvents = append(append([]Event{}, pool...), d.Events...)
			pool = nil
		}

		res.Rows = append(res.Rows, OutputRow{
			Timestamp:         EarliestTimestamp(rowEvents),
			VersionID:         d.VersionID,
			Conversation:      FormatConversation(rowEvents),
			SGSummary:         known[d.VersionID].Notes,
			ReferenceVersions: serializeReferences(d.References),
		})
	}

	if len(pool) > 0 {
		// No known discussion ever absorbed the leading events; they have no
		// output row to live on. Input-quality issue, not a fault.
		res.OrphanedLeading = len(pool)
		slog.Warn("leading transcript events matched no known version", "events", len(pool))
	}

	for _, id := range residualVersions(known, processed) {
		res.Rows = append(res.Rows, OutputRow{
			VersionID: id,
			SGSummary: known[id].Notes,
		})
		res.Residual++
	}

	return res
}

// coalesceByVersion folds repeated discussions of the same known version into
// the first one, preserving first-appearance order. Unknown versions are
// filtered out here; their content has no output row to live on.
func coalesceByVersion(discussions []*Discussion, known map[string]KnownVersion) []*Discussion {
	var out []*Discussion
	byID := make(map[string]*Discussion)

	for _, d := range discussions {
		if _, ok := known[d.VersionID]; !ok {
			continue
		}
		if first, seen := byID[d.VersionID]; seen {
			first.Events = append(first.Events, d.Events...)
			for _, ref := range d.References {
				first.addReference(ref.VersionID, ref.Timestamp)
			}
			if d.End.After(first.End) {
				first.End = d.End
			}
			continue
		}

		c := &Discussion{
			VersionID:  d.VersionID,
			Start:      d.Start,
			End:        d.End,
			Events:     append([]Event{}, d.Events...),
			References: append([]Reference{}, d.References...),
			IsKnown:    true,
		}
		byID[d.VersionID] = c
		out = append(out, c)
	}

	return out
}

// preDiscussionPool collects the events preceding the first mention of a
// known version. It stops at that first mention; if none exists the whole
// stream is returned.
func preDiscussionPool(events []Event, known map[string]KnownVersion) []Event {
	for i, ev := range events {
		if ev.VersionID == "" {
			continue
		}
		if _, ok := known[ev.VersionID]; ok {
			return events[:i]
		}
	}
	return events
}

// residualVersions returns the known versions absent from the transcript in
// deterministic order: numeric ids ascending by value, then the rest
// lexicographically.
func residualVersions(known map[string]KnownVersion, processed map[string]bool) []string {
	var remaining []string
	for id := range known {
		if !processed[id] {
			remaining = append(remaining, id)
		}
	}

	sort.Slice(remaining, func(i, j int) bool {
		a, aErr := strconv.Atoi(remaining[i])
		b, bErr := strconv.Atoi(remaining[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return remaining[i] < remaining[j]
		}
	})

	return remaining
}

func serializeReferences(refs []Reference) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, ref.VersionID+":"+ref.Timestamp.String())
	}
	return strings.Join(parts, ",")
}
