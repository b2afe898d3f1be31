package review

import (
	"sort"
	"strings"

	"github.com/loorthu/dna/internal/timecode"
)

// conversationPlaceholder marks moments where a speaker was active but no
// words were captured by transcription or OCR.
const conversationPlaceholder = "[conversation occurred]"

// FormatConversation renders a discussion's events as one readable block,
// one "speaker: text" line per event, in timestamp order. Events with a
// speaker but no captured text get an explicit placeholder line; events with
// neither are dropped. Sorting is stable, so unanchored events keep their
// input position relative to their neighbors.
func FormatConversation(events []Event) string {
	if len(events) == 0 {
		return ""
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var lines []string
	for _, ev := range sorted {
		text := strings.TrimSpace(ev.Text)
		switch {
		case text != "":
			lines = append(lines, ev.Speaker+": "+text)
		case ev.Speaker != "":
			lines = append(lines, ev.Speaker+": "+conversationPlaceholder)
		}
	}

	return strings.Join(lines, "\n")
}

// EarliestTimestamp returns the earliest valid timestamp among the events,
// formatted HH:MM:SS, or "" when no event carries one.
func EarliestTimestamp(events []Event) string {
	var earliest timecode.Timecode
	for _, ev := range events {
		if !ev.Timestamp.Valid {
			continue
		}
		if !earliest.Valid || ev.Timestamp.Before(earliest) {
			earliest = ev.Timestamp
		}
	}
	return earliest.String()
}
