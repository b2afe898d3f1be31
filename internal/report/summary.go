package report

import (
	"log/slog"

	"github.com/loorthu/dna/internal/review"
)

// Summary holds the statistics of one reconciliation run.
type Summary struct {
	TotalRows      int
	WithTranscript int
	WithReferences int
	Undiscussed    int
	DroppedUnknown int
	Orphaned       int
}

// Summarize computes run statistics from a reconciliation result.
func Summarize(res review.Result) Summary {
	s := Summary{
		TotalRows:      len(res.Rows),
		Undiscussed:    res.Residual,
		DroppedUnknown: res.DroppedUnknown,
		Orphaned:       res.OrphanedLeading,
	}
	for _, row := range res.Rows {
		if row.Conversation != "" {
			s.WithTranscript++
		}
		if row.ReferenceVersions != "" {
			s.WithReferences++
		}
	}
	return s
}

// Log writes the summary through the structured logger.
func (s Summary) Log(thresholdSec int) {
	slog.Info("reconciliation complete",
		"rows", s.TotalRows,
		"with_transcript", s.WithTranscript,
		"with_references", s.WithReferences,
		"undiscussed", s.Undiscussed,
		"threshold_sec", thresholdSec)

	if s.DroppedUnknown > 0 {
		slog.Warn("discussions of untracked versions were excluded", "count", s.DroppedUnknown)
	}
	if s.Orphaned > 0 {
		slog.Warn("leading transcript events had no discussion to join", "events", s.Orphaned)
	}
}
