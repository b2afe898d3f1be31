package review

import (
	"log/slog"

	"github.com/loorthu/dna/internal/timecode"
)

// Segmenter partitions a chronologically ordered event stream into per-version
// discussions, demoting spans shorter than the reference threshold to
// reference entries on the discussion that preceded them.
//
// The state is explicit: either no discussion is active, or exactly one is.
// Every version switch seeds a fresh provisional discussion; whether it stands
// alone or collapses into a reference is decided at the next switch (or at end
// of stream) purely from its observed duration. Events must be fed in
// timestamp order; the result is deterministic for a given ordering.
type Segmenter struct {
	known     map[string]KnownVersion
	threshold float64 // seconds

	active *Discussion
	done   []*Discussion

	droppedUnknown int
}

// NewSegmenter creates a segmenter over the given known-version set.
// thresholdSec is the reference threshold in seconds.
func NewSegmenter(known map[string]KnownVersion, thresholdSec int) *Segmenter {
	return &Segmenter{
		known:     known,
		threshold: float64(thresholdSec),
	}
}

// Feed advances the state machine by one event.
func (s *Segmenter) Feed(ev Event) {
	// No version signal or no anchor in time: contextual dialogue. It rides
	// along with whatever discussion is active; before the first discussion
	// the reconciler's pre-discussion pool picks it up instead.
	if ev.VersionID == "" || !ev.Timestamp.Valid {
		if s.active != nil {
			s.active.Events = append(s.active.Events, ev)
		}
		return
	}

	if s.active == nil {
		// Only a known version opens the first discussion; earlier foreign
		// mentions stay in the pre-discussion pool.
		if _, ok := s.known[ev.VersionID]; ok {
			s.active = s.newDiscussion(ev)
		}
		return
	}

	if ev.VersionID == s.active.VersionID {
		s.active.Events = append(s.active.Events, ev)
		s.active.End = ev.Timestamp
		return
	}

	// A switch: settle the active discussion, then seed a new one with this
	// event. Unknown versions are seeded too; the duration rule decides
	// their fate, not the known set.
	s.resolveActive()
	s.active = s.newDiscussion(ev)
}

// resolveActive settles the active discussion. A span shorter than the
// threshold, with a finalized discussion to lean on, collapses into that
// discussion as a reference; anything else is finalized on its own.
func (s *Segmenter) resolveActive() {
	if s.active == nil {
		return
	}

	duration := s.active.End.Sub(s.active.Start)
	if duration < s.threshold && len(s.done) > 0 {
		prev := s.done[len(s.done)-1]
		prev.addReference(s.active.VersionID, s.active.Start)
		prev.Events = append(prev.Events, s.active.Events...)
		if s.active.End.After(prev.End) {
			prev.End = s.active.End
		}
	} else {
		s.done = append(s.done, s.active)
		if !s.active.IsKnown {
			s.droppedUnknown++
			slog.Debug("standalone discussion of unrecognized version",
				"version", s.active.VersionID,
				"duration_sec", duration)
		}
	}

	s.active = nil
}

// Finish settles the in-flight discussion and returns the full discussion
// list in chronological order. The segmenter must not be fed afterwards.
func (s *Segmenter) Finish() []*Discussion {
	s.resolveActive()
	return s.done
}

// DroppedUnknown reports how many standalone discussions concerned versions
// absent from the known set. Those never surface as output rows; the count
// lets callers flag the loss.
func (s *Segmenter) DroppedUnknown() int {
	return s.droppedUnknown
}

func (s *Segmenter) newDiscussion(ev Event) *Discussion {
	_, known := s.known[ev.VersionID]
	return &Discussion{
		VersionID: ev.VersionID,
		Start:     ev.Timestamp,
		End:       ev.Timestamp,
		Events:    []Event{ev},
		IsKnown:   known,
	}
}

// addReference records a mention of another version, keeping only the
// first-seen timestamp per id and never the discussion's own id.
func (d *Discussion) addReference(versionID string, ts timecode.Timecode) {
	if versionID == d.VersionID {
		return
	}
	for _, ref := range d.References {
		if ref.VersionID == versionID {
			return
		}
	}
	d.References = append(d.References, Reference{VersionID: versionID, Timestamp: ts})
}
