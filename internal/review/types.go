package review

import "github.com/loorthu/dna/internal/timecode"

// Event is one observed moment of the meeting: a transcript row, or a
// version sighting with no speech attached (e.g. a version label read off the
// shared screen).
type Event struct {
	Timestamp  timecode.Timecode
	Speaker    string
	Text       string
	VersionRaw string // raw field the version was extracted from
	VersionID  string // normalized id, "" when extraction failed
}

// KnownVersion is one row of the production-tracking export.
type KnownVersion struct {
	VersionID string
	Shot      string
	Notes     string
	Raw       string // original unnormalized version field, kept for display
}

// Reference records a passing mention of another version during a discussion.
type Reference struct {
	VersionID string
	Timestamp timecode.Timecode
}

// Discussion is a contiguous span of events primarily about one version,
// possibly carrying brief references to neighboring versions that were folded
// into it.
type Discussion struct {
	VersionID  string
	Start      timecode.Timecode
	End        timecode.Timecode
	Events     []Event
	References []Reference
	IsKnown    bool
}

// OutputRow is the final reconciled record; exactly one exists per known
// version. Column names mirror the downstream CSV contract.
type OutputRow struct {
	Timestamp         string
	VersionID         string
	Conversation      string
	SGSummary         string
	ReferenceVersions string
}
