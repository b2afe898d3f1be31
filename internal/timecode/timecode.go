package timecode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timecode is an offset from the start of a recording. The zero value is
// invalid, which stands in for timestamps that were absent or unparseable.
type Timecode struct {
	Duration time.Duration
	Valid    bool
}

// Parse parses an HH:MM:SS timestamp into a Timecode. Anything that is not
// exactly three colon-separated integers yields an invalid Timecode; a
// malformed timestamp is treated the same as a missing one.
func Parse(s string) Timecode {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Timecode{}
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Timecode{}
		}
		fields[i] = n
	}

	d := time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second
	return Timecode{Duration: d, Valid: true}
}

// Sub returns t - other in seconds, or 0 when either side is invalid.
// Callers that care about the distinction must check Valid first.
func (t Timecode) Sub(other Timecode) float64 {
	if !t.Valid || !other.Valid {
		return 0.0
	}
	return (t.Duration - other.Duration).Seconds()
}

// Before reports whether t is strictly earlier than other. An invalid
// Timecode is never before anything.
func (t Timecode) Before(other Timecode) bool {
	return t.Valid && other.Valid && t.Duration < other.Duration
}

// After reports whether t is strictly later than other.
func (t Timecode) After(other Timecode) bool {
	return t.Valid && other.Valid && t.Duration > other.Duration
}

// String formats the Timecode as HH:MM:SS, or "" when invalid.
func (t Timecode) String() string {
	if !t.Valid {
		return ""
	}
	total := int(t.Duration / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
