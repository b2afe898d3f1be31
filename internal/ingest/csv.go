// Package ingest loads the two tabular inputs of a reconciliation run: the
// meeting transcript CSV and the production-tracking (ShotGrid-style) export.
// Both are header-keyed; the column carrying the version identifier is
// configurable and run through the shared extractor.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/loorthu/dna/internal/review"
	"github.com/loorthu/dna/internal/timecode"
)

// Transcript column names fixed by the upstream extraction tooling.
const (
	colTimestamp = "timestamp"
	colSpeaker   = "speaker_name"
	colText      = "transcript_text"
)

// LoadKnownVersions reads the production-tracking export and returns the
// known-version set keyed by normalized version id. Rows whose version field
// does not extract are skipped; notes and shot columns accept either casing.
func LoadKnownVersions(path, versionColumn string, extractor *review.Extractor) (map[string]review.KnownVersion, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	known := make(map[string]review.KnownVersion)
	for _, row := range rows {
		raw, ok := row[versionColumn]
		if !ok {
			continue
		}
		id := extractor.Extract(raw)
		if id == "" {
			continue
		}

		known[id] = review.KnownVersion{
			VersionID: id,
			Shot:      firstOf(row, "shot", "Shot"),
			Notes:     firstOf(row, "notes", "Notes"),
			Raw:       raw,
		}
	}

	return known, nil
}

// LoadTranscript reads the transcript CSV and returns the chronological event
// stream. Every row becomes an event; version extraction failures leave the
// event's VersionID empty rather than dropping the row.
func LoadTranscript(path, versionColumn string, extractor *review.Extractor) ([]review.Event, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	events := make([]review.Event, 0, len(rows))
	for _, row := range rows {
		raw := row[versionColumn]
		events = append(events, review.Event{
			Timestamp:  timecode.Parse(row[colTimestamp]),
			Speaker:    row[colSpeaker],
			Text:       row[colText],
			VersionRaw: raw,
			VersionID:  extractor.Extract(raw),
		})
	}

	return events, nil
}

// readRecords reads a CSV file into header-keyed rows. Rows shorter than the
// header are padded so missing trailing fields read as empty.
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}
