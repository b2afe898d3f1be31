// Package report writes reconciliation output: the combined CSV handed to
// downstream tooling, and terminal tables/summaries for humans.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/loorthu/dna/internal/review"
	"github.com/loorthu/dna/internal/summarize"
)

// baseHeader is the downstream contract; consumers of the combined CSV key
// off these column names in this order.
var baseHeader = []string{"timestamp", "version_id", "conversation", "sg_summary", "reference_versions"}

// WriteCSV writes the combined output CSV. When summaries are present, one
// extra column per provider (named summary_<provider>) is appended after the
// contract columns.
func WriteCSV(path string, rows []review.OutputRow, providerNames []string, summaries summarize.Summaries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{}, baseHeader...)
	for _, name := range providerNames {
		header = append(header, "summary_"+name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		record := []string{row.Timestamp, row.VersionID, row.Conversation, row.SGSummary, row.ReferenceVersions}
		for _, name := range providerNames {
			record = append(record, summaries[i][name])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
