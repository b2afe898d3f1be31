package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/loorthu/dna/internal/review"
	"github.com/loorthu/dna/internal/store"
)

const conversationPreviewLen = 60

// RenderRuns renders the stored run list as a terminal table.
func RenderRuns(runs []store.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.SGFile,
			r.TranscriptFile,
			strconv.Itoa(r.RowCount),
		})
	}
	return renderTable(
		[]string{"ID", "Created", "SG Export", "Transcript", "Rows"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

// RenderRows renders stored output rows as a terminal table, with the
// conversation column truncated to a preview.
func RenderRows(rows []review.OutputRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Timestamp,
			r.VersionID,
			preview(r.Conversation),
			preview(r.SGSummary),
			r.ReferenceVersions,
		})
	}
	return renderTable(
		[]string{"Timestamp", "Version", "Conversation", "SG Notes", "References"},
		out,
		nil,
	)
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " / ")
	if len(s) > conversationPreviewLen {
		return s[:conversationPreviewLen] + "..."
	}
	return s
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
