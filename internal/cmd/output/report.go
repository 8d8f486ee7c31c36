package output

import (
	"io"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/cmd/table"
)

// FormatReport writes a report in the given format. Table formats render one
// row per panel; structured formats encode the report itself.
func FormatReport(w io.Writer, report *cardsync.Report, format Format, noColor bool) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, FormatWide, "":
		data = table.ReportToTableData(report, table.Options{
			Wide:    format == FormatWide,
			NoColor: noColor,
		})
	default:
		data = report
	}

	return formatter.Format(w, data)
}
