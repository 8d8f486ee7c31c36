package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/cardsync"
)

// ReportToTableData converts a report into one row per panel. The columns
// depend on the operation the report describes.
func ReportToTableData(r *cardsync.Report, opts Options) Data {
	var data Data
	switch r.Operation {
	case cardsync.OperationSync:
		data = syncTable(r, opts)
	case cardsync.OperationAdd:
		data = addTable(r, opts)
	case cardsync.OperationClear:
		data = clearTable(r, opts)
	case cardsync.OperationOwner:
		data = ownerTable(r, opts)
	default:
		data = countTable(r, opts)
	}

	if opts.Wide {
		data.Headers = append(data.Headers, "Duration", "Error")
		for i, p := range r.Panels {
			data.Rows[i] = append(data.Rows[i], FormatDuration(p.Duration), dash(p.Error))
		}
		data.ColumnAlignment = append(data.ColumnAlignment, AlignRight, AlignLeft)
	}
	return data
}

func syncTable(r *cardsync.Report, opts Options) Data {
	headers := []string{"Panel", "Current", "Desired", "Deleted", "Added", "New Employees", "Users", "Cards", "Status"}
	rows := make([][]string, 0, len(r.Panels))
	for _, p := range r.Panels {
		current, deleted, added, created := "-", "-", "-", "-"
		if res := p.Sync; res != nil {
			if res.Plan != nil {
				current = strconv.Itoa(len(res.Plan.Current))
			}
			if res.DryRun && res.Plan != nil {
				deleted = strconv.Itoa(len(res.Plan.ToDelete))
				added = strconv.Itoa(len(res.Plan.ToAdd))
			} else {
				deleted = strconv.Itoa(len(res.Deleted))
				added = strconv.Itoa(res.Added())
			}
			created = dash(strings.Join(res.CreatedEmployees(), ", "))
		}
		rows = append(rows, []string{
			p.Panel,
			current,
			strconv.Itoa(r.Desired),
			deleted,
			added,
			created,
			counted(p, p.Users),
			counted(p, p.Cards),
			StatusCell(syncState(r, p), opts.NoColor),
		})
	}
	return Data{
		Headers: headers,
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight,
			AlignLeft, AlignRight, AlignRight, AlignLeft,
		},
	}
}

func addTable(r *cardsync.Report, opts Options) Data {
	headers := []string{"Panel", "Added", "New Employees", "Users", "Cards", "Status"}
	rows := make([][]string, 0, len(r.Panels))
	for _, p := range r.Panels {
		added := 0
		var created []string
		for _, a := range p.Assignments {
			added += len(a.Cards)
			if a.Created {
				created = append(created, a.EmployeeID)
			}
		}
		rows = append(rows, []string{
			p.Panel,
			strconv.Itoa(added),
			dash(strings.Join(created, ", ")),
			counted(p, p.Users),
			counted(p, p.Cards),
			StatusCell(plainState(p), opts.NoColor),
		})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

func clearTable(r *cardsync.Report, opts Options) Data {
	label := "Cleared"
	if r.DryRun {
		label = "Matching"
	}
	headers := []string{"Panel", label, "Users", "Cards", "Status"}
	rows := make([][]string, 0, len(r.Panels))
	for _, p := range r.Panels {
		state := plainState(p)
		if r.DryRun && state == StateOK {
			state = StateDryRun
		}
		rows = append(rows, []string{
			p.Panel,
			strconv.Itoa(p.Cleared),
			counted(p, p.Users),
			counted(p, p.Cards),
			StatusCell(state, opts.NoColor),
		})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft},
	}
}

func countTable(r *cardsync.Report, opts Options) Data {
	headers := []string{"Panel", "Users", "Cards", "Status"}
	rows := make([][]string, 0, len(r.Panels))
	for _, p := range r.Panels {
		rows = append(rows, []string{
			p.Panel,
			counted(p, p.Users),
			counted(p, p.Cards),
			StatusCell(plainState(p), opts.NoColor),
		})
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

func ownerTable(r *cardsync.Report, opts Options) Data {
	headers := []string{"Panel", "Owner", "Status"}
	rows := make([][]string, 0, len(r.Panels))
	for _, p := range r.Panels {
		rows = append(rows, []string{
			p.Panel,
			dash(p.Owner),
			StatusCell(plainState(p), opts.NoColor),
		})
	}
	return Data{
		Headers: headers,
		Rows:    rows,
	}
}

func syncState(r *cardsync.Report, p cardsync.PanelResult) State {
	switch {
	case p.Failed():
		return StateFailed
	case r.DryRun:
		return StateDryRun
	case p.Verified:
		return StateVerified
	default:
		return StateMismatch
	}
}

func plainState(p cardsync.PanelResult) State {
	if p.Failed() {
		return StateFailed
	}
	return StateOK
}

// counted hides counts that were never read because the unit failed.
func counted(p cardsync.PanelResult, n int) string {
	if p.Failed() && n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatDuration renders a duration rounded to milliseconds.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
