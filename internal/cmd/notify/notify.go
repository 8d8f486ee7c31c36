// Package notify turns run reports into alerts on the terminal.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/cmd/alerts"
	"github.com/agentstation/cardsync/internal/cmd/output"
)

// Notifier writes alerts describing how a run went.
type Notifier struct {
	alertWriter alerts.Writer
	config      Config
}

// Config controls notification behavior.
type Config struct {
	OutputFormat string    // "table", "json", "yaml"
	Quiet        bool      // Only errors and warnings are written
	AlertWriter  io.Writer // Where to write alerts (default: stderr)
	UseColor     bool      // Whether to use colored output
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		AlertWriter: os.Stderr,
	}
}

// New creates a new Notifier with the given configuration.
func New(config Config) *Notifier {
	if config.AlertWriter == nil {
		config.AlertWriter = os.Stderr
	}
	w := alerts.NewFormatWriter(config.AlertWriter, output.DetectFormat(config.OutputFormat)).
		WithConfig(alerts.WriterConfig{
			ShowDetails: true,
			UseColor:    config.UseColor,
		})
	return &Notifier{
		alertWriter: w,
		config:      config,
	}
}

// Alert sends an alert notification.
func (n *Notifier) Alert(alert *alerts.Alert) error {
	if n.config.Quiet && alert.Level > alerts.LevelWarning {
		return nil
	}
	return n.alertWriter.WriteAlert(alert)
}

// Report sends the alerts that summarize a report: one per failed panel,
// one per reconciliation warning, and a closing verdict.
func (n *Notifier) Report(report *cardsync.Report) error {
	for _, a := range Summarize(report) {
		if err := n.Alert(a); err != nil {
			return fmt.Errorf("failed to write alert: %w", err)
		}
	}
	return nil
}

// Summarize builds the alerts for a report without writing them.
func Summarize(report *cardsync.Report) []*alerts.Alert {
	var out []*alerts.Alert

	for _, p := range report.Panels {
		if p.Err != nil {
			out = append(out, alerts.NewError("panel "+p.Panel+" failed").WithError(p.Err))
		}
		if p.Sync != nil {
			for _, w := range p.Sync.Warnings {
				out = append(out, alerts.NewWarning(p.Panel+": "+w))
			}
		}
	}

	failed := len(report.Failed())
	total := len(report.Panels)

	switch {
	case report.DryRun:
		out = append(out, alerts.NewInfo("dry run: no panel was changed"))
	case report.Operation == cardsync.OperationSync && failed == 0 && !report.Verified():
		var mismatched []string
		for _, p := range report.Panels {
			if !p.Verified {
				mismatched = append(mismatched, fmt.Sprintf("%s has %d cards", p.Panel, p.Cards))
			}
		}
		out = append(out, alerts.NewError(fmt.Sprintf("card count differs from the %d desired cards", report.Desired)).
			WithDetails(mismatched...).
			WithDetails("snapshot not written"))
	case failed > 0:
		out = append(out, alerts.NewError(fmt.Sprintf("%s failed on %d of %d panels", report.Operation, failed, total)))
	case report.Operation == cardsync.OperationSync:
		a := alerts.NewSuccess(fmt.Sprintf("%d desired cards verified on %s", report.Desired, plural(total, "panel")))
		if report.SnapshotWritten {
			a.WithDetails("snapshot written to " + report.SnapshotPath)
		}
		out = append(out, a)
	default:
		out = append(out, alerts.NewSuccess(fmt.Sprintf("%s completed on %s", report.Operation, plural(total, "panel"))))
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
