package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/notify"
	"github.com/agentstation/cardsync/internal/cmd/output"
	"github.com/agentstation/cardsync/pkg/errors"
)

// ErrNotVerified is returned when a sync finished without errors but a panel
// does not hold the desired number of cards.
var ErrNotVerified = errors.New("verification failed: live card count differs from the desired set")

// Render writes the report to the command's output, summarizes it on the
// error stream and returns an error when the run did not succeed on every
// panel.
func Render(cmd *cobra.Command, app application.Application, report *cardsync.Report) error {
	format := output.DetectFormat(app.OutputFormat())
	if err := output.FormatReport(cmd.OutOrStdout(), report, format, app.NoColor()); err != nil {
		return errors.WrapIO("write", "report", err)
	}

	notifier := notify.New(notify.Config{
		OutputFormat: string(format),
		Quiet:        app.Quiet(),
		AlertWriter:  cmd.ErrOrStderr(),
		UseColor:     !app.NoColor(),
	})
	if err := notifier.Report(report); err != nil {
		app.Logger().Warn().Err(err).Msg("Failed to write summary")
	}

	if report.OK() {
		return nil
	}
	if err := report.Err(); err != nil {
		return err
	}
	return ErrNotVerified
}
