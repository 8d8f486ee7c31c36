// Package count provides the count command implementation.
package count

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/cmdutil"
)

// NewCommand creates the count command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "count",
		GroupID: "query",
		Short:   "Show live employee and card counts per panel",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			report, err := syncer.Count(cmd.Context())
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, report)
		},
	}
}
