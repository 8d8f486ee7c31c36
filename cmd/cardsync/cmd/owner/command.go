// Package owner provides the owner command implementation.
package owner

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/cmdutil"
)

// NewCommand creates the owner command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "owner HEX",
		GroupID: "query",
		Short:   "Find the employee holding a card on each panel",
		Args:    cobra.ExactArgs(1),
		Example: `  cardsync owner 85EF77B4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			report, err := syncer.Owner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, report)
		},
	}
}
