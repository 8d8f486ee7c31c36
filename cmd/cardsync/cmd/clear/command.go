// Package clear provides the clear command implementation.
package clear

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/cmdutil"
)

// NewCommand creates the clear command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.RunFlags

	cmd := &cobra.Command{
		Use:     "clear",
		GroupID: "core",
		Short:   "Delete employees matching --name, with their cards",
		Args:    cobra.NoArgs,
		Example: `  cardsync clear                # Delete every "user" employee
  cardsync clear -n guest --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			report, err := syncer.Clear(cmd.Context(), flags.Options()...)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, report)
		},
	}

	flags = cmdutil.AddRunFlags(cmd, true)

	return cmd
}
