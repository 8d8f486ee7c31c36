// Package add provides the add command implementation.
package add

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/cmdutil"
)

// NewCommand creates the add command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.RunFlags

	cmd := &cobra.Command{
		Use:     "add HEX...",
		GroupID: "core",
		Short:   "Write cards to every panel without removing any",
		Args:    cobra.MinimumNArgs(1),
		Long: `Add writes the given hexadecimal card UIDs to every panel. Free slots of
employees matching --name are filled first; the rest go to new employees.
Nothing is deleted and the snapshot is left untouched.`,
		Example: `  cardsync add 85EF77B4 7290FDE1
  cardsync add 85EF77B4 -n guest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			report, err := syncer.Add(cmd.Context(), args, flags.Options()...)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, report)
		},
	}

	flags = cmdutil.AddRunFlags(cmd, false)

	return cmd
}
