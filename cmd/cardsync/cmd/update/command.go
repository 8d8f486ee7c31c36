// Package update provides the update command implementation.
package update

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/cmd/cmdutil"
)

// NewCommand creates the update command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.RunFlags

	cmd := &cobra.Command{
		Use:     "update FILE",
		GroupID: "core",
		Short:   "Make every panel hold exactly the cards listed in FILE",
		Args:    cobra.ExactArgs(1),
		Long: `Update reconciles every panel against FILE, which lists one hexadecimal
card UID per line (blank lines and lines starting with # are ignored).

For employees whose name matches --name the command:
• Reads the cards currently on the panel (from the snapshot when it is current)
• Deletes cards that are not in FILE
• Writes missing cards, filling free slots before creating employees
• Verifies that the panel holds as many cards as FILE lists

Verification compares the total number of cards on the panel, so cards
held by other employees make it fail. The snapshot is written only when
every panel verifies.`,
		Example: `  cardsync update cards.txt                 # Sync the "user" employees
  cardsync update cards.txt -n guest        # Sync the "guest" employees
  cardsync update cards.txt --dry-run       # Preview deletions and additions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := cardsync.ReadCardFile(args[0])
			if err != nil {
				return err
			}

			syncer, err := app.Syncer()
			if err != nil {
				return err
			}

			app.Logger().Debug().Str("file", args[0]).Int("cards", len(cards)).Msg("Read card file")

			report, err := syncer.Sync(cmd.Context(), cards, flags.Options()...)
			if report == nil {
				return err
			}
			if renderErr := cmdutil.Render(cmd, app, report); err == nil {
				err = renderErr
			}
			return err
		},
	}

	flags = cmdutil.AddRunFlags(cmd, true)

	return cmd
}
