package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync/cmd/cardsync/cmd/add"
	"github.com/agentstation/cardsync/cmd/cardsync/cmd/clear"
	"github.com/agentstation/cardsync/cmd/cardsync/cmd/count"
	"github.com/agentstation/cardsync/cmd/cardsync/cmd/owner"
	"github.com/agentstation/cardsync/cmd/cardsync/cmd/update"
)

// CreateUpdateCommand creates the update command with app dependencies.
func (a *App) CreateUpdateCommand() *cobra.Command {
	return update.NewCommand(a)
}

// CreateAddCommand creates the add command with app dependencies.
func (a *App) CreateAddCommand() *cobra.Command {
	return add.NewCommand(a)
}

// CreateClearCommand creates the clear command with app dependencies.
func (a *App) CreateClearCommand() *cobra.Command {
	return clear.NewCommand(a)
}

// CreateCountCommand creates the count command with app dependencies.
func (a *App) CreateCountCommand() *cobra.Command {
	return count.NewCommand(a)
}

// CreateOwnerCommand creates the owner command with app dependencies.
func (a *App) CreateOwnerCommand() *cobra.Command {
	return owner.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("cardsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
