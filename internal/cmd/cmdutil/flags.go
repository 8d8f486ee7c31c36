// Package cmdutil provides shared flags and rendering for cardsync commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/pkg/constants"
)

// RunFlags holds the flags of commands that change panels.
type RunFlags struct {
	Name   string
	DryRun bool
}

// AddRunFlags adds --name and, when withDryRun is set, --dry-run to cmd.
func AddRunFlags(cmd *cobra.Command, withDryRun bool) *RunFlags {
	flags := &RunFlags{}

	cmd.Flags().StringVarP(&flags.Name, "name", "n", constants.DefaultNamePrefix,
		"Employee name the operation is scoped to; new employees are named after it")
	if withDryRun {
		cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
			"Show what would change without changing any panel")
	}

	return flags
}

// Options converts the flags into run options.
func (f *RunFlags) Options() []cardsync.RunOption {
	return []cardsync.RunOption{
		cardsync.WithFilter(f.Name),
		cardsync.WithDryRun(f.DryRun),
	}
}
