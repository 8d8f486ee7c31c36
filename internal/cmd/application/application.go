// Package application provides the application interface for cardsync commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            syncer, err := app.Syncer()
//	            if err != nil {
//	                return err
//	            }
//	            report, err := syncer.Count(cmd.Context())
//	            // ... render report
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    SyncerFunc: func() (cardsync.Syncer, error) {
//	        return testSyncer, nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cardsync"
)

// Application provides the application interface that commands need.
// The App struct from cmd/cardsync/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Syncer returns the syncer for the configured panels, creating it
	// lazily from the settings file, the environment and global flags.
	Syncer() (cardsync.Syncer, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Quiet reports whether only errors and warnings should be printed.
	Quiet() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
