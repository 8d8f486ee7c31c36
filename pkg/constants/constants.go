// Package constants provides shared constants used throughout the cardsync codebase.
// This includes timeouts, pauses, panel limits, file permissions, and other values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define the request and command timeouts used in the application
const (
	// DefaultHTTPTimeout is the fixed timeout for a single ISAPI request
	DefaultHTTPTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Hour

	// ShutdownTimeout bounds graceful shutdown after a failed command
	ShutdownTimeout = 5 * time.Second
)

// Pause constants keep request bursts within what a panel tolerates
const (
	// CardCreateDelay precedes every card record call. Panels answer 401 when
	// card records arrive back to back.
	CardCreateDelay = 500 * time.Millisecond

	// PagePause is the wait between consecutive search pages.
	PagePause = 500 * time.Millisecond
)

// Panel data model limits
const (
	// PageSize is the maxResults value sent with every search request
	PageSize = 30

	// MaxCardsPerEmployee is the number of card slots an employee record holds
	MaxCardsPerEmployee = 5

	// ValidityYears is the length of the access window given to new employees
	ValidityYears = 10

	// DoorNo is the single door new employees are granted
	DoorNo = 1

	// CardNumberWidth is the zero-padded width of decimal card numbers
	CardNumberWidth = 10
)

// Defaults for the command-line tool
const (
	// DefaultNamePrefix is the employee name prefix when none is given
	DefaultNamePrefix = "user"

	// DefaultSnapshotFile stores the last synchronized card set
	DefaultSnapshotFile = "dump.txt"

	// DefaultSettingsFile holds the panel list and credentials
	DefaultSettingsFile = "settings.ini"

	// MaxConcurrentPanels is the default number of panels processed at once
	MaxConcurrentPanels = 8
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like credentials (rw-------)
	SecureFilePermissions = 0600
)
