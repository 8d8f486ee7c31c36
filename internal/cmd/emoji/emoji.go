// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

// Symbol constants for CLI output.
const (
	// Success represents successful completion of an operation.
	// Used for: verified panels, completed units of work.
	Success = "✓"

	// Error represents failures.
	// Used for: failed panels, card count mismatches.
	Error = "✗"

	// Warning represents non-critical issues.
	// Used for: ignored snapshots, skipped verification.
	Warning = "!"

	// Info represents informational messages.
	// Used for: dry runs, tips, context.
	Info = "i"

	// Unknown represents unknown or indeterminate states.
	Unknown = "?"
)
