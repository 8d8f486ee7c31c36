package table

import (
	"github.com/fatih/color"

	"github.com/agentstation/cardsync/internal/cmd/emoji"
)

// State is the outcome shown in a status column.
type State int

const (
	// StateOK marks a panel whose unit of work succeeded.
	StateOK State = iota
	// StateVerified marks a synced panel whose live count matches.
	StateVerified
	// StateMismatch marks a synced panel whose live count differs.
	StateMismatch
	// StateDryRun marks a panel that was only planned.
	StateDryRun
	// StateFailed marks a panel whose unit of work returned an error.
	StateFailed
)

// String returns the plain label of the state.
func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateVerified:
		return "match"
	case StateMismatch:
		return "mismatch"
	case StateDryRun:
		return "dry run"
	case StateFailed:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) icon() string {
	switch s {
	case StateOK, StateVerified:
		return emoji.Success
	case StateMismatch, StateFailed:
		return emoji.Error
	case StateDryRun:
		return emoji.Info
	default:
		return emoji.Unknown
	}
}

func (s State) color() *color.Color {
	switch s {
	case StateOK, StateVerified:
		return color.New(color.FgGreen)
	case StateMismatch, StateFailed:
		return color.New(color.FgRed)
	case StateDryRun:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

// StatusCell renders the state with its icon, colored unless noColor is set.
func StatusCell(s State, noColor bool) string {
	text := s.icon() + " " + s.String()
	if noColor {
		return text
	}
	c := s.color()
	c.EnableColor()
	return c.Sprint(text)
}
