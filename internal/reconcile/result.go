package reconcile

import (
	"time"

	"github.com/agentstation/cardsync/internal/provision"
)

// Result represents the outcome of a synchronization on one panel
type Result struct {
	// Plan is the difference that was computed
	Plan *Plan `json:"plan" yaml:"plan"`

	// Deleted holds the decimal numbers actually deleted
	Deleted []string `json:"deleted,omitempty" yaml:"deleted,omitempty"`

	// Assignments holds the cards actually added, per employee
	Assignments []provision.Assignment `json:"assignments,omitempty" yaml:"assignments,omitempty"`

	// NoOp is set when the panel already matched the desired set
	NoOp bool `json:"no_op" yaml:"no_op"`

	// DryRun is set when the plan was computed but not applied
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Warnings contains non-critical issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Duration of the synchronization
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Added returns the number of cards written to the panel.
func (r *Result) Added() int {
	n := 0
	for _, a := range r.Assignments {
		n += len(a.Cards)
	}
	return n
}

// CreatedEmployees returns the employees created during the run.
func (r *Result) CreatedEmployees() []string {
	var out []string
	for _, a := range r.Assignments {
		if a.Created {
			out = append(out, a.EmployeeID)
		}
	}
	return out
}
