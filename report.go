package cardsync

import (
	stderrors "errors"
	"time"

	"github.com/agentstation/cardsync/internal/provision"
	"github.com/agentstation/cardsync/internal/reconcile"
)

// Operation names recorded in reports.
const (
	OperationSync  = "sync"
	OperationAdd   = "add"
	OperationClear = "clear"
	OperationCount = "count"
	OperationOwner = "owner"
)

// PanelResult is the outcome of one panel's unit of work.
type PanelResult struct {
	Panel string `json:"panel" yaml:"panel"`

	// Sync holds the reconciliation result of a sync run
	Sync *reconcile.Result `json:"sync,omitempty" yaml:"sync,omitempty"`

	// Assignments holds the cards written by an add run
	Assignments []provision.Assignment `json:"assignments,omitempty" yaml:"assignments,omitempty"`

	// Cleared is the number of employees removed by a clear run
	Cleared int `json:"cleared,omitempty" yaml:"cleared,omitempty"`

	// Owner is the employee found by an owner lookup
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// Users and Cards are the live counts read after the unit finished
	Users int `json:"users" yaml:"users"`
	Cards int `json:"cards" yaml:"cards"`

	// Verified is set when the live card count equals the desired count
	Verified bool `json:"verified" yaml:"verified"`

	Err      error         `json:"-" yaml:"-"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Failed reports whether the unit of work returned an error.
func (r *PanelResult) Failed() bool {
	return r.Err != nil
}

func (r *PanelResult) fail(err error) {
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// Report collects the per-panel results of one operation, in configured panel
// order.
type Report struct {
	Operation string        `json:"operation" yaml:"operation"`
	Filter    string        `json:"filter,omitempty" yaml:"filter,omitempty"`
	DryRun    bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Desired   int           `json:"desired,omitempty" yaml:"desired,omitempty"`
	Panels    []PanelResult `json:"panels" yaml:"panels"`

	// SnapshotWritten is set when a verified sync recorded its card set
	SnapshotWritten bool   `json:"snapshot_written,omitempty" yaml:"snapshot_written,omitempty"`
	SnapshotPath    string `json:"snapshot_path,omitempty" yaml:"snapshot_path,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Failed returns the results of panels whose unit of work failed.
func (r *Report) Failed() []PanelResult {
	var out []PanelResult
	for _, p := range r.Panels {
		if p.Failed() {
			out = append(out, p)
		}
	}
	return out
}

// Verified reports whether every panel passed verification. Only sync runs
// verify.
func (r *Report) Verified() bool {
	for _, p := range r.Panels {
		if !p.Verified {
			return false
		}
	}
	return len(r.Panels) > 0
}

// Err joins the errors of every failed panel, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Panels {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return stderrors.Join(errs...)
}

// OK reports whether the operation succeeded on every panel and, for a
// non dry-run sync, whether every panel verified.
func (r *Report) OK() bool {
	if r.Err() != nil {
		return false
	}
	if r.Operation == OperationSync && !r.DryRun {
		return r.Verified()
	}
	return true
}
