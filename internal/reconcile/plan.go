package reconcile

import "github.com/agentstation/cardsync/pkg/cardid"

// Plan is the derived difference between the cards on a panel and the
// desired card set. It is never persisted.
type Plan struct {
	// Current holds the decimal numbers found on the panel, as it reports them
	Current []string `json:"current" yaml:"current"`

	// Desired holds the canonical decimal numbers that should be present
	Desired []string `json:"desired" yaml:"desired"`

	// ToDelete holds decimal numbers present but not desired, in current order
	// and in the panel's own form
	ToDelete []string `json:"to_delete" yaml:"to_delete"`

	// ToAdd holds hexadecimal identifiers desired but absent, in desired order
	ToAdd []string `json:"to_add" yaml:"to_add"`

	// SnapshotUsed reports whether Current came from the local snapshot
	SnapshotUsed bool `json:"snapshot_used" yaml:"snapshot_used"`
}

// Empty reports whether the plan requires no change.
func (p *Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToAdd) == 0
}

// Diff splits the panel's decimal numbers and a canonical desired set into
// the numbers to delete (in current order, as the panel reports them) and the
// numbers to add (in desired order). Numbers are compared in canonical form.
func Diff(current, desired []string) (toDelete, toAdd []string) {
	want := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		want[d] = struct{}{}
	}

	kept := make(map[string]struct{}, len(current))
	for _, c := range current {
		k := key(c)
		if _, ok := want[k]; ok {
			kept[k] = struct{}{}
			continue
		}
		toDelete = append(toDelete, c)
	}

	for _, d := range desired {
		if _, ok := kept[d]; !ok {
			toAdd = append(toAdd, d)
		}
	}
	return toDelete, toAdd
}

// key returns the canonical form of a panel card number. A number that does
// not parse is compared as is.
func key(cardNo string) string {
	if c, err := cardid.Canonical(cardNo); err == nil {
		return c
	}
	return cardNo
}

// newPlan builds a plan from the panel's numbers and the canonical desired set.
func newPlan(current, desired []string, snapshotUsed bool) (*Plan, error) {
	toDelete, toAdd := Diff(current, desired)
	hexes, err := cardid.ToHex(toAdd)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Current:      current,
		Desired:      desired,
		ToDelete:     toDelete,
		ToAdd:        hexes,
		SnapshotUsed: snapshotUsed,
	}, nil
}
