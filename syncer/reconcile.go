// Package syncer drives whole export and import runs: items are processed
// one at a time, failures are recovered at the smallest unit boundary (one
// asset, one item, one plugin group) and accumulated into a run summary.
package syncer

import "fmt"

// Mode is the declared import policy: what to do about items that do or
// don't already exist remotely.
type Mode int

const (
	// ModeCreate only creates items that don't exist yet.
	ModeCreate Mode = iota
	// ModeUpdate only updates items that already exist.
	ModeUpdate
	// ModeSync creates missing items and updates existing ones.
	ModeSync
)

func (m Mode) String() string {
	switch m {
	case ModeUpdate:
		return "update"
	case ModeSync:
		return "sync"
	default:
		return "create"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "create":
		return ModeCreate, nil
	case "update":
		return ModeUpdate, nil
	case "sync":
		return ModeSync, nil
	}
	return ModeCreate, fmt.Errorf("syncer: unknown import mode '%s' (want create, update or sync)", s)
}

// Action is the reconciliation outcome for one item.
type Action int

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	default:
		return "create"
	}
}

// Skip reasons, reported alongside ActionSkip.  A skip is a normal outcome,
// not a failure.
const (
	SkipReasonExists   = "exists"
	SkipReasonNotFound = "not found"
)

// Decide resolves the action for one item from the declared mode and
// whether a remote item with the same slug already exists.  Existence is
// always slug-based: IDs are not portable across environments.
//
//	mode    | remote exists? | action
//	create  | no             | CREATE
//	create  | yes            | SKIP (exists)
//	update  | yes            | UPDATE
//	update  | no             | SKIP (not found)
//	sync    | yes            | UPDATE
//	sync    | no             | CREATE
func Decide(mode Mode, remoteExists bool) (Action, string) {
	switch mode {
	case ModeCreate:
		if remoteExists {
			return ActionSkip, SkipReasonExists
		}
		return ActionCreate, ""
	case ModeUpdate:
		if !remoteExists {
			return ActionSkip, SkipReasonNotFound
		}
		return ActionUpdate, ""
	default: // ModeSync
		if remoteExists {
			return ActionUpdate, ""
		}
		return ActionCreate, ""
	}
}
