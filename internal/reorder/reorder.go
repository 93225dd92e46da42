// Package reorder computes legality and new sort keys for drag-and-drop
// moves over a flat tree projection. Moves are atomic: an illegal move is
// reported as a MoveRejection and leaves every input untouched.
package reorder

import "fmt"

type Position string

const (
	Before Position = "before"
	After  Position = "after"
	Inside Position = "inside"
)

type RejectReason string

const (
	RejectNotFound      RejectReason = "not-found"
	RejectSelfMove      RejectReason = "self-move"
	RejectCycle         RejectReason = "cycle"
	RejectInvalidTarget RejectReason = "invalid-target"
	RejectImmovableRoot RejectReason = "immovable-root"
)

// MoveRejection is a typed, non-fatal refusal of a drag operation, suitable
// for direct user-facing messaging.
type MoveRejection struct {
	Reason    RejectReason
	DraggedID string
	TargetID  string
}

func (e *MoveRejection) Error() string {
	return fmt.Sprintf("move %s -> %s rejected: %s", e.DraggedID, e.TargetID, e.Reason)
}

// RejectionReason extracts the reason when err is a MoveRejection.
func RejectionReason(err error) (RejectReason, bool) {
	if rej, ok := err.(*MoveRejection); ok {
		return rej.Reason, true
	}
	return "", false
}

// GapThreshold is the minimum distance between two bracketing sort keys
// before midpoint insertion loses too much float precision and the sibling
// group gets renormalized to integer keys.
const GapThreshold = 1e-9
