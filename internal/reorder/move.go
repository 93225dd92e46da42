package reorder

import (
	"sort"

	"github.com/unkn0wn-root/restdeck/internal/flattree"
)

// Placement is the resolved outcome of a legal move: the new parent and the
// insertion index among that parent's current children (dragged excluded).
type Placement struct {
	ParentID string
	Index    int
}

// CanMove validates a drag of dragged onto target at the given position.
// It rejects self-moves, drops into a dragged item's own subtree, "inside"
// drops on requests and any attempt to move the collection root.
func CanMove(flat []flattree.FlatItem, draggedID, targetID string, pos Position) (Placement, error) {
	byID := index(flat)

	dragged, ok := byID[draggedID]
	if !ok {
		return Placement{}, &MoveRejection{Reason: RejectNotFound, DraggedID: draggedID, TargetID: targetID}
	}
	target, ok := byID[targetID]
	if !ok {
		return Placement{}, &MoveRejection{Reason: RejectNotFound, DraggedID: draggedID, TargetID: targetID}
	}

	if dragged.Kind == flattree.KindCollection {
		return Placement{}, &MoveRejection{Reason: RejectImmovableRoot, DraggedID: draggedID, TargetID: targetID}
	}
	if draggedID == targetID {
		return Placement{}, &MoveRejection{Reason: RejectSelfMove, DraggedID: draggedID, TargetID: targetID}
	}
	if descendants(flat, draggedID)[targetID] {
		return Placement{}, &MoveRejection{Reason: RejectCycle, DraggedID: draggedID, TargetID: targetID}
	}

	switch pos {
	case Inside:
		if target.Kind == flattree.KindRequest {
			return Placement{}, &MoveRejection{Reason: RejectInvalidTarget, DraggedID: draggedID, TargetID: targetID}
		}
		return Placement{ParentID: targetID, Index: len(siblings(flat, targetID, draggedID))}, nil
	case Before, After:
		if target.Kind == flattree.KindCollection {
			return Placement{}, &MoveRejection{Reason: RejectInvalidTarget, DraggedID: draggedID, TargetID: targetID}
		}
		group := siblings(flat, target.ParentID, draggedID)
		idx := len(group)
		for i, entry := range group {
			if entry.ID == targetID {
				idx = i
				break
			}
		}
		if pos == After {
			idx++
		}
		return Placement{ParentID: target.ParentID, Index: idx}, nil
	default:
		return Placement{}, &MoveRejection{Reason: RejectInvalidTarget, DraggedID: draggedID, TargetID: targetID}
	}
}

// NewSortKey picks a key for insertion at idx into an ascending key list:
// one below the first key, one above the last, otherwise the midpoint of the
// bracketing pair. O(1) per insert; callers renormalize when keys converge.
func NewSortKey(keys []float64, idx int) float64 {
	if len(keys) == 0 {
		return 0
	}
	if idx <= 0 {
		return keys[0] - 1
	}
	if idx >= len(keys) {
		return keys[len(keys)-1] + 1
	}
	return (keys[idx-1] + keys[idx]) / 2
}

// ApplyMove composes CanMove and NewSortKey over a copy of the flat list.
// Only the dragged entry's ParentID and SortOrder change, except when the
// bracketing gap undercuts GapThreshold and the destination sibling group is
// renormalized to integer keys.
func ApplyMove(flat []flattree.FlatItem, draggedID, targetID string, pos Position) ([]flattree.FlatItem, error) {
	placement, err := CanMove(flat, draggedID, targetID, pos)
	if err != nil {
		return nil, err
	}

	out := append([]flattree.FlatItem(nil), flat...)
	group := siblings(out, placement.ParentID, draggedID)
	keys := make([]float64, len(group))
	for i, entry := range group {
		keys[i] = entry.SortOrder
	}

	if needsRenormalize(keys, placement.Index) {
		for i, entry := range group {
			at := i
			if i >= placement.Index {
				at = i + 1
			}
			setSortOrder(out, entry.ID, float64(at))
		}
		keys = make([]float64, len(group))
		for i := range group {
			at := i
			if i >= placement.Index {
				at = i + 1
			}
			keys[i] = float64(at)
		}
	}

	key := NewSortKey(keys, placement.Index)
	for i := range out {
		if out[i].ID == draggedID {
			out[i].ParentID = placement.ParentID
			out[i].SortOrder = key
			break
		}
	}
	return out, nil
}

// Renormalize reassigns integer keys 0..n-1 to the children of parentID,
// preserving their current relative order.
func Renormalize(flat []flattree.FlatItem, parentID string) {
	group := siblings(flat, parentID, "")
	for i, entry := range group {
		setSortOrder(flat, entry.ID, float64(i))
	}
}

func needsRenormalize(keys []float64, idx int) bool {
	if idx <= 0 || idx >= len(keys) {
		return false
	}
	return keys[idx]-keys[idx-1] < GapThreshold
}

func setSortOrder(flat []flattree.FlatItem, id string, key float64) {
	for i := range flat {
		if flat[i].ID == id {
			flat[i].SortOrder = key
			return
		}
	}
}

func index(flat []flattree.FlatItem) map[string]*flattree.FlatItem {
	byID := make(map[string]*flattree.FlatItem, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}
	return byID
}

// siblings returns parentID's children ordered by ascending sort key,
// skipping excludeID (the item being moved).
func siblings(flat []flattree.FlatItem, parentID, excludeID string) []flattree.FlatItem {
	var group []flattree.FlatItem
	for _, entry := range flat {
		if entry.Kind == flattree.KindCollection || entry.ParentID != parentID {
			continue
		}
		if entry.ID == excludeID {
			continue
		}
		group = append(group, entry)
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].SortOrder < group[j].SortOrder
	})
	return group
}

// descendants collects every id reachable below rootID via ParentID links.
func descendants(flat []flattree.FlatItem, rootID string) map[string]bool {
	children := map[string][]string{}
	for _, entry := range flat {
		if entry.Kind == flattree.KindCollection {
			continue
		}
		children[entry.ParentID] = append(children[entry.ParentID], entry.ID)
	}

	seen := map[string]bool{}
	queue := append([]string(nil), children[rootID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, children[id]...)
	}
	return seen
}
