// Package flattree projects a collection tree into the flat, depth-annotated
// list the display layer renders and drag-and-drop operates on. The flat form
// is derived state: it is rebuilt from the item tree after every structural
// change and never stored.
package flattree

import "fmt"

type Kind string

const (
	KindCollection Kind = "collection"
	KindFolder     Kind = "folder"
	KindRequest    Kind = "request"
)

// MaxDepth bounds flatten recursion and unflatten ancestor walks so a
// malformed tree fails with a StructureError instead of exhausting the stack.
const MaxDepth = 1000

type FlatItem struct {
	ID           string
	Name         string
	Kind         Kind
	ParentID     string
	CollectionID string
	Depth        int
	SortOrder    float64
	Children     []string
}

type StructureErrorKind string

const (
	StructureCycle          StructureErrorKind = "cycle"
	StructureDanglingParent StructureErrorKind = "dangling-parent"
	StructureDepthLimit     StructureErrorKind = "depth-limit"
)

type StructureError struct {
	Kind   StructureErrorKind
	ItemID string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("structure error (%s) at item %s", e.Kind, e.ItemID)
}
