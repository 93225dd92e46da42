package flattree

import (
	"github.com/unkn0wn-root/restdeck/internal/collection"
)

// Expanded is the set of folder ids whose children are visible. The
// collection root is addressed by the collection id itself.
type Expanded map[string]struct{}

func (e Expanded) Has(id string) bool {
	_, ok := e[id]
	return ok
}

func (e Expanded) Add(id string) {
	e[id] = struct{}{}
}

// ExpandAll returns an expanded set covering the root and every folder.
func ExpandAll(col *collection.Collection) Expanded {
	set := Expanded{col.Info.ID: {}}
	col.Walk(func(item *collection.Item, _ *collection.Item, _ int) bool {
		if item.Kind == collection.KindFolder {
			set.Add(item.ID)
		}
		return true
	})
	return set
}

// Flatten linearizes a collection into display order. The synthetic
// collection root comes first at depth 0; each visible item appears exactly
// once, a folder's children immediately after it when the folder is in the
// expanded set. SortOrder mirrors the item's sibling index at call time.
func Flatten(col *collection.Collection, expanded Expanded) ([]FlatItem, error) {
	root := FlatItem{
		ID:           col.Info.ID,
		Name:         col.Info.Name,
		Kind:         KindCollection,
		CollectionID: col.Info.ID,
		Depth:        0,
	}
	for _, item := range col.Items {
		root.Children = append(root.Children, item.ID)
	}
	out := []FlatItem{root}

	if !expanded.Has(col.Info.ID) {
		return out, nil
	}

	var err error
	out, err = flattenItems(out, col.Items, col.Info.ID, col.Info.ID, 1, expanded)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func flattenItems(
	out []FlatItem,
	items []*collection.Item,
	parentID, collectionID string,
	depth int,
	expanded Expanded,
) ([]FlatItem, error) {
	if depth > MaxDepth {
		id := ""
		if len(items) > 0 {
			id = items[0].ID
		}
		return nil, &StructureError{Kind: StructureDepthLimit, ItemID: id}
	}

	for idx, item := range items {
		flat := FlatItem{
			ID:           item.ID,
			Name:         item.Name,
			Kind:         KindRequest,
			ParentID:     parentID,
			CollectionID: collectionID,
			Depth:        depth,
			SortOrder:    float64(idx),
		}
		if item.Kind == collection.KindFolder {
			flat.Kind = KindFolder
			for _, child := range item.Children {
				flat.Children = append(flat.Children, child.ID)
			}
		}
		out = append(out, flat)

		if item.Kind == collection.KindFolder && expanded.Has(item.ID) {
			var err error
			out, err = flattenItems(out, item.Children, item.ID, collectionID, depth+1, expanded)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
