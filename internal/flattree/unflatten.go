package flattree

import (
	"sort"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

// Unflatten rebuilds the nested item sequence for one collection from a flat
// projection, typically after a drag updated ParentID/SortOrder values. Only
// structural fields of the flat entries are honored; request payloads, auth
// and events are taken from the source collection by id. Children of folders
// that were collapsed (absent from the flat list) are preserved from source.
func Unflatten(flat []FlatItem, source *collection.Collection) ([]*collection.Item, error) {
	byID := make(map[string]*FlatItem, len(flat))
	byParent := make(map[string][]*FlatItem, len(flat))
	rootID := ""
	for idx := range flat {
		entry := &flat[idx]
		byID[entry.ID] = entry
		if entry.Kind == KindCollection {
			rootID = entry.ID
			continue
		}
		byParent[entry.ParentID] = append(byParent[entry.ParentID], entry)
	}

	for _, entry := range flat {
		if entry.Kind == KindCollection {
			continue
		}
		if _, ok := byID[entry.ParentID]; !ok {
			return nil, &StructureError{Kind: StructureDanglingParent, ItemID: entry.ID}
		}
		if err := checkAncestry(entry.ID, byID); err != nil {
			return nil, err
		}
	}

	for _, group := range byParent {
		sortSiblings(group)
	}

	payloads := indexItems(source)
	return buildLevel(byParent[rootID], byParent, byID, payloads, 1)
}

// sortSiblings orders by ascending sort key, keeping flat-list order on ties.
func sortSiblings(group []*FlatItem) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].SortOrder < group[j].SortOrder
	})
}

// checkAncestry walks the parent chain with a hop bound so a malformed flat
// list with a parent loop fails instead of spinning.
func checkAncestry(id string, byID map[string]*FlatItem) error {
	seen := map[string]struct{}{id: {}}
	current := byID[id]
	for hops := 0; hops <= MaxDepth; hops++ {
		if current.Kind == KindCollection {
			return nil
		}
		parent, ok := byID[current.ParentID]
		if !ok {
			return &StructureError{Kind: StructureDanglingParent, ItemID: current.ID}
		}
		if _, dup := seen[parent.ID]; dup {
			return &StructureError{Kind: StructureCycle, ItemID: parent.ID}
		}
		seen[parent.ID] = struct{}{}
		current = parent
	}
	return &StructureError{Kind: StructureDepthLimit, ItemID: id}
}

func indexItems(source *collection.Collection) map[string]*collection.Item {
	index := map[string]*collection.Item{}
	if source == nil {
		return index
	}
	source.Walk(func(item *collection.Item, _ *collection.Item, _ int) bool {
		index[item.ID] = item
		return true
	})
	return index
}

func buildLevel(
	group []*FlatItem,
	byParent map[string][]*FlatItem,
	byID map[string]*FlatItem,
	payloads map[string]*collection.Item,
	depth int,
) ([]*collection.Item, error) {
	if depth > MaxDepth {
		id := ""
		if len(group) > 0 {
			id = group[0].ID
		}
		return nil, &StructureError{Kind: StructureDepthLimit, ItemID: id}
	}

	var out []*collection.Item
	for _, entry := range group {
		item := payloads[entry.ID]
		if item == nil {
			item = &collection.Item{ID: entry.ID, Name: entry.Name}
		}
		rebuilt := &collection.Item{
			ID:      item.ID,
			Name:    item.Name,
			Kind:    item.Kind,
			Request: item.Request,
			Auth:    item.Auth,
			Events:  item.Events,
		}
		if rebuilt.Kind == "" {
			rebuilt.Kind = kindFromFlat(entry.Kind)
		}

		if entry.Kind == KindFolder {
			if children, present := byParent[entry.ID]; present {
				built, err := buildLevel(children, byParent, byID, payloads, depth+1)
				if err != nil {
					return nil, err
				}
				rebuilt.Children = built
			} else {
				// Subtree not part of the flat view (collapsed folder): keep
				// source children, minus any that the flat list placed
				// elsewhere in the meantime.
				for _, child := range item.Children {
					if _, visible := byID[child.ID]; visible {
						continue
					}
					rebuilt.Children = append(rebuilt.Children, child)
				}
			}
		}
		out = append(out, rebuilt)
	}
	return out, nil
}

func kindFromFlat(kind Kind) collection.ItemKind {
	if kind == KindFolder {
		return collection.KindFolder
	}
	return collection.KindRequest
}
