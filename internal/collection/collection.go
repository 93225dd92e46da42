package collection

import (
	"maps"
	"net/http"

	"github.com/unkn0wn-root/restdeck/internal/errdef"
)

// Walk visits every item depth-first in display order. Returning false from
// the visitor stops the walk.
func (c *Collection) Walk(visit func(item *Item, parent *Item, depth int) bool) {
	var walk func(items []*Item, parent *Item, depth int) bool
	walk = func(items []*Item, parent *Item, depth int) bool {
		for _, item := range items {
			if !visit(item, parent, depth) {
				return false
			}
			if len(item.Children) > 0 {
				if !walk(item.Children, item, depth+1) {
					return false
				}
			}
		}
		return true
	}
	walk(c.Items, nil, 1)
}

// Find returns the item with the given id, or nil.
func (c *Collection) Find(id string) *Item {
	var found *Item
	c.Walk(func(item *Item, _ *Item, _ int) bool {
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	return found
}

// Remove deletes the item with the given id together with its descendants.
// It reports whether anything was removed.
func (c *Collection) Remove(id string) bool {
	removed := false
	c.Items = removeFrom(c.Items, id, &removed)
	return removed
}

func removeFrom(items []*Item, id string, removed *bool) []*Item {
	out := items[:0]
	for _, item := range items {
		if item.ID == id {
			*removed = true
			continue
		}
		item.Children = removeFrom(item.Children, id, removed)
		out = append(out, item)
	}
	return out
}

// Validate checks the structural invariants: non-empty unique ids and
// request items without children.
func (c *Collection) Validate() error {
	seen := map[string]struct{}{}
	if c.Info.ID != "" {
		seen[c.Info.ID] = struct{}{}
	}
	var err error
	c.Walk(func(item *Item, _ *Item, _ int) bool {
		switch {
		case item.ID == "":
			err = errdef.New(errdef.CodeStructure, "item %q has no id", item.Name)
		case hasID(seen, item.ID):
			err = errdef.New(errdef.CodeStructure, "duplicate item id %s", item.ID)
		case item.Kind == KindRequest && len(item.Children) > 0:
			err = errdef.New(errdef.CodeStructure, "request %s has children", item.ID)
		case item.Kind == KindRequest && item.Request == nil:
			err = errdef.New(errdef.CodeStructure, "request %s has no request payload", item.ID)
		case item.Kind != KindRequest && item.Kind != KindFolder:
			err = errdef.New(errdef.CodeStructure, "item %s has unknown kind %q", item.ID, item.Kind)
		}
		return err == nil
	})
	return err
}

func hasID(seen map[string]struct{}, id string) bool {
	if _, ok := seen[id]; ok {
		return true
	}
	seen[id] = struct{}{}
	return false
}

// Clone returns a structurally independent deep copy.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{Info: c.Info, Auth: c.Auth.Clone()}
	if len(c.Variables) > 0 {
		out.Variables = append([]Variable(nil), c.Variables...)
	}
	out.Items = cloneItems(c.Items)
	return out
}

func cloneItems(items []*Item) []*Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := &Item{ID: i.ID, Name: i.Name, Kind: i.Kind, Auth: i.Auth.Clone()}
	out.Request = i.Request.Clone()
	if len(i.Events) > 0 {
		out.Events = make([]Event, len(i.Events))
		for idx, ev := range i.Events {
			out.Events[idx] = Event{Listen: ev.Listen, Script: append([]string(nil), ev.Script...)}
		}
	}
	out.Children = cloneItems(i.Children)
	return out
}

func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	if r.Headers != nil {
		out.Headers = make(http.Header, len(r.Headers))
		for name, values := range r.Headers {
			out.Headers[name] = append([]string(nil), values...)
		}
	}
	return &out
}

func (a *Auth) Clone() *Auth {
	if a == nil {
		return nil
	}
	out := &Auth{Type: a.Type}
	if a.Params != nil {
		out.Params = maps.Clone(a.Params)
	}
	return out
}
