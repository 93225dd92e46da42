package postman

import (
	"net/http"
	"sort"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

// ToCollection converts a decoded wire document into the canonical model,
// assigning fresh ids where the document carries none.
func ToCollection(doc *Document) *collection.Collection {
	col := &collection.Collection{
		Info: collection.Info{
			ID:            doc.Info.PostmanID,
			Name:          doc.Info.Name,
			Description:   doc.Info.Description,
			SchemaVersion: doc.Info.Schema,
		},
		Auth: toAuth(doc.Auth),
	}
	if col.Info.ID == "" {
		col.Info.ID = collection.NewID()
	}
	if col.Info.SchemaVersion == "" {
		col.Info.SchemaVersion = SchemaV21
	}
	for _, v := range doc.Variable {
		col.Variables = append(col.Variables, toVariable(v))
	}
	col.Items = toItems(doc.Item)
	return col
}

func toItems(wire []Item) []*collection.Item {
	if len(wire) == 0 {
		return nil
	}
	out := make([]*collection.Item, 0, len(wire))
	for _, entry := range wire {
		out = append(out, toItem(entry))
	}
	return out
}

func toItem(wire Item) *collection.Item {
	item := &collection.Item{
		ID:   wire.ID,
		Name: wire.Name,
		Auth: toAuth(wire.Auth),
	}
	if item.ID == "" {
		item.ID = collection.NewID()
	}
	for _, ev := range wire.Event {
		item.Events = append(item.Events, collection.Event{
			Listen: ev.Listen,
			Script: append([]string(nil), ev.Script.Exec...),
		})
	}
	if wire.IsFolder() {
		item.Kind = collection.KindFolder
		item.Children = toItems(wire.Item)
		return item
	}
	item.Kind = collection.KindRequest
	item.Request = toRequest(wire.Request)
	if item.Auth == nil {
		item.Auth = toAuth(wire.Request.Auth)
	}
	return item
}

func toRequest(wire *Request) *collection.Request {
	req := &collection.Request{
		Method:      strings.ToUpper(wire.Method),
		URL:         wire.URL.Raw,
		Description: wire.Description,
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	for _, h := range wire.Header {
		if h.Disabled || h.Key == "" {
			continue
		}
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}
		req.Headers.Add(h.Key, h.Value)
	}
	if wire.Body != nil {
		req.Body = toBody(wire.Body)
	}
	return req
}

func toBody(wire *Body) collection.Body {
	switch wire.Mode {
	case "raw":
		return collection.Body{Mode: collection.BodyRaw, Raw: wire.Raw}
	case "urlencoded":
		pairs := make([]string, 0, len(wire.URLEncoded))
		for _, p := range wire.URLEncoded {
			pairs = append(pairs, p.Key+"="+p.Value)
		}
		return collection.Body{
			Mode:     collection.BodyURLEncoded,
			Raw:      strings.Join(pairs, "&"),
			MimeType: "application/x-www-form-urlencoded",
		}
	case "file":
		body := collection.Body{Mode: collection.BodyFile}
		if wire.File != nil {
			body.FilePath = wire.File.Src
		}
		return body
	default:
		return collection.Body{}
	}
}

func toVariable(wire Variable) collection.Variable {
	kind := collection.VariableDefault
	if wire.Type == "secret" {
		kind = collection.VariableSecret
	}
	return collection.Variable{
		Key:     wire.Key,
		Value:   wire.Value,
		Type:    kind,
		Enabled: !wire.Disabled,
	}
}

func toAuth(wire *Auth) *collection.Auth {
	if wire == nil || wire.Type == "" {
		return nil
	}
	auth := &collection.Auth{Type: collection.AuthType(wire.Type)}
	if len(wire.Params) > 0 {
		auth.Params = make(map[string]string, len(wire.Params))
		for _, p := range wire.Params {
			auth.Params[p.Key] = p.Value
		}
	}
	return auth
}

// FromCollection converts the canonical model into its wire form.
func FromCollection(col *collection.Collection) *Document {
	doc := &Document{
		Info: Info{
			PostmanID:   col.Info.ID,
			Name:        col.Info.Name,
			Description: col.Info.Description,
			Schema:      col.Info.SchemaVersion,
		},
		Auth: fromAuth(col.Auth),
	}
	if doc.Info.Schema == "" {
		doc.Info.Schema = SchemaV21
	}
	for _, v := range col.Variables {
		doc.Variable = append(doc.Variable, fromVariable(v))
	}
	doc.Item = fromItems(col.Items)
	if doc.Item == nil {
		doc.Item = []Item{}
	}
	return doc
}

func fromItems(items []*collection.Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, fromItem(item))
	}
	return out
}

func fromItem(item *collection.Item) Item {
	wire := Item{
		ID:   item.ID,
		Name: item.Name,
		Auth: fromAuth(item.Auth),
	}
	for _, ev := range item.Events {
		wire.Event = append(wire.Event, Event{
			Listen: ev.Listen,
			Script: Script{Type: "text/javascript", Exec: append([]string(nil), ev.Script...)},
		})
	}
	if item.Kind == collection.KindFolder {
		wire.Item = fromItems(item.Children)
		if wire.Item == nil {
			wire.Item = []Item{}
		}
		return wire
	}
	wire.Request = fromRequest(item.Request)
	return wire
}

func fromRequest(req *collection.Request) *Request {
	if req == nil {
		return &Request{Method: http.MethodGet}
	}
	wire := &Request{
		Method:      req.Method,
		URL:         URL{Raw: req.URL},
		Description: req.Description,
	}
	if len(req.Headers) > 0 {
		names := make([]string, 0, len(req.Headers))
		for name := range req.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, value := range req.Headers[name] {
				wire.Header = append(wire.Header, Header{Key: name, Value: value})
			}
		}
	}
	switch req.Body.Mode {
	case collection.BodyRaw:
		wire.Body = &Body{Mode: "raw", Raw: req.Body.Raw}
	case collection.BodyURLEncoded:
		body := &Body{Mode: "urlencoded"}
		for _, pair := range strings.Split(req.Body.Raw, "&") {
			if pair == "" {
				continue
			}
			key, value, _ := strings.Cut(pair, "=")
			body.URLEncoded = append(body.URLEncoded, FormParam{Key: key, Value: value})
		}
		wire.Body = body
	case collection.BodyFile:
		wire.Body = &Body{Mode: "file", File: &BodyFile{Src: req.Body.FilePath}}
	}
	return wire
}

func fromVariable(v collection.Variable) Variable {
	wire := Variable{Key: v.Key, Value: v.Value, Disabled: !v.Enabled}
	if v.Type == collection.VariableSecret {
		wire.Type = "secret"
	} else {
		wire.Type = "default"
	}
	return wire
}

func fromAuth(auth *collection.Auth) *Auth {
	if auth == nil {
		return nil
	}
	wire := &Auth{Type: string(auth.Type)}
	if len(auth.Params) > 0 {
		keys := make([]string, 0, len(auth.Params))
		for key := range auth.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			wire.Params = append(wire.Params, AuthParam{Key: key, Value: auth.Params[key], Type: "string"})
		}
	}
	return wire
}
