package store

import (
	"net/http"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/vars"
)

// On-disk YAML shapes. Kept separate from the canonical model so the model
// can evolve without rewriting every workspace file.

type collectionDoc struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Schema      string        `yaml:"schema,omitempty"`
	Auth        *authDoc      `yaml:"auth,omitempty"`
	Variables   []variableDoc `yaml:"variables,omitempty"`
	Items       []itemDoc     `yaml:"items,omitempty"`
}

type itemDoc struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind"`
	Request  *requestDoc `yaml:"request,omitempty"`
	Auth     *authDoc    `yaml:"auth,omitempty"`
	Events   []eventDoc  `yaml:"events,omitempty"`
	Children []itemDoc   `yaml:"children,omitempty"`
}

type eventDoc struct {
	Listen string   `yaml:"listen"`
	Script []string `yaml:"script,omitempty"`
}

type requestDoc struct {
	Method      string            `yaml:"method"`
	URL         string            `yaml:"url"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	BodyMode    string            `yaml:"bodyMode,omitempty"`
	Body        string            `yaml:"body,omitempty"`
	BodyFile    string            `yaml:"bodyFile,omitempty"`
	MimeType    string            `yaml:"mimeType,omitempty"`
	Description string            `yaml:"description,omitempty"`
}

type variableDoc struct {
	Key      string `yaml:"key"`
	Value    string `yaml:"value"`
	Secret   bool   `yaml:"secret,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

type authDoc struct {
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params,omitempty"`
}

type environmentDoc struct {
	Name      string        `yaml:"name"`
	Variables []variableDoc `yaml:"variables,omitempty"`
}

func docFromCollection(col *collection.Collection) collectionDoc {
	doc := collectionDoc{
		ID:          col.Info.ID,
		Name:        col.Info.Name,
		Description: col.Info.Description,
		Schema:      col.Info.SchemaVersion,
		Auth:        docFromAuth(col.Auth),
	}
	for _, v := range col.Variables {
		doc.Variables = append(doc.Variables, docFromVariable(v))
	}
	doc.Items = docFromItems(col.Items)
	return doc
}

func docFromItems(items []*collection.Item) []itemDoc {
	out := make([]itemDoc, 0, len(items))
	for _, item := range items {
		entry := itemDoc{
			ID:   item.ID,
			Name: item.Name,
			Kind: string(item.Kind),
			Auth: docFromAuth(item.Auth),
		}
		for _, ev := range item.Events {
			entry.Events = append(entry.Events, eventDoc{
				Listen: ev.Listen,
				Script: append([]string(nil), ev.Script...),
			})
		}
		if item.Request != nil {
			entry.Request = docFromRequest(item.Request)
		}
		if len(item.Children) > 0 {
			entry.Children = docFromItems(item.Children)
		}
		out = append(out, entry)
	}
	return out
}

func docFromRequest(req *collection.Request) *requestDoc {
	doc := &requestDoc{
		Method:      req.Method,
		URL:         req.URL,
		BodyMode:    string(req.Body.Mode),
		Body:        req.Body.Raw,
		BodyFile:    req.Body.FilePath,
		MimeType:    req.Body.MimeType,
		Description: req.Description,
	}
	if len(req.Headers) > 0 {
		doc.Headers = make(map[string]string, len(req.Headers))
		for name, values := range req.Headers {
			doc.Headers[name] = strings.Join(values, ", ")
		}
	}
	return doc
}

func docFromVariable(v collection.Variable) variableDoc {
	return variableDoc{
		Key:      v.Key,
		Value:    v.Value,
		Secret:   v.Type == collection.VariableSecret,
		Disabled: !v.Enabled,
	}
}

func docFromAuth(auth *collection.Auth) *authDoc {
	if auth == nil {
		return nil
	}
	return &authDoc{Type: string(auth.Type), Params: auth.Params}
}

func (d collectionDoc) toCollection() *collection.Collection {
	col := &collection.Collection{
		Info: collection.Info{
			ID:            d.ID,
			Name:          d.Name,
			Description:   d.Description,
			SchemaVersion: d.Schema,
		},
		Auth: d.Auth.toAuth(),
	}
	if col.Info.SchemaVersion == "" {
		col.Info.SchemaVersion = collection.SchemaVersion
	}
	for _, v := range d.Variables {
		col.Variables = append(col.Variables, v.toVariable())
	}
	col.Items = toItems(d.Items)
	return col
}

func toItems(docs []itemDoc) []*collection.Item {
	if len(docs) == 0 {
		return nil
	}
	out := make([]*collection.Item, 0, len(docs))
	for _, doc := range docs {
		item := &collection.Item{
			ID:   doc.ID,
			Name: doc.Name,
			Kind: collection.ItemKind(doc.Kind),
			Auth: doc.Auth.toAuth(),
		}
		for _, ev := range doc.Events {
			item.Events = append(item.Events, collection.Event{
				Listen: ev.Listen,
				Script: append([]string(nil), ev.Script...),
			})
		}
		if item.ID == "" {
			item.ID = collection.NewID()
		}
		if doc.Request != nil {
			item.Kind = collection.KindRequest
			item.Request = doc.Request.toRequest()
		} else if item.Kind == "" {
			item.Kind = collection.KindFolder
		}
		item.Children = toItems(doc.Children)
		out = append(out, item)
	}
	return out
}

func (d *requestDoc) toRequest() *collection.Request {
	req := &collection.Request{
		Method:      d.Method,
		URL:         d.URL,
		Description: d.Description,
		Body: collection.Body{
			Mode:     collection.BodyMode(d.BodyMode),
			Raw:      d.Body,
			FilePath: d.BodyFile,
			MimeType: d.MimeType,
		},
	}
	if len(d.Headers) > 0 {
		req.Headers = make(http.Header, len(d.Headers))
		for name, value := range d.Headers {
			req.Headers.Set(name, value)
		}
	}
	return req
}

func (d variableDoc) toVariable() collection.Variable {
	kind := collection.VariableDefault
	if d.Secret {
		kind = collection.VariableSecret
	}
	return collection.Variable{Key: d.Key, Value: d.Value, Type: kind, Enabled: !d.Disabled}
}

func (d *authDoc) toAuth() *collection.Auth {
	if d == nil || d.Type == "" {
		return nil
	}
	return &collection.Auth{Type: collection.AuthType(d.Type), Params: d.Params}
}

func docFromEnvironment(env *vars.Environment) environmentDoc {
	doc := environmentDoc{Name: env.Name}
	for _, v := range env.Variables {
		doc.Variables = append(doc.Variables, docFromVariable(v))
	}
	return doc
}

func (d environmentDoc) toEnvironment() *vars.Environment {
	env := &vars.Environment{Name: d.Name}
	for _, v := range d.Variables {
		env.Variables = append(env.Variables, v.toVariable())
	}
	return env
}
