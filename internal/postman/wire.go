// Package postman defines the Postman Collection Schema v2.1 wire format
// shared by the importer and the exporter. The decoder is tolerant of the
// shape variance real Postman exports carry (url as string or object, auth
// params as per-scheme key/value arrays).
package postman

import (
	"encoding/json"
)

const SchemaV21 = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type Document struct {
	Info     Info       `json:"info"`
	Item     []Item     `json:"item"`
	Variable []Variable `json:"variable,omitempty"`
	Auth     *Auth      `json:"auth,omitempty"`

	// Export metadata, stamped only on request.
	ExportID   string `json:"_exportId,omitempty"`
	ExportedAt string `json:"_exportedAt,omitempty"`
}

type Info struct {
	PostmanID   string `json:"_postman_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

// Item is a folder when it carries a nested item list, a request otherwise.
type Item struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Request *Request `json:"request,omitempty"`
	Item    []Item   `json:"item,omitempty"`
	Auth    *Auth    `json:"auth,omitempty"`
	Event   []Event  `json:"event,omitempty"`
}

func (i Item) IsFolder() bool {
	return i.Request == nil
}

type Request struct {
	Method      string   `json:"method,omitempty"`
	Header      []Header `json:"header,omitempty"`
	URL         URL      `json:"url,omitempty"`
	Body        *Body    `json:"body,omitempty"`
	Auth        *Auth    `json:"auth,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Header struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// URL round-trips both wire shapes: a bare string and the object form with a
// raw field. Encoding always emits the object form.
type URL struct {
	Raw string `json:"raw"`
}

func (u *URL) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		u.Raw = raw
		return nil
	}
	type urlObject URL
	var obj urlObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.Raw = obj.Raw
	return nil
}

type Body struct {
	Mode       string      `json:"mode,omitempty"`
	Raw        string      `json:"raw,omitempty"`
	URLEncoded []FormParam `json:"urlencoded,omitempty"`
	File       *BodyFile   `json:"file,omitempty"`
}

type FormParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type BodyFile struct {
	Src string `json:"src,omitempty"`
}

type Variable struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

type Script struct {
	Type string   `json:"type,omitempty"`
	Exec []string `json:"exec,omitempty"`
}

type AuthParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Auth carries the scheme name plus that scheme's key/value parameters. On
// the wire the parameters live under a field named after the scheme:
//
//	{"type": "bearer", "bearer": [{"key": "token", "value": "..."}]}
type Auth struct {
	Type   string
	Params []AuthParam
}

func (a Auth) MarshalJSON() ([]byte, error) {
	doc := map[string]interface{}{"type": a.Type}
	if a.Type != "" && a.Type != "noauth" {
		doc[a.Type] = a.Params
	}
	return json.Marshal(doc)
}

func (a *Auth) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if raw, ok := doc["type"]; ok {
		if err := json.Unmarshal(raw, &a.Type); err != nil {
			return err
		}
	}
	raw, ok := doc[a.Type]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, &a.Params); err != nil {
		// Some generators emit the params as an object instead of a list.
		var kv map[string]string
		if objErr := json.Unmarshal(raw, &kv); objErr != nil {
			return err
		}
		a.Params = a.Params[:0]
		for key, value := range kv {
			a.Params = append(a.Params, AuthParam{Key: key, Value: value, Type: "string"})
		}
	}
	return nil
}
