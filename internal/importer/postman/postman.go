// Package postman imports Postman Collection v2.1 JSON documents.
package postman

import (
	"encoding/json"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/importer"
	"github.com/unkn0wn-root/restdeck/internal/postman"
)

// Parse decodes and shape-validates a Postman collection export. Malformed
// JSON and missing required fields surface as schema ParseErrors.
func Parse(data []byte) (*collection.Collection, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Message: "not a JSON object: " + err.Error(),
		}
	}
	if _, ok := probe["info"]; !ok {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Field:   "info",
			Message: "collection is missing the info block",
		}
	}
	if raw, ok := probe["item"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &importer.ParseError{
				Kind:    importer.ErrSchema,
				Field:   "item",
				Message: "item must be an array",
			}
		}
	}

	var doc postman.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Message: "decode collection: " + err.Error(),
		}
	}
	if strings.TrimSpace(doc.Info.Name) == "" {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Field:   "info.name",
			Message: "collection has no name",
		}
	}

	col := postman.ToCollection(&doc)
	if err := col.Validate(); err != nil {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Message: err.Error(),
		}
	}
	return col, nil
}

// Sniff reports whether the payload looks like a Postman collection.
func Sniff(data []byte) bool {
	var probe struct {
		Info *struct {
			Schema string `json:"schema"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Info == nil {
		return false
	}
	return strings.Contains(probe.Info.Schema, "getpostman.com")
}
