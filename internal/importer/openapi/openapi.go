// Package openapi imports an OpenAPI 3 document as a collection, one folder
// per first tag with untagged operations at the root.
package openapi

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/importer"
)

func Parse(ctx context.Context, data []byte) (*collection.Collection, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Message: "load OpenAPI spec: " + err.Error(),
		}
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSchema,
			Message: "validate OpenAPI spec: " + err.Error(),
		}
	}

	name := strings.TrimSpace(doc.Info.Title)
	if name == "" {
		name = "OpenAPI import"
	}
	col := collection.New(name)
	col.Info.Description = doc.Info.Description

	base := serverBase(doc)
	col.Variables = append(col.Variables, collection.Variable{
		Key: "baseUrl", Value: base, Type: collection.VariableDefault, Enabled: true,
	})

	folders := map[string]*collection.Item{}
	for _, path := range sortedPaths(doc) {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, entry := range pathOperations(item) {
			reqItem := buildRequest(path, entry.method, entry.op)
			tag := firstTag(entry.op)
			if tag == "" {
				col.Items = append(col.Items, reqItem)
				continue
			}
			folder, ok := folders[tag]
			if !ok {
				folder = collection.NewFolderItem(tag)
				folders[tag] = folder
				col.Items = append(col.Items, folder)
			}
			folder.Children = append(folder.Children, reqItem)
		}
	}
	return col, nil
}

type operationEntry struct {
	method string
	op     *openapi3.Operation
}

func pathOperations(item *openapi3.PathItem) []operationEntry {
	candidates := []operationEntry{
		{http.MethodGet, item.Get},
		{http.MethodPut, item.Put},
		{http.MethodPost, item.Post},
		{http.MethodDelete, item.Delete},
		{http.MethodOptions, item.Options},
		{http.MethodHead, item.Head},
		{http.MethodPatch, item.Patch},
		{http.MethodTrace, item.Trace},
	}
	ops := candidates[:0]
	for _, entry := range candidates {
		if entry.op != nil {
			ops = append(ops, entry)
		}
	}
	return ops
}

func sortedPaths(doc *openapi3.T) []string {
	if doc.Paths == nil {
		return nil
	}
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func buildRequest(path, method string, op *openapi3.Operation) *collection.Item {
	name := strings.TrimSpace(op.Summary)
	if name == "" {
		name = op.OperationID
	}
	if name == "" {
		name = method + " " + path
	}

	url := "{{baseUrl}}" + templatePath(path)
	if query := queryParams(op); query != "" {
		url += "?" + query
	}
	req := &collection.Request{
		Method:      method,
		URL:         url,
		Description: strings.TrimSpace(op.Description),
	}
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if content := op.RequestBody.Value.Content.Get("application/json"); content != nil {
			req.Headers = http.Header{"Content-Type": {"application/json"}}
			req.Body = collection.Body{Mode: collection.BodyRaw, Raw: "{}", MimeType: "application/json"}
		}
	}
	return collection.NewRequestItem(name, req)
}

// templatePath rewrites {param} path segments as {{param}} variables.
func templatePath(path string) string {
	replaced := strings.ReplaceAll(path, "{", "{{")
	return strings.ReplaceAll(replaced, "}", "}}")
}

func queryParams(op *openapi3.Operation) string {
	var parts []string
	for _, ref := range op.Parameters {
		if ref == nil || ref.Value == nil || ref.Value.In != "query" {
			continue
		}
		if !ref.Value.Required {
			continue
		}
		parts = append(parts, ref.Value.Name+"={{"+ref.Value.Name+"}}")
	}
	return strings.Join(parts, "&")
}

func firstTag(op *openapi3.Operation) string {
	if len(op.Tags) == 0 {
		return ""
	}
	return strings.TrimSpace(op.Tags[0])
}

func serverBase(doc *openapi3.T) string {
	for _, server := range doc.Servers {
		if server != nil && strings.TrimSpace(server.URL) != "" {
			return strings.TrimRight(strings.TrimSpace(server.URL), "/")
		}
	}
	return "http://localhost"
}
