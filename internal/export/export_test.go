package export

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
	"github.com/unkn0wn-root/restdeck/internal/sanitize"
)

func exportCollection() *collection.Collection {
	col := collection.New("Payments")
	col.Variables = []collection.Variable{
		{Key: "apiToken", Value: "abc123", Type: collection.VariableSecret, Enabled: true},
		{Key: "baseUrl", Value: "https://api.test", Type: collection.VariableDefault, Enabled: true},
	}
	col.Items = []*collection.Item{
		collection.NewRequestItem("charge", &collection.Request{
			Method:  "POST",
			URL:     "{{baseUrl}}/charge",
			Headers: http.Header{"Authorization": {"Bearer abc123"}},
		}),
	}
	return col
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	return doc
}

func TestPostmanRedactsByDefault(t *testing.T) {
	data, err := Postman(exportCollection(), Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if bytes.Contains(data, []byte("abc123")) {
		t.Fatalf("secret leaked into export:\n%s", data)
	}
	if !bytes.Contains(data, []byte(sanitize.Marker)) {
		t.Fatalf("expected redaction marker in export:\n%s", data)
	}

	doc := decode(t, data)
	vars := doc["variable"].([]any)
	first := vars[0].(map[string]any)
	if first["value"] != sanitize.Marker {
		t.Fatalf("apiToken value: %v", first["value"])
	}
	second := vars[1].(map[string]any)
	if second["value"] != "https://api.test" {
		t.Fatalf("plain variable should survive: %v", second["value"])
	}
}

func TestPostmanIncludeSensitiveData(t *testing.T) {
	data, err := Postman(exportCollection(), Options{IncludeSensitiveData: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(data, []byte("abc123")) {
		t.Fatalf("opt-in export should keep the secret:\n%s", data)
	}
}

func TestPostmanLeavesInputUntouched(t *testing.T) {
	col := exportCollection()
	if _, err := Postman(col, Options{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if col.Variables[0].Value != "abc123" {
		t.Fatalf("export redacted the in-memory collection")
	}
}

func TestPostmanMetadata(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	opts := Options{IncludeMetadata: true, now: func() time.Time { return stamp }}
	data, err := Postman(exportCollection(), opts)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	doc := decode(t, data)
	if doc["_exportedAt"] != "2026-03-14T09:26:53Z" {
		t.Fatalf("_exportedAt: %v", doc["_exportedAt"])
	}
	if id, _ := doc["_exportId"].(string); id == "" {
		t.Fatalf("_exportId missing")
	}

	bare, err := Postman(exportCollection(), Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, present := decode(t, bare)["_exportId"]; present {
		t.Fatalf("metadata should be opt-in")
	}
}

func TestPostmanPrettyPrint(t *testing.T) {
	pretty, err := Postman(exportCollection(), Options{PrettyPrint: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  ") {
		t.Fatalf("pretty output should be indented")
	}
	compact, err := Postman(exportCollection(), Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if bytes.ContainsRune(compact, '\n') {
		t.Fatalf("compact output should be a single line")
	}
}

func TestPostmanRejectsInvalidCollection(t *testing.T) {
	col := exportCollection()
	col.Items[0].Request = nil
	_, err := Postman(col, Options{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if errdef.CodeOf(err) != errdef.CodeExport {
		t.Fatalf("expected export code, got %v", err)
	}
}
