package curl

import (
	"encoding/base64"
	"testing"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/importer"
)

func TestParsePostWithHeaderAndBody(t *testing.T) {
	item, err := Parse(`curl -X POST https://api.test/x -H 'Content-Type: application/json' -d '{"a":1}'`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	req := item.Request
	if req.Method != "POST" {
		t.Fatalf("method: %s", req.Method)
	}
	if req.URL != "https://api.test/x" {
		t.Fatalf("url: %s", req.URL)
	}
	if got := req.Headers.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type: %q", got)
	}
	if req.Body.Mode != collection.BodyRaw || req.Body.Raw != `{"a":1}` {
		t.Fatalf("body: %+v", req.Body)
	}
	if item.Name != "POST api.test/x" {
		t.Fatalf("item name: %q", item.Name)
	}
}

func TestParseDataImpliesPost(t *testing.T) {
	item, err := Parse(`curl https://api.test/login -d 'user=alice&pass=pw'`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := item.Request
	if req.Method != "POST" {
		t.Fatalf("data without -X should default to POST, got %s", req.Method)
	}
	if req.Body.Mode != collection.BodyURLEncoded {
		t.Fatalf("key=value body should be form encoded: %+v", req.Body)
	}
	if got := req.Headers.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
		t.Fatalf("content type: %q", got)
	}
}

func TestParseExplicitMethodWins(t *testing.T) {
	item, err := Parse(`curl -X PUT https://api.test/x -d 'a=1'`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if item.Request.Method != "PUT" {
		t.Fatalf("explicit -X must win over the data default: %s", item.Request.Method)
	}
}

func TestParseBasicAuth(t *testing.T) {
	item, err := Parse(`curl -u alice:secret https://api.test/x`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret"))
	if got := item.Request.Headers.Get("Authorization"); got != want {
		t.Fatalf("authorization: %q", got)
	}
}

func TestParseDataURLEncode(t *testing.T) {
	item, err := Parse(`curl https://api.test/x --data-urlencode 'note=a b&c'`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := item.Request
	if req.Body.Mode != collection.BodyURLEncoded {
		t.Fatalf("body mode: %s", req.Body.Mode)
	}
	if req.Body.Raw != "note=a+b%26c" {
		t.Fatalf("value not percent-encoded: %q", req.Body.Raw)
	}
}

func TestParseJSONFlag(t *testing.T) {
	item, err := Parse(`curl --json '{"a":1}' https://api.test/x`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := item.Request
	if req.Method != "POST" {
		t.Fatalf("method: %s", req.Method)
	}
	if got := req.Headers.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type: %q", got)
	}
}

func TestParseShellPrefixes(t *testing.T) {
	item, err := Parse(`$ sudo curl https://api.test/x`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if item.Request.URL != "https://api.test/x" {
		t.Fatalf("url: %s", item.Request.URL)
	}
}

func TestParseIgnoresUnknownFlags(t *testing.T) {
	item, err := Parse(`curl -L -s --retry 3 -o out.txt https://api.test/x`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if item.Request.URL != "https://api.test/x" {
		t.Fatalf("flag argument mistaken for the URL: %s", item.Request.URL)
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`curl https://api.test/x -H 'Accept: text`)
	parseErr, ok := err.(*importer.ParseError)
	if !ok {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Kind != importer.ErrSyntax {
		t.Fatalf("kind: %s", parseErr.Kind)
	}
	if parseErr.Column != 28 {
		t.Fatalf("column should point at the opening quote, got %d", parseErr.Column)
	}
}

func TestParseNotCurl(t *testing.T) {
	for _, command := range []string{
		`wget https://api.test/x`,
		`wget https://api.test/x && curl https://api.test/y`,
		`echo curl https://api.test/x`,
	} {
		_, err := Parse(command)
		parseErr, ok := err.(*importer.ParseError)
		if !ok || parseErr.Kind != importer.ErrSyntax {
			t.Fatalf("%q: expected syntax error, got %v", command, err)
		}
	}
}

func TestParseEnvAssignmentPrefix(t *testing.T) {
	item, err := Parse(`env FOO=bar curl https://api.test/x`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if item.Request.URL != "https://api.test/x" {
		t.Fatalf("url: %s", item.Request.URL)
	}
}

func TestParseMissingURL(t *testing.T) {
	_, err := Parse(`curl -X POST`)
	parseErr, ok := err.(*importer.ParseError)
	if !ok || parseErr.Kind != importer.ErrSyntax {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestParseMissingFlagArgument(t *testing.T) {
	_, err := Parse(`curl https://api.test/x -H`)
	parseErr, ok := err.(*importer.ParseError)
	if !ok || parseErr.Kind != importer.ErrSyntax {
		t.Fatalf("expected syntax error, got %v", err)
	}
}
