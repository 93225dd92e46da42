package sanitize

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

func secretCollection() *collection.Collection {
	col := collection.New("Payments")
	col.Variables = []collection.Variable{
		{Key: "apiToken", Value: "abc123", Type: collection.VariableSecret, Enabled: true},
		{Key: "db_password", Value: "hunter2", Type: collection.VariableDefault, Enabled: true},
		{Key: "baseUrl", Value: "https://api.test", Type: collection.VariableDefault, Enabled: true},
	}
	col.Auth = &collection.Auth{
		Type:   collection.AuthBearer,
		Params: map[string]string{"token": "abc123"},
	}
	col.Items = []*collection.Item{
		collection.NewRequestItem("charge", &collection.Request{
			Method: "POST",
			URL:    "https://api.test/charge",
			Headers: http.Header{
				"Authorization": {"Bearer abc123"},
				"Content-Type":  {"application/json"},
			},
		}),
	}
	return col
}

func TestCollectionRedactsSecrets(t *testing.T) {
	col := secretCollection()
	out := Collection(col)

	if out.Variables[0].Value != Marker {
		t.Fatalf("secret-typed variable kept its value: %q", out.Variables[0].Value)
	}
	if out.Variables[1].Value != Marker {
		t.Fatalf("credential-looking key should be redacted by name: %q", out.Variables[1].Value)
	}
	if out.Variables[2].Value != "https://api.test" {
		t.Fatalf("plain variable must survive: %q", out.Variables[2].Value)
	}
	if out.Auth.Params["token"] != Marker {
		t.Fatalf("bearer token kept: %q", out.Auth.Params["token"])
	}
	headers := out.Items[0].Request.Headers
	if got := headers.Get("Authorization"); got != Marker {
		t.Fatalf("authorization header kept: %q", got)
	}
	if got := headers.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type should survive: %q", got)
	}
}

func TestCollectionLeavesInputUntouched(t *testing.T) {
	col := secretCollection()
	snapshot := col.Clone()
	_ = Collection(col)
	if !reflect.DeepEqual(col, snapshot) {
		t.Fatalf("sanitize mutated its input")
	}
}

func TestCollectionIsIdempotent(t *testing.T) {
	first := Collection(secretCollection())
	second := Collection(first)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second pass changed an already-redacted collection")
	}
}

func TestRedactVariableSkipsEmpty(t *testing.T) {
	v := collection.Variable{Key: "apiToken", Value: "", Type: collection.VariableSecret}
	redactVariable(&v)
	if v.Value != "" {
		t.Fatalf("empty values stay empty, got %q", v.Value)
	}
}

func TestAuthSchemeTable(t *testing.T) {
	cases := []struct {
		scheme   collection.AuthType
		params   map[string]string
		redacted []string
		kept     []string
	}{
		{collection.AuthBasic, map[string]string{"username": "alice", "password": "pw"}, []string{"password"}, []string{"username"}},
		{collection.AuthAPIKey, map[string]string{"key": "X-Api-Key", "value": "v", "in": "header"}, []string{"value"}, []string{"key", "in"}},
		{collection.AuthOAuth2, map[string]string{"accessToken": "a", "clientId": "id", "clientSecret": "s"}, []string{"accessToken", "clientSecret"}, []string{"clientId"}},
		{collection.AuthAWSV4, map[string]string{"accessKey": "AK", "secretKey": "SK", "sessionToken": "ST"}, []string{"secretKey", "sessionToken"}, []string{"accessKey"}},
		{collection.AuthCustom, map[string]string{"anything": "x", "other": "y"}, []string{"anything", "other"}, nil},
	}
	for _, tc := range cases {
		auth := &collection.Auth{Type: tc.scheme, Params: tc.params}
		redactAuth(auth)
		for _, key := range tc.redacted {
			if auth.Params[key] != Marker {
				t.Fatalf("%s: param %q not redacted: %q", tc.scheme, key, auth.Params[key])
			}
		}
		for _, key := range tc.kept {
			if auth.Params[key] == Marker {
				t.Fatalf("%s: param %q should survive", tc.scheme, key)
			}
		}
	}
}

func TestAuthSchemeTableIsExhaustive(t *testing.T) {
	for _, scheme := range collection.AuthTypes {
		if scheme == collection.AuthCustom {
			continue
		}
		if _, ok := authSecretParams[scheme]; !ok {
			t.Fatalf("scheme %s has no redaction entry", scheme)
		}
	}
}

func TestFolderAuthRedacted(t *testing.T) {
	col := collection.New("Nested")
	folder := collection.NewFolderItem("Admin")
	folder.Auth = &collection.Auth{Type: collection.AuthJWT, Params: map[string]string{"secret": "s3"}}
	col.Items = []*collection.Item{folder}

	out := Collection(col)
	if out.Items[0].Auth.Params["secret"] != Marker {
		t.Fatalf("folder-level auth kept its secret")
	}
}
