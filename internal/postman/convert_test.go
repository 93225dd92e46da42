package postman

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

func roundTripCollection() *collection.Collection {
	return &collection.Collection{
		Info: collection.Info{
			ID:            "col-1",
			Name:          "Payments",
			Description:   "Billing API",
			SchemaVersion: SchemaV21,
		},
		Variables: []collection.Variable{
			{Key: "apiToken", Value: "abc123", Type: collection.VariableSecret, Enabled: true},
			{Key: "baseUrl", Value: "https://api.test", Type: collection.VariableDefault, Enabled: true},
		},
		Auth: &collection.Auth{Type: collection.AuthBearer, Params: map[string]string{"token": "abc123"}},
		Items: []*collection.Item{
			{
				ID:   "f-1",
				Name: "Cards",
				Kind: collection.KindFolder,
				Children: []*collection.Item{
					{
						ID:   "r-1",
						Name: "Charge",
						Kind: collection.KindRequest,
						Request: &collection.Request{
							Method:  "POST",
							URL:     "{{baseUrl}}/charge",
							Headers: http.Header{"Content-Type": {"application/json"}},
							Body:    collection.Body{Mode: collection.BodyRaw, Raw: `{"amount": 5}`},
						},
					},
				},
			},
			{
				ID:   "r-2",
				Name: "Login",
				Kind: collection.KindRequest,
				Request: &collection.Request{
					Method: "POST",
					URL:    "{{baseUrl}}/login",
					Body:   collection.Body{Mode: collection.BodyURLEncoded, Raw: "user=alice&pass=pw"},
				},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := roundTripCollection()
	rebuilt := ToCollection(FromCollection(original))

	if rebuilt.Info != original.Info {
		t.Fatalf("info changed:\n got %+v\nwant %+v", rebuilt.Info, original.Info)
	}
	if !reflect.DeepEqual(rebuilt.Variables, original.Variables) {
		t.Fatalf("variables changed:\n got %+v\nwant %+v", rebuilt.Variables, original.Variables)
	}
	if !reflect.DeepEqual(rebuilt.Auth, original.Auth) {
		t.Fatalf("auth changed:\n got %+v\nwant %+v", rebuilt.Auth, original.Auth)
	}

	charge := rebuilt.Items[0].Children[0]
	if !reflect.DeepEqual(charge, original.Items[0].Children[0]) {
		t.Fatalf("request item changed:\n got %+v\nwant %+v", charge, original.Items[0].Children[0])
	}

	login := rebuilt.Items[1].Request
	if login.Body.Mode != collection.BodyURLEncoded || login.Body.Raw != "user=alice&pass=pw" {
		t.Fatalf("form body changed: %+v", login.Body)
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	data, err := json.Marshal(FromCollection(roundTripCollection()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rebuilt := ToCollection(&doc)
	if rebuilt.Info.Name != "Payments" || len(rebuilt.Items) != 2 {
		t.Fatalf("wire round trip lost structure: %+v", rebuilt)
	}
	if rebuilt.Auth.Params["token"] != "abc123" {
		t.Fatalf("auth params lost on the wire: %+v", rebuilt.Auth)
	}
}

func TestFromCollectionEmitsEmptyItemArray(t *testing.T) {
	doc := FromCollection(collection.New("Empty"))
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(probe["item"]) != "[]" {
		t.Fatalf("item must encode as an empty array, got %s", probe["item"])
	}
}

func TestURLWireForms(t *testing.T) {
	var fromString URL
	if err := json.Unmarshal([]byte(`"https://api.test/x"`), &fromString); err != nil {
		t.Fatalf("string form: %v", err)
	}
	var fromObject URL
	if err := json.Unmarshal([]byte(`{"raw": "https://api.test/x"}`), &fromObject); err != nil {
		t.Fatalf("object form: %v", err)
	}
	if fromString != fromObject {
		t.Fatalf("wire forms disagree: %+v vs %+v", fromString, fromObject)
	}
}

func TestAuthObjectParams(t *testing.T) {
	var auth Auth
	payload := `{"type": "basic", "basic": {"username": "alice", "password": "pw"}}`
	if err := json.Unmarshal([]byte(payload), &auth); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	params := map[string]string{}
	for _, p := range auth.Params {
		params[p.Key] = p.Value
	}
	if params["username"] != "alice" || params["password"] != "pw" {
		t.Fatalf("object-form params: %+v", auth.Params)
	}
}
