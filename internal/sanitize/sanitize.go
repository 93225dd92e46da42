// Package sanitize redacts secret-bearing fields before a collection leaves
// the workspace. Redaction is total over the tree and idempotent: running it
// over an already-redacted collection changes nothing.
package sanitize

import (
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

// Marker replaces every redacted value.
const Marker = "[REDACTED]"

// sensitiveNameParts flags variables whose key smells like a credential even
// when it is not typed secret.
var sensitiveNameParts = []string{"secret", "password", "token", "key"}

// sensitiveHeaders are redacted by name regardless of value.
var sensitiveHeaders = []string{"authorization", "api-key", "x-api-key", "token"}

// authSecretParams maps each auth scheme to the params that hold secrets.
// Exhaustive over collection.AuthTypes; custom redacts everything since its
// params are opaque.
var authSecretParams = map[collection.AuthType][]string{
	collection.AuthNone:   nil,
	collection.AuthBearer: {"token"},
	collection.AuthBasic:  {"password"},
	collection.AuthAPIKey: {"value"},
	collection.AuthOAuth1: {"consumerSecret", "tokenSecret"},
	collection.AuthOAuth2: {"accessToken", "refreshToken", "clientSecret"},
	collection.AuthDigest: {"password"},
	collection.AuthHawk:   {"authKey"},
	collection.AuthNTLM:   {"password"},
	collection.AuthJWT:    {"secret"},
	collection.AuthAWSV4:  {"secretKey", "sessionToken"},
}

// Collection redacts a deep copy of col and returns it. The input is never
// touched.
func Collection(col *collection.Collection) *collection.Collection {
	out := col.Clone()
	for i := range out.Variables {
		redactVariable(&out.Variables[i])
	}
	redactAuth(out.Auth)
	out.Walk(func(item *collection.Item, _ *collection.Item, _ int) bool {
		redactAuth(item.Auth)
		if item.Request != nil {
			redactHeaders(item.Request)
		}
		return true
	})
	return out
}

func redactVariable(v *collection.Variable) {
	if v.Value == "" || v.Value == Marker {
		return
	}
	if v.Type == collection.VariableSecret || sensitiveKey(v.Key) {
		v.Value = Marker
	}
}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveNameParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

func redactAuth(auth *collection.Auth) {
	if auth == nil || len(auth.Params) == 0 {
		return
	}
	if auth.Type == collection.AuthCustom {
		for key := range auth.Params {
			if auth.Params[key] != "" {
				auth.Params[key] = Marker
			}
		}
		return
	}
	for _, param := range authSecretParams[auth.Type] {
		if value, ok := auth.Params[param]; ok && value != "" {
			auth.Params[param] = Marker
		}
	}
}

func redactHeaders(req *collection.Request) {
	for name, values := range req.Headers {
		if !sensitiveHeader(name) {
			continue
		}
		for i := range values {
			if values[i] != "" {
				values[i] = Marker
			}
		}
		req.Headers[name] = values
	}
}

func sensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, candidate := range sensitiveHeaders {
		if lower == candidate {
			return true
		}
	}
	return false
}
