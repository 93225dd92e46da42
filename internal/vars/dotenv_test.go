package vars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
)

func writeEnvFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoadDotEnv(t *testing.T) {
	path := writeEnvFile(t, ".env.staging", `
# infra
API_TOKEN="abc123"
export BASE_URL=https://api.test
EMPTY=
; ini-style comment
QUOTED='single'
`)
	env, err := LoadDotEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if env.Name != "staging" {
		t.Fatalf("name from file: %q", env.Name)
	}

	byKey := map[string]collection.Variable{}
	for _, v := range env.Variables {
		byKey[v.Key] = v
	}
	if v := byKey["API_TOKEN"]; v.Value != "abc123" || v.Type != collection.VariableSecret {
		t.Fatalf("API_TOKEN: %+v", v)
	}
	if v := byKey["BASE_URL"]; v.Value != "https://api.test" || v.Type != collection.VariableDefault {
		t.Fatalf("BASE_URL: %+v", v)
	}
	if v := byKey["QUOTED"]; v.Value != "single" {
		t.Fatalf("QUOTED: %+v", v)
	}
	if v, ok := byKey["EMPTY"]; !ok || v.Value != "" {
		t.Fatalf("EMPTY: %+v", v)
	}
}

func TestLoadDotEnvMalformedLine(t *testing.T) {
	path := writeEnvFile(t, ".env", "GOOD=1\nnot a pair\n")
	_, err := LoadDotEnv(path)
	if errdef.CodeOf(err) != errdef.CodeParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
	if errdef.CodeOf(err) != errdef.CodeFilesystem {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

func TestDotEnvNames(t *testing.T) {
	cases := map[string]string{
		".env":         "default",
		".env.local":   "local",
		"staging.env":  "staging",
		"/a/b/.env.ci": "ci",
	}
	for path, want := range cases {
		if got := dotEnvName(path); got != want {
			t.Fatalf("dotEnvName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestIsDotEnvPath(t *testing.T) {
	for _, path := range []string{".env", ".env.local", "deploy/staging.env"} {
		if !IsDotEnvPath(path) {
			t.Fatalf("%q should look like a dotenv file", path)
		}
	}
	for _, path := range []string{"settings.toml", "envfile", "environment.yaml"} {
		if IsDotEnvPath(path) {
			t.Fatalf("%q should not look like a dotenv file", path)
		}
	}
}
