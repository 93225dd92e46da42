package vars

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/errdef"
)

// IsDotEnvPath reports whether a path intentionally looks like a .env file.
func IsDotEnvPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return true
	}
	return strings.HasSuffix(base, ".env")
}

// LoadDotEnv reads a dotenv file into an Environment named after the file.
// Keys whose names look credential-bearing are imported as secrets.
func LoadDotEnv(path string) (*Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "open env file %s", path)
	}
	defer f.Close()

	env := &Environment{Name: dotEnvName(path)}
	if err := parseDotEnv(f, env); err != nil {
		return nil, err
	}
	return env, nil
}

func parseDotEnv(r io.Reader, env *Environment) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "export ")

		key, value, ok := strings.Cut(trimmed, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errdef.New(errdef.CodeParse, "dotenv line %d: expected KEY=value", lineNumber)
		}
		env.Set(key, unquote(strings.TrimSpace(value)), looksSecret(key))
	}
	if err := scanner.Err(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "read env file")
	}
	return nil
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func looksSecret(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range []string{"secret", "password", "token", "key"} {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

func dotEnvName(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if name := strings.TrimPrefix(base, ".env."); name != base && name != "" {
		return name
	}
	if base == ".env" {
		return "default"
	}
	return strings.TrimSuffix(base, ".env")
}
