// Package vars resolves {{name}} template references against a provider
// chain: environment values override collection values, both sit above the
// process environment. Dynamic names ($uuid, $timestamp, ...) are generated
// per expansion.
package vars

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/restdeck/internal/collection"
)

type Provider interface {
	Resolve(name string) (string, bool)
	Label() string
}

type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve tries each provider in order. A dotted name like
// "production.api_key" also matches a provider labeled "production" asked
// for "api_key".
func (r *Resolver) Resolve(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	for _, provider := range r.providers {
		if value, ok := provider.Resolve(trimmed); ok {
			return value, true
		}
	}
	prefix, rest, ok := strings.Cut(trimmed, ".")
	if !ok || rest == "" {
		return "", false
	}
	for _, provider := range r.providers {
		if strings.EqualFold(strings.TrimSpace(provider.Label()), prefix) {
			if value, ok := provider.Resolve(rest); ok {
				return value, true
			}
		}
	}
	return "", false
}

var templateVarPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ExpandTemplates replaces every {{name}} occurrence. Unknown names stay in
// place and are reported together in an UndefinedError.
func (r *Resolver) ExpandTemplates(input string) (string, error) {
	var missing []string
	result := templateVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := templateVarPattern.FindStringSubmatch(match)
		name := strings.TrimSpace(sub[1])
		if name == "" {
			return match
		}
		if strings.HasPrefix(name, "$") {
			if dynamic, ok := resolveDynamic(name); ok {
				return dynamic
			}
		}
		if value, ok := r.Resolve(name); ok {
			return value
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		return result, &UndefinedError{Names: missing}
	}
	return result, nil
}

// UndefinedError lists every template name the provider chain could not
// resolve, in order of appearance.
type UndefinedError struct {
	Names []string
}

func (e *UndefinedError) Error() string {
	return "undefined variables: " + strings.Join(e.Names, ", ")
}

func resolveDynamic(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "$uuid", "$guid":
		return uuid.NewString(), true
	case "$timestamp":
		return fmt.Sprintf("%d", time.Now().Unix()), true
	case "$timestampiso8601":
		return time.Now().UTC().Format(time.RFC3339), true
	case "$randomint":
		n, _ := rand.Int(rand.Reader, big.NewInt(1<<62))
		return n.String(), true
	default:
		return "", false
	}
}

// Environment is a named variable set, persisted alongside collections.
type Environment struct {
	Name      string
	Variables []collection.Variable
}

// Set inserts or replaces a variable by key.
func (e *Environment) Set(key, value string, secret bool) {
	kind := collection.VariableDefault
	if secret {
		kind = collection.VariableSecret
	}
	for i := range e.Variables {
		if e.Variables[i].Key == key {
			e.Variables[i].Value = value
			e.Variables[i].Type = kind
			e.Variables[i].Enabled = true
			return
		}
	}
	e.Variables = append(e.Variables, collection.Variable{
		Key: key, Value: value, Type: kind, Enabled: true,
	})
}

// Provider exposes the environment's enabled variables to a resolver chain.
func (e *Environment) Provider() Provider {
	values := make(map[string]string, len(e.Variables))
	for _, v := range e.Variables {
		if v.Enabled {
			values[strings.ToLower(v.Key)] = v.Value
		}
	}
	return &mapProvider{label: e.Name, values: values}
}

// CollectionProvider exposes a collection's enabled variables.
func CollectionProvider(col *collection.Collection) Provider {
	values := make(map[string]string, len(col.Variables))
	for _, v := range col.Variables {
		if v.Enabled {
			values[strings.ToLower(v.Key)] = v.Value
		}
	}
	return &mapProvider{label: col.Info.Name, values: values}
}

type mapProvider struct {
	label  string
	values map[string]string
}

func (p *mapProvider) Resolve(name string) (string, bool) {
	value, ok := p.values[strings.ToLower(name)]
	return value, ok
}

func (p *mapProvider) Label() string {
	return p.label
}

// OSProvider reads from the process environment, trying the exact name then
// its uppercase form.
type OSProvider struct{}

func (OSProvider) Resolve(name string) (string, bool) {
	if value, ok := os.LookupEnv(name); ok {
		return value, true
	}
	return os.LookupEnv(strings.ToUpper(name))
}

func (OSProvider) Label() string {
	return "env"
}
