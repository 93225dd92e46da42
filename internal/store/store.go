// Package store persists collections and environments as YAML documents in
// a workspace directory. Writes go through a temp file plus rename so a
// crash never leaves a half-written workspace file.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
	"github.com/unkn0wn-root/restdeck/internal/vars"
)

const (
	collectionsDir  = "collections"
	environmentsDir = "environments"
)

type Workspace struct {
	root string
}

func Open(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errdef.New(errdef.CodeConfig, "workspace path is empty")
	}
	for _, sub := range []string{collectionsDir, environmentsDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create workspace dir")
		}
	}
	return &Workspace{root: root}, nil
}

func (w *Workspace) SaveCollection(col *collection.Collection) error {
	if err := col.Validate(); err != nil {
		return errdef.Wrap(errdef.CodeStructure, err, "refusing to save invalid collection")
	}
	path := filepath.Join(w.root, collectionsDir, Slug(col.Info.Name)+".yaml")
	return writeYAML(path, docFromCollection(col))
}

func (w *Workspace) LoadCollection(name string) (*collection.Collection, error) {
	path := filepath.Join(w.root, collectionsDir, Slug(name)+".yaml")
	var doc collectionDoc
	if err := readYAML(path, &doc); err != nil {
		return nil, err
	}
	return doc.toCollection(), nil
}

func (w *Workspace) ListCollections() ([]string, error) {
	return listNames(filepath.Join(w.root, collectionsDir))
}

func (w *Workspace) DeleteCollection(name string) error {
	path := filepath.Join(w.root, collectionsDir, Slug(name)+".yaml")
	if err := os.Remove(path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "delete collection %s", name)
	}
	return nil
}

func (w *Workspace) SaveEnvironment(env *vars.Environment) error {
	if strings.TrimSpace(env.Name) == "" {
		return errdef.New(errdef.CodeStructure, "environment has no name")
	}
	path := filepath.Join(w.root, environmentsDir, Slug(env.Name)+".yaml")
	return writeYAML(path, docFromEnvironment(env))
}

func (w *Workspace) LoadEnvironment(name string) (*vars.Environment, error) {
	path := filepath.Join(w.root, environmentsDir, Slug(name)+".yaml")
	var doc environmentDoc
	if err := readYAML(path, &doc); err != nil {
		return nil, err
	}
	return doc.toEnvironment(), nil
}

func (w *Workspace) ListEnvironments() ([]string, error) {
	return listNames(filepath.Join(w.root, environmentsDir))
}

func writeYAML(path string, doc interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "encode %s", filepath.Base(path))
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "restdeck-*.yaml")
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errdef.Wrap(errdef.CodeFilesystem, err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace %s", filepath.Base(path))
	}
	return nil
}

func readYAML(path string, doc interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "read %s", filepath.Base(path))
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return errdef.Wrap(errdef.CodeParse, err, "parse %s", filepath.Base(path))
	}
	return nil
}

func listNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "list %s", dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, strings.TrimSuffix(strings.TrimSuffix(name, ".yml"), ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Slug turns a display name into a safe, stable file name.
func Slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}
