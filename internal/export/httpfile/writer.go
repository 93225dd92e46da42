// Package httpfile renders a collection to the `.http` text format and
// writes it atomically.
package httpfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
	"github.com/unkn0wn-root/restdeck/internal/sanitize"
)

type Options struct {
	IncludeSensitiveData bool
	OverwriteExisting    bool
	HeaderComment        string
}

// Render produces the `.http` text for a collection: a header comment, file
// variables, then one `###` block per request in display order. Folder
// nesting flattens into `folder / request` block names.
func Render(col *collection.Collection, opts Options) string {
	prepared := col
	if !opts.IncludeSensitiveData {
		prepared = sanitize.Collection(col)
	}

	var b strings.Builder
	renderHeader(&b, opts.HeaderComment)
	renderVariables(&b, prepared.Variables)

	first := true
	var path []string
	prepared.Walk(func(item *collection.Item, parent *collection.Item, depth int) bool {
		path = trimPath(path, depth-1)
		if item.Kind == collection.KindFolder {
			path = append(path, item.Name)
			return true
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		renderRequest(&b, blockName(path, item.Name), item.Request)
		return true
	})
	return b.String()
}

// WriteFile renders and writes via a temp file plus rename so a failed write
// never leaves a truncated export behind.
func WriteFile(col *collection.Collection, dst string, opts Options) error {
	if strings.TrimSpace(dst) == "" {
		return errdef.New(errdef.CodeExport, "destination path is empty")
	}
	if !opts.OverwriteExisting {
		if _, err := os.Stat(dst); err == nil {
			return errdef.New(errdef.CodeExport, "destination %s already exists", dst)
		}
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create directory")
	}
	tmp, err := os.CreateTemp(dir, "restdeck-*.http")
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.WriteString(tmp, Render(col, opts)); err != nil {
		_ = tmp.Close()
		return errdef.Wrap(errdef.CodeFilesystem, err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "close temp file")
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace export file")
	}
	return nil
}

func renderHeader(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("# ")
		b.WriteString(strings.TrimSpace(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderVariables(b *strings.Builder, vars []collection.Variable) {
	wrote := false
	for _, v := range vars {
		if !v.Enabled {
			continue
		}
		fmt.Fprintf(b, "@%s = %s\n", v.Key, v.Value)
		wrote = true
	}
	if wrote {
		b.WriteString("\n")
	}
}

func renderRequest(b *strings.Builder, name string, req *collection.Request) {
	fmt.Fprintf(b, "### %s\n", name)
	if req == nil {
		return
	}
	fmt.Fprintf(b, "%s %s\n", req.Method, req.URL)

	names := make([]string, 0, len(req.Headers))
	for header := range req.Headers {
		names = append(names, header)
	}
	sort.Strings(names)
	for _, header := range names {
		for _, value := range req.Headers[header] {
			fmt.Fprintf(b, "%s: %s\n", header, value)
		}
	}

	if req.Body.Mode != collection.BodyNone && req.Body.Raw != "" {
		b.WriteString("\n")
		b.WriteString(req.Body.Raw)
		b.WriteString("\n")
	}
}

func blockName(path []string, name string) string {
	if len(path) == 0 {
		return name
	}
	return strings.Join(path, " / ") + " / " + name
}

func trimPath(path []string, depth int) []string {
	if depth < 0 {
		depth = 0
	}
	if len(path) > depth {
		return path[:depth]
	}
	return path
}
