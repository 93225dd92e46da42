// Package httpfile imports `.http`/`.rest` request files: blocks separated
// by `###` lines, each with an optional name, a `METHOD URL` line, headers
// until a blank line and a free-form body. `@name = value` lines define
// file-scoped variables; `{{name}}` references are collected alongside them.
//
// The adapter is partial-success: a block without a request line is skipped
// with a warning instead of failing the whole file.
package httpfile

import (
	"bufio"
	"bytes"
	"net/http"
	"regexp"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/importer"
)

type Result struct {
	Items     []*collection.Item
	Variables map[string]string
	Warnings  []importer.Warning
}

var (
	// Method tokens are conventionally uppercase; lowercase words start
	// plain text, not a request line.
	methodRe   = regexp.MustCompile(`^([A-Z]+)\s+(\S.*)$`)
	variableRe = regexp.MustCompile(`^@([A-Za-z0-9_.-]+)\s*=\s*(.*)$`)
	templateRe = regexp.MustCompile(`\{\{([A-Za-z0-9_.-]+)\}\}`)
)

var knownMethods = map[string]struct{}{
	http.MethodGet: {}, http.MethodPost: {}, http.MethodPut: {},
	http.MethodPatch: {}, http.MethodDelete: {}, http.MethodHead: {},
	http.MethodOptions: {}, http.MethodTrace: {}, http.MethodConnect: {},
}

// Parse reads an entire file. It returns the successfully parsed request
// items, the file-scoped variable map and per-block warnings.
func Parse(data []byte) (*Result, error) {
	res := &Result{Variables: map[string]string{}}

	scanner := bufio.NewScanner(bytes.NewReader(normalizeNewlines(data)))
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	// The preamble before the first delimiter is block 0; `###` blocks count
	// from 1 so warnings match what the user sees in the file.
	block := newBlockBuilder(0, 1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "###") {
			if err := block.finish(res); err != nil {
				return nil, err
			}
			block = newBlockBuilder(block.index+1, lineNo)
			block.name = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
			continue
		}
		if err := block.processLine(lineNo, line, res); err != nil {
			return nil, err
		}
	}
	if err := block.finish(res); err != nil {
		return nil, err
	}
	return res, nil
}

func normalizeNewlines(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

type blockBuilder struct {
	index     int
	startLine int
	name      string
	method    string
	url       string
	headers   http.Header
	inBody    bool
	bodyLines []string
	sawInput  bool
}

func newBlockBuilder(index, startLine int) *blockBuilder {
	return &blockBuilder{index: index, startLine: startLine, headers: make(http.Header)}
}

func (b *blockBuilder) processLine(lineNo int, line string, res *Result) error {
	trimmed := strings.TrimSpace(line)
	collectTemplateRefs(line, res.Variables)

	if b.method == "" {
		switch {
		case trimmed == "":
			return nil
		case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//"):
			b.handleComment(trimmed)
			return nil
		default:
			if m := variableRe.FindStringSubmatch(trimmed); m != nil {
				res.Variables[m[1]] = strings.TrimSpace(m[2])
				return nil
			}
		}
		m := methodRe.FindStringSubmatch(trimmed)
		if m == nil {
			b.sawInput = true
			return nil
		}
		method := strings.ToUpper(m[1])
		if _, ok := knownMethods[method]; !ok {
			return &importer.ParseError{
				Kind:    importer.ErrUnsupportedMethod,
				Line:    lineNo,
				Message: "unsupported method " + m[1],
			}
		}
		b.method = method
		b.url = strings.TrimSpace(m[2])
		b.sawInput = true
		return nil
	}

	if b.inBody {
		b.bodyLines = append(b.bodyLines, line)
		return nil
	}

	if trimmed == "" {
		b.inBody = true
		return nil
	}
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
		return nil
	}
	if name, value, ok := strings.Cut(trimmed, ":"); ok {
		if header := strings.TrimSpace(name); header != "" {
			b.headers.Add(header, strings.TrimSpace(value))
		}
	}
	return nil
}

// handleComment picks up `# @name value` directives and otherwise uses the
// first comment of the preamble as the block name when none was set.
func (b *blockBuilder) handleComment(trimmed string) {
	text := strings.TrimSpace(strings.TrimLeft(trimmed, "#/"))
	if strings.HasPrefix(text, "@name") {
		b.name = strings.TrimSpace(strings.TrimPrefix(text, "@name"))
		return
	}
	if b.name == "" && text != "" {
		b.name = text
	}
}

func (b *blockBuilder) finish(res *Result) error {
	if b.method == "" {
		if b.sawInput {
			res.Warnings = append(res.Warnings, importer.Warning{
				Block:   b.index,
				Line:    b.startLine,
				Message: "block has no request line, skipped",
			})
		}
		return nil
	}

	req := &collection.Request{Method: b.method, URL: b.url}
	if len(b.headers) > 0 {
		req.Headers = b.headers
	}
	body := strings.TrimRight(strings.Join(b.bodyLines, "\n"), "\n")
	if strings.TrimSpace(body) != "" {
		req.Body = collection.Body{
			Mode:     collection.BodyRaw,
			Raw:      body,
			MimeType: req.Headers.Get("Content-Type"),
		}
	}

	name := b.name
	if name == "" {
		name = b.method + " " + b.url
	}
	res.Items = append(res.Items, collection.NewRequestItem(name, req))
	return nil
}

func collectTemplateRefs(line string, vars map[string]string) {
	for _, match := range templateRe.FindAllStringSubmatch(line, -1) {
		if _, ok := vars[match[1]]; !ok {
			vars[match[1]] = ""
		}
	}
}
