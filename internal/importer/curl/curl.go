// Package curl turns a copy-pasted curl command line into a request item.
package curl

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/importer"
)

// Parse tokenizes and interprets a single curl invocation. The method
// defaults to GET, or POST when a data flag is present without an explicit
// -X. Malformed quoting is a syntax ParseError carrying the rune offset of
// the unterminated quote.
func Parse(command string) (*collection.Item, error) {
	tokens, err := splitTokens(command)
	if err != nil {
		return nil, err
	}
	req, err := parseTokens(tokens)
	if err != nil {
		return nil, err
	}
	name := req.Method + " " + displayURL(req.URL)
	return collection.NewRequestItem(name, req), nil
}

type token struct {
	text   string
	offset int // rune offset of the token start, 1-based
}

func splitTokens(input string) ([]token, error) {
	var tokens []token
	var current strings.Builder
	start := 0
	inSingle := false
	inDouble := false
	escaped := false
	quotePos := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tokens = append(tokens, token{text: current.String(), offset: start + 1})
		current.Reset()
	}

	pos := 0
	for _, r := range input {
		pos++
		if current.Len() == 0 && !inSingle && !inDouble {
			start = pos - 1
		}
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			if inSingle {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case r == '\'' && !inDouble:
			if !inSingle {
				quotePos = pos
			}
			inSingle = !inSingle
		case r == '"' && !inSingle:
			if !inDouble {
				quotePos = pos
			}
			inDouble = !inDouble
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSyntax,
			Column:  pos,
			Message: "unterminated escape sequence",
		}
	}
	if inSingle || inDouble {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSyntax,
			Column:  quotePos,
			Message: "unterminated quoted string",
		}
	}
	flush()
	return tokens, nil
}

func parseTokens(tokens []token) (*collection.Request, error) {
	start, err := findCurl(tokens)
	if err != nil {
		return nil, err
	}

	req := &collection.Request{Method: http.MethodGet, Headers: make(http.Header)}
	var target, basicCreds string
	var dataParts []string
	explicitMethod := false
	urlEncoded := false

	for i := start + 1; i < len(tokens); i++ {
		tok := tokens[i].text
		if tok == "" {
			continue
		}
		switch {
		case tok == "-X" || tok == "--request":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			req.Method = strings.ToUpper(val)
			explicitMethod = true
		case strings.HasPrefix(tok, "-X") && len(tok) > 2:
			req.Method = strings.ToUpper(tok[2:])
			explicitMethod = true
		case strings.HasPrefix(tok, "--request="):
			req.Method = strings.ToUpper(strings.TrimPrefix(tok, "--request="))
			explicitMethod = true
		case tok == "-H" || tok == "--header":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			addHeader(req.Headers, val)
		case strings.HasPrefix(tok, "-H") && len(tok) > 2:
			addHeader(req.Headers, tok[2:])
		case strings.HasPrefix(tok, "--header="):
			addHeader(req.Headers, strings.TrimPrefix(tok, "--header="))
		case tok == "-d" || tok == "--data" || tok == "--data-ascii" || tok == "--data-raw" || tok == "--data-binary":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			dataParts = append(dataParts, val)
		case strings.HasPrefix(tok, "-d") && len(tok) > 2:
			dataParts = append(dataParts, tok[2:])
		case strings.HasPrefix(tok, "--data="):
			dataParts = append(dataParts, strings.TrimPrefix(tok, "--data="))
		case strings.HasPrefix(tok, "--data-raw="):
			dataParts = append(dataParts, strings.TrimPrefix(tok, "--data-raw="))
		case tok == "--data-urlencode":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			dataParts = append(dataParts, encodeFormValue(val))
			urlEncoded = true
		case strings.HasPrefix(tok, "--data-urlencode="):
			dataParts = append(dataParts, encodeFormValue(strings.TrimPrefix(tok, "--data-urlencode=")))
			urlEncoded = true
		case tok == "--json":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			dataParts = append(dataParts, val)
			if req.Headers.Get("Content-Type") == "" {
				req.Headers.Set("Content-Type", "application/json")
			}
		case tok == "-u" || tok == "--user":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			basicCreds = val
		case strings.HasPrefix(tok, "-u") && len(tok) > 2:
			basicCreds = tok[2:]
		case strings.HasPrefix(tok, "--user="):
			basicCreds = strings.TrimPrefix(tok, "--user=")
		case tok == "-I" || tok == "--head":
			req.Method = http.MethodHead
			explicitMethod = true
		case tok == "--compressed":
			if req.Headers.Get("Accept-Encoding") == "" {
				req.Headers.Set("Accept-Encoding", "gzip, deflate, br")
			}
		case tok == "--url":
			val, err := consumeNext(tokens, &i, tok)
			if err != nil {
				return nil, err
			}
			target = val
		case strings.HasPrefix(tok, "--url="):
			target = strings.TrimPrefix(tok, "--url=")
		case tok == "-L" || tok == "--location" || tok == "-s" || tok == "--silent" ||
			tok == "-k" || tok == "--insecure" || tok == "-v" || tok == "--verbose":
			// No-ops for the request model.
		case strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://"):
			// Prefer a real URL over a bare token grabbed earlier, which may
			// have been an unrecognized flag's argument.
			if target == "" || !strings.HasPrefix(target, "http") {
				target = tok
			}
		case strings.HasPrefix(tok, "-"):
			// Unknown flag, ignore.
		case target == "":
			target = tok
		}
	}

	if target == "" {
		return nil, &importer.ParseError{
			Kind:    importer.ErrSyntax,
			Message: "curl command has no URL",
		}
	}

	if len(dataParts) > 0 {
		body := strings.Join(dataParts, "&")
		mode := collection.BodyRaw
		mime := req.Headers.Get("Content-Type")
		if urlEncoded || (mime == "" && looksLikeForm(body)) {
			mode = collection.BodyURLEncoded
			if mime == "" {
				mime = "application/x-www-form-urlencoded"
				req.Headers.Set("Content-Type", mime)
			}
		}
		req.Body = collection.Body{Mode: mode, Raw: body, MimeType: mime}
		if !explicitMethod {
			req.Method = http.MethodPost
		}
	}

	if basicCreds != "" && req.Headers.Get("Authorization") == "" {
		req.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(basicCreds)))
	}
	if len(req.Headers) == 0 {
		req.Headers = nil
	}
	req.URL = strings.Trim(target, "\"'")
	return req, nil
}

// findCurl locates the curl word, skipping shell prompts, known wrappers and
// env assignments. Any other leading command means the input is not a curl
// invocation, even if a literal "curl" appears further along.
func findCurl(tokens []token) (int, error) {
	for i, tok := range tokens {
		word := strings.ToLower(strings.TrimLeft(tok.text, "$%>!"))
		switch word {
		case "curl":
			return i, nil
		case "", "sudo", "env", "command", "time", "noglob":
			continue
		}
		if strings.Contains(word, "=") {
			continue
		}
		return 0, &importer.ParseError{
			Kind:    importer.ErrSyntax,
			Column:  tok.offset,
			Message: "not a curl command",
		}
	}
	return 0, &importer.ParseError{
		Kind:    importer.ErrSyntax,
		Message: "not a curl command",
	}
}

func consumeNext(tokens []token, idx *int, flag string) (string, error) {
	*idx++
	if *idx >= len(tokens) {
		return "", &importer.ParseError{
			Kind:    importer.ErrSyntax,
			Column:  tokens[*idx-1].offset,
			Message: "missing argument for " + flag,
		}
	}
	return tokens[*idx].text, nil
}

func addHeader(h http.Header, raw string) {
	name, value, _ := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	h.Add(name, strings.TrimSpace(value))
}

// encodeFormValue applies curl's --data-urlencode rule: the part after the
// first "=" is percent-encoded, the name is kept as-is.
func encodeFormValue(raw string) string {
	name, value, found := strings.Cut(raw, "=")
	if !found {
		return url.QueryEscape(raw)
	}
	return name + "=" + url.QueryEscape(value)
}

func looksLikeForm(v string) bool {
	if strings.ContainsAny(v, "\n\r{}[]") {
		return false
	}
	return strings.Contains(v, "=")
}

func displayURL(raw string) string {
	if trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://"); trimmed != "" {
		return trimmed
	}
	return raw
}
