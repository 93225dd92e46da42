// Package export serializes collections to Postman v2.1 JSON. Secrets are
// redacted unless the caller explicitly opts in.
package export

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/restdeck/internal/collection"
	"github.com/unkn0wn-root/restdeck/internal/errdef"
	"github.com/unkn0wn-root/restdeck/internal/postman"
	"github.com/unkn0wn-root/restdeck/internal/sanitize"
)

type Options struct {
	// IncludeSensitiveData skips redaction. Off by default: exports never
	// leak secrets unless asked to.
	IncludeSensitiveData bool
	PrettyPrint          bool
	IncludeMetadata      bool

	// now overrides the metadata clock in tests.
	now func() time.Time
}

// Postman renders the collection as a Postman v2.1 document.
func Postman(col *collection.Collection, opts Options) ([]byte, error) {
	if err := col.Validate(); err != nil {
		return nil, errdef.Wrap(errdef.CodeExport, err, "refusing to export invalid collection")
	}

	prepared := col.Clone()
	if !opts.IncludeSensitiveData {
		prepared = sanitize.Collection(prepared)
	}

	doc := postman.FromCollection(prepared)
	if opts.IncludeMetadata {
		clock := opts.now
		if clock == nil {
			clock = time.Now
		}
		doc.ExportID = uuid.NewString()
		doc.ExportedAt = clock().UTC().Format(time.RFC3339)
	}

	var (
		data []byte
		err  error
	)
	if opts.PrettyPrint {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeExport, err, "encode collection")
	}
	return data, nil
}
