package record

import (
	_ "embed"
	"errors"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"dpclient/internal/apperr"
)

//go:embed schema.json
var schemaJSON string

var recordSchema = jsonschema.MustCompileString("dpclient.schema.json", schemaJSON)

// validate checks a decoded JSON value against the record schema.
func validate(doc any) error {
	err := recordSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return apperr.Wrap(apperr.CorruptData, err, "schema")
	}
	leaf := firstLeaf(ve)
	return apperr.New(apperr.CorruptData, "%s: %s", pointerToPath(leaf.InstanceLocation), leaf.Message)
}

// firstLeaf follows the first cause chain down to the most specific error.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath turns a JSON pointer such as "/tasks/build" into "tasks.build".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "document"
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
