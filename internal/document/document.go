// Package document defines the JSON-decoded document shape the engine
// recognizes and the canonical stringification used by the inverted index.
package document

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document is the conventional JSON-decoded form of a stored payload: a
// path, a field mapping, and a monotonically increasing version.
type Document struct {
	Path    string         `json:"path"`
	Fields  map[string]any `json:"fields"`
	Version int64          `json:"version"`
}

// Collection returns the first segment of the document's path, the
// grouping key the inverted index uses.
func (d Document) Collection() string {
	if i := strings.IndexByte(d.Path, '/'); i >= 0 {
		return d.Path[:i]
	}
	return d.Path
}

// Decode parses raw bytes as a Document. A payload that isn't a JSON object
// with at least a "path" field is not a Document; callers treat decode
// failure as "not a document" rather than a hard error (§4.6 and §4.9 both
// tolerate non-document payloads).
func Decode(data []byte) (Document, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, false
	}
	path, ok := raw["path"].(string)
	if !ok || path == "" {
		return Document{}, false
	}
	doc := Document{Path: path}
	if fields, ok := raw["fields"].(map[string]any); ok {
		doc.Fields = fields
	}
	if v, ok := raw["version"].(float64); ok {
		doc.Version = int64(v)
	}
	return doc, true
}

// Stringify renders a decoded JSON value into the inverted index's
// canonical token form: strings verbatim, numbers via shortest round-trip
// decimal, booleans as true/false, null as "null", composites as their JSON
// encoding.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
