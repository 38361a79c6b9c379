// Package contenttype maps media types onto the source formats the
// parsers accept.
package contenttype

import (
	"fmt"
	"mime"
	"strings"

	"github.com/usestring/ctxdts/pkg/value"
)

// Category represents a broad content-type classification.
type Category string

const (
	JSON  Category = "json"
	YAML  Category = "yaml"
	Text  Category = "text"
	Other Category = "other"
)

// Classify returns the broad content category for a content-type header value.
// Parameters (charset, ...) are ignored. Malformed values are matched
// after lower-casing.
func Classify(contentType string) Category {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case mediaType == "":
		return Other
	// application/json, application/vnd.*+json
	case strings.Contains(mediaType, "json"):
		return JSON
	// application/yaml, text/yaml, application/x-yaml
	case strings.Contains(mediaType, "yaml"):
		return YAML
	case strings.HasPrefix(mediaType, "text/"):
		return Text
	default:
		return Other
	}
}

// SourceFormat resolves a format name ("json", "yaml", "yml", or empty for
// JSON) or a media type to a parser format.
func SourceFormat(s string) (value.Format, error) {
	if f, err := value.ParseFormat(s); err == nil {
		return f, nil
	}
	if !strings.Contains(s, "/") {
		return "", fmt.Errorf("unknown format: %q", s)
	}

	switch Classify(s) {
	case JSON:
		return value.FormatJSON, nil
	case YAML:
		return value.FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported media type: %q", s)
	}
}
