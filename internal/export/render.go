package export

import (
	"encoding/json"
	"fmt"
)

// Render encodes exp in the named format.
func Render(exp *ReviewExport, format string) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		out, err := json.MarshalIndent(exp, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatMarkdown:
		return []byte(Markdown(exp)), nil
	case FormatMermaid:
		return []byte(GenerateMermaid(exp)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want %s, %s or %s)", format, FormatJSON, FormatMarkdown, FormatMermaid)
	}
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatMermaid:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}
