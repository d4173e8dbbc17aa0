package document

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// headingRe matches the first level-one markdown heading.
var headingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// Title derives a display title for a document. The first "# " heading wins;
// otherwise the filename is humanized ("release-notes_v2.md" becomes
// "Release Notes V2").
func Title(content, filename string) string {
	if m := headingRe.FindStringSubmatch(content); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}

	base := filepath.Base(filename)
	if !strings.HasSuffix(strings.ToLower(base), ".md") {
		return base
	}
	base = base[:len(base)-3]
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
