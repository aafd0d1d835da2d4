package blueprint

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldIdentifier turns free text into a Mermaid-safe token made of ASCII
// letters, digits and '_'. Accents are stripped ("Añadido" becomes
// "Anadido"), runs of whitespace and '-' become a single underscore, other
// runes are dropped, and a leading digit gets a '_' prefix. Distinct names
// may fold to the same token; collisions are passed through.
func foldIdentifier(s, placeholder string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range stripMarks(strings.TrimSpace(s)) {
		switch {
		case unicode.IsSpace(r), r == '-':
			pendingSep = true
			continue
		case isIdentRune(r):
		default:
			continue
		}
		if b.Len() == 0 && r >= '0' && r <= '9' {
			b.WriteByte('_')
		} else if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return placeholder
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// stripMarks decomposes s and drops the combining marks.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// labelBreakers are characters that close or open a Mermaid node shape or
// edge label.
const labelBreakers = "\"'()[]{}|"

// sanitizeLabel strips shape-breaking characters and flattens line breaks.
func sanitizeLabel(s, placeholder string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(labelBreakers, r) {
			return -1
		}
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return placeholder
	}
	return cleaned
}
