package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from name. Accented Latin letters are
// folded to ASCII by stripping combining marks after NFD decomposition.
//
// Examples:
//   - "Porções" → "porcoes"
//   - "Pratos Executivos" → "pratos-executivos"
//   - "Açaí & Sobremesas!" → "acai-sobremesas"
func Generate(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}

	return strings.Trim(slugRegexp.ReplaceAllString(folded, "-"), "-")
}
