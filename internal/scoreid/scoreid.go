// Package scoreid implements the canonical score-identifier scheme shared
// across services: a normalized title and composer joined by a delimiter.
// Legacy slugs produced by older clients do not follow this scheme and are
// rewritten by the repair tooling.
package scoreid

import (
	"fmt"
	"strings"

	"github.com/mirubato/mirubato/internal/common"
)

const (
	// Delimiter joins the normalized title and composer.
	Delimiter = ":"

	// AltDelimiter is used when either component contains the default
	// delimiter, so the id stays unambiguous to parse.
	AltDelimiter = "|"
)

var charReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
)

// Normalize lower-cases a component, trims it, collapses internal whitespace
// and maps typographic quote and dash characters to their ASCII forms.
// Normalize is idempotent.
func Normalize(s string) string {
	s = charReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

// Generate composes the canonical id for a title and composer. The composer
// may be empty; the delimiter is still present so the two parts always parse
// apart. Generate is idempotent over its own output components.
func Generate(title, composer string) string {
	t := Normalize(title)
	c := Normalize(composer)

	delim := Delimiter
	if strings.Contains(t, Delimiter) || strings.Contains(c, Delimiter) {
		delim = AltDelimiter
	}
	return t + delim + c
}

// Parse splits a canonical id back into its title and composer components.
func Parse(id string) (title, composer string, err error) {
	delim := Delimiter
	if strings.Contains(id, AltDelimiter) {
		delim = AltDelimiter
	}
	parts := strings.SplitN(id, delim, 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: score id %q is not canonical", common.ErrValidation, id)
	}
	return parts[0], parts[1], nil
}

// IsCanonical reports whether an id already follows the canonical scheme:
// it parses into components that are fixed points of Normalize, joined by
// the delimiter Generate would have chosen.
func IsCanonical(id string) bool {
	title, composer, err := Parse(id)
	if err != nil {
		return false
	}
	return Generate(title, composer) == id
}
