package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filename canonicalisation. Upload-time sanitisation may rewrite a
// file name (illegal characters replaced) while chunk metadata retains
// the original string, or vice versa, so a single canonical key is not
// enough: matching tests an ordered list of candidate keys and the
// first hit wins.

// deaccent decomposes to NFD, drops combining marks, and recomposes.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalKey returns the base comparison key for a file name: trimmed,
// lowercased, diacritics stripped. Idempotent.
func CanonicalKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	return s
}

// CandidateKeys returns the ordered candidate canonical keys for a file
// name, base key first, deduplicated:
//
//  1. the base canonical key
//  2. whitespace runs collapsed to a single underscore
//  3. underscore runs converted to single spaces
//  4. non-ASCII runes stripped entirely
//
// Each variant is a fixed point: running it through CandidateKeys again
// reproduces it in first position.
func CandidateKeys(name string) []string {
	base := CanonicalKey(name)
	variants := []string{
		base,
		underscoreVariant(base),
		spacedVariant(base),
		asciiVariant(base),
	}

	keys := make([]string, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		keys = append(keys, v)
	}
	return keys
}

// underscoreVariant collapses whitespace runs to single underscores.
func underscoreVariant(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// spacedVariant converts underscore runs to single spaces, collapsing
// any resulting whitespace runs.
func spacedVariant(s string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == '_' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(replaced), " ")
}

// asciiVariant strips every non-ASCII rune.
func asciiVariant(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
