// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and the reverse mapping from a category slug to a display name.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// whitespace matches runs of any whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// nonAlphanumeric matches anything that isn't a letter, digit, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string. Accents are
// folded to their base letter and other punctuation is dropped.
// Example: "Café Résumé 2026!" → "cafe-resume-2026"
func Generate(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC), s)
	if err != nil {
		folded = s
	}

	result := strings.ToLower(strings.TrimSpace(folded))
	result = whitespace.ReplaceAllString(result, "-")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// WithSuffix returns the n-th collision candidate for base: base itself for
// n <= 1, then "base-2", "base-3" and so on.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// ToName turns a hyphenated category slug back into a display name by
// capitalising every word: "admit-cards" → "Admit Cards". Empty segments
// produced by repeated hyphens are dropped.
func ToName(s string) string {
	caser := cases.Title(language.English)
	parts := strings.Split(s, "-")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, caser.String(p))
	}
	return strings.Join(words, " ")
}

// isMark reports whether r is a combining mark left over after decomposition.
func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
