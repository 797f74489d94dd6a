// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)

	// Decompose accented characters and strip combining marks.
	// Product and category names are frequently Vietnamese ("Ly Sứ Trắng"),
	// so accent folding has to happen before the ASCII filter.
	accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify converts a display name to a canonical URL-safe slug.
// The slug is the stable public identifier for categories and products.
//
// Normalization rules:
//  1. Fold accented characters to ASCII (đ → d, ứ → u)
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores, and slashes with dashes
//  4. Remove remaining non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes and trim leading/trailing ones
//
// Examples:
//
//	"Ly Sứ Trắng"   → "ly-su-trang"
//	"Cold Cup 24oz" → "cold-cup-24oz"
//	"  Mugs / Cups" → "mugs-cups"
func Slugify(input string) string {
	s := input

	// Vietnamese đ is a base letter, not a combining mark, so fold it by hand.
	s = strings.ReplaceAll(s, "đ", "d")
	s = strings.ReplaceAll(s, "Đ", "D")

	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}
