// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes template names into URL-friendly identifiers.
// Template names are unique per tenant and appear in API paths, so they
// are lowercased, hyphenated and capped in length.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength caps generated slugs; longer input is cut at a word boundary.
const MaxLength = 64

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug matches a complete well-formed slug.
	validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Standard Invoice (EU)" → "standard-invoice-eu"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = result[:MaxLength]
		if i := strings.LastIndex(result, "-"); i > 0 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// Valid reports whether s is already a well-formed slug of acceptable length.
func Valid(s string) bool {
	return s != "" && len(s) <= MaxLength && validSlug.MatchString(s)
}
