// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package vars implements the template variable engine: it tokenizes
// markup into literal and {{placeholder}} tokens, extracts declared
// variable names, and substitutes bindings at render time. Malformed
// placeholder syntax is never an error — anything that does not parse as
// a well-formed placeholder stays in the output as literal text.
package vars

import "strings"

// tokenKind distinguishes the two token types produced by the tokenizer.
type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenVariable
)

// token is one segment of tokenized markup. For variable tokens, name
// holds the trimmed identifier and text the raw source (so the token can
// be re-emitted verbatim if needed). Literal tokens only use text.
type token struct {
	kind tokenKind
	text string
	name string
}

// tokenize splits markup into a flat token stream in a single pass.
// A variable token is an opening "{{", optional whitespace, a valid
// identifier (letter or underscore first, then letters, digits or
// underscores), optional whitespace, and a closing "}}". Everything
// else — unbalanced braces, nested braces, invalid identifiers — is
// literal text.
func tokenize(markup string) []token {
	var tokens []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(markup) {
		open := strings.Index(markup[i:], "{{")
		if open < 0 {
			lit.WriteString(markup[i:])
			break
		}
		open += i

		// Literal run before the opening braces.
		lit.WriteString(markup[i:open])

		end := strings.Index(markup[open+2:], "}}")
		if end < 0 {
			// No closing braces anywhere: the rest is literal.
			lit.WriteString(markup[open:])
			break
		}
		end += open + 2

		inner := markup[open+2 : end]
		name := strings.TrimSpace(inner)
		if isIdentifier(name) && !strings.ContainsAny(inner, "{}") {
			flush()
			tokens = append(tokens, token{
				kind: tokenVariable,
				text: markup[open : end+2],
				name: name,
			})
			i = end + 2
			continue
		}

		// Malformed placeholder: emit the opening braces as literal and
		// rescan from just past them, so nested forms like "{{{{x}}" still
		// find the inner valid placeholder.
		lit.WriteString("{{")
		i = open + 2
	}

	flush()
	return tokens
}

// isIdentifier reports whether s is a valid placeholder name: a letter or
// underscore followed by letters, digits, or underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
