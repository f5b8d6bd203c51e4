// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package vars

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"docnexus/internal/models"
)

// Extract returns the unique placeholder names found in markup, in order
// of first appearance. Duplicate occurrences collapse to one entry.
// Extract is idempotent and never fails on malformed input.
func Extract(markup string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range tokenize(markup) {
		if tok.kind != tokenVariable || seen[tok.name] {
			continue
		}
		seen[tok.name] = true
		names = append(names, tok.name)
	}
	return names
}

// Merge appends a Variable entry for every extracted name not already
// declared, seeding the example value from samples when available.
// Existing entries are never removed or overwritten — re-scanning markup
// is additive so user-refined descriptions and examples survive.
func Merge(existing []models.Variable, names []string, samples map[string]string) []models.Variable {
	declared := make(map[string]bool, len(existing))
	for _, v := range existing {
		declared[v.Name] = true
	}

	merged := make([]models.Variable, len(existing), len(existing)+len(names))
	copy(merged, existing)

	for _, name := range names {
		if declared[name] {
			continue
		}
		merged = append(merged, models.Variable{
			Name:    name,
			Example: samples[name],
			Type:    models.VariableTypeString,
		})
		declared[name] = true
	}
	return merged
}

// Substitute replaces every well-formed placeholder in markup with the
// string form of its binding. A missing binding renders as the empty
// string so partial previews never fail. Values are formatted according
// to the declared variable type when one exists; undeclared names fall
// back to plain string conversion. The output is built in a single pass
// over the token stream, so substitution order is always document order.
func Substitute(markup string, bindings map[string]any, decls []models.Variable) string {
	types := make(map[string]models.VariableType, len(decls))
	for _, d := range decls {
		types[d.Name] = d.Type
	}

	var out strings.Builder
	out.Grow(len(markup))
	for _, tok := range tokenize(markup) {
		if tok.kind == tokenLiteral {
			out.WriteString(tok.text)
			continue
		}
		val, ok := bindings[tok.name]
		if !ok {
			continue
		}
		out.WriteString(Format(val, types[tok.name]))
	}
	return out.String()
}

// Unresolved returns the placeholder names in markup that have no binding,
// in order of first appearance.
func Unresolved(markup string, bindings map[string]any) []string {
	var missing []string
	for _, name := range Extract(markup) {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Format renders a binding value as a string according to the declared
// variable type. Unknown types and unconvertible values degrade to plain
// string conversion — formatting is best-effort, never an error.
func Format(val any, typ models.VariableType) string {
	switch typ {
	case models.VariableTypeNumber:
		if f, ok := toFloat(val); ok {
			return groupThousands(strconv.FormatFloat(f, 'f', -1, 64))
		}
	case models.VariableTypeCurrency:
		if f, ok := toFloat(val); ok {
			return "$" + groupThousands(strconv.FormatFloat(f, 'f', 2, 64))
		}
	case models.VariableTypeDate:
		if t, ok := toTime(val); ok {
			return t.Format("January 2, 2006")
		}
	}
	return stringify(val)
}

// stringify converts an arbitrary binding value to its literal string form.
func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toFloat coerces numeric binding values (JSON numbers decode as float64).
func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// toTime coerces date binding values from time.Time or common string forms.
func toTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// groupThousands inserts comma separators into the integer part of a
// formatted decimal number.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
