// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// VariableType declares how a placeholder value is formatted at render time.
type VariableType string

const (
	VariableTypeString   VariableType = "string"
	VariableTypeNumber   VariableType = "number"
	VariableTypeDate     VariableType = "date"
	VariableTypeCurrency VariableType = "currency"
	VariableTypeBoolean  VariableType = "boolean"
)

// Variable describes one {{placeholder}} referenced by a version's markup.
// Entries are produced by scanning the markup but description and example
// remain user-editable afterwards.
type Variable struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Example     string       `json:"example,omitempty"`
	Type        VariableType `json:"type"`
	Required    bool         `json:"required"`
}

// TemplateVersion is an immutable snapshot of a template's renderable
// content. Sequence numbers are gapless and strictly increasing per
// template, starting at 1. ForkedFrom links a duplicated template's first
// version back to the source version it was copied from; it is a lookup
// reference only, never ownership.
type TemplateVersion struct {
	ID          uuid.UUID  `json:"id"`
	TemplateID  uuid.UUID  `json:"template_id"`
	Sequence    int        `json:"sequence"`
	HTMLContent string     `json:"html_content"`
	CSSContent  string     `json:"css_content,omitempty"`
	Variables   []Variable `json:"variables"`
	ForkedFrom  *uuid.UUID `json:"forked_from,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}
