// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType categorizes templates by the kind of business document
// they produce.
type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeAgreement     DocumentType = "agreement"
	DocumentTypeQuote         DocumentType = "quote"
	DocumentTypeReceipt       DocumentType = "receipt"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
	DocumentTypeDeliveryNote  DocumentType = "delivery_note"
)

// documentTypes is the set of accepted document type values.
var documentTypes = map[DocumentType]bool{
	DocumentTypeInvoice:       true,
	DocumentTypeAgreement:     true,
	DocumentTypeQuote:         true,
	DocumentTypeReceipt:       true,
	DocumentTypePurchaseOrder: true,
	DocumentTypeDeliveryNote:  true,
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool { return documentTypes[t] }

// BrandingConfig holds the visual identity applied to every document
// rendered from a template. Stored as JSONB alongside the template row.
type BrandingConfig struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	FontFamily     string `json:"font_family"`
}

// DefaultBranding returns the branding used when a template declares none.
func DefaultBranding() BrandingConfig {
	return BrandingConfig{
		PrimaryColor:   "#1E40AF",
		SecondaryColor: "#64748B",
		FontFamily:     "Inter, sans-serif",
	}
}

// Template is a named, typed document definition. Its renderable content
// lives in immutable TemplateVersion rows; CurrentVersion always points at
// the highest sequence number. Deleting a template only clears IsActive.
type Template struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"` // unique, slug-like
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	DocumentType   DocumentType   `json:"document_type"`
	Branding       BrandingConfig `json:"branding"`
	CurrentVersion int            `json:"current_version"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      uuid.UUID      `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
