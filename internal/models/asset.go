// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetType categorizes branding resources attached to a template.
type AssetType string

const (
	AssetTypeLogo      AssetType = "logo"
	AssetTypeImage     AssetType = "image"
	AssetTypeSignature AssetType = "signature"
	AssetTypeWatermark AssetType = "watermark"
)

var assetTypes = map[AssetType]bool{
	AssetTypeLogo:      true,
	AssetTypeImage:     true,
	AssetTypeSignature: true,
	AssetTypeWatermark: true,
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool { return assetTypes[t] }

// Asset is a binary branding resource (logo, image, signature, watermark)
// belonging to a template. The bytes live in object storage; this row holds
// the metadata. At most one asset per (template, type) carries IsDefault.
type Asset struct {
	ID          uuid.UUID `json:"id"`
	TemplateID  uuid.UUID `json:"template_id"`
	AssetType   AssetType `json:"asset_type"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	S3Key       string    `json:"s3_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Width       *int      `json:"width,omitempty"`
	Height      *int      `json:"height,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsImage returns true if the asset content is an image type.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// HumanSize returns a human-readable file size string.
func (a *Asset) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case a.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(a.SizeBytes)/float64(mb))
	case a.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(a.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", a.SizeBytes)
	}
}
