// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedDocument records one PDF produced by the render pipeline: which
// template version it came from, the variable bindings used, and where the
// artifact was stored. The PDF bytes themselves live in object storage.
type GeneratedDocument struct {
	ID              uuid.UUID         `json:"id"`
	TemplateID      uuid.UUID         `json:"template_id"`
	VersionSequence int               `json:"version_sequence"`
	Bindings        map[string]string `json:"bindings"`
	S3Key           string            `json:"s3_key"`
	SizeBytes       int64             `json:"size_bytes"`
	Checksum        string            `json:"checksum"` // SHA-256 of the rendered HTML
	CreatedBy       uuid.UUID         `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
}
