// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets resolves a template's branding assets (logos, signatures,
// watermarks) into embeddable inline representations. Uploaded files are
// validated before any storage write; embedding produces base64 data URIs
// so rendered documents never need network access.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"docnexus/internal/apperr"
	"docnexus/internal/models"
	"docnexus/internal/store"
)

// allowedAssetTypes defines MIME types accepted for branding uploads.
var allowedAssetTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// BlobStore is the subset of the storage client the resolver needs.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body []byte) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}

// Resolver validates, stores and embeds template branding assets.
type Resolver struct {
	assets   *store.AssetStore
	blobs    BlobStore
	bucket   string
	maxBytes int64
}

// NewResolver creates a Resolver writing blobs to the given bucket.
func NewResolver(assets *store.AssetStore, blobs BlobStore, bucket string, maxBytes int64) *Resolver {
	return &Resolver{assets: assets, blobs: blobs, bucket: bucket, maxBytes: maxBytes}
}

// MaxBytes returns the configured upload byte ceiling.
func (r *Resolver) MaxBytes() int64 { return r.maxBytes }

// UploadInput carries a validated-pending asset upload.
type UploadInput struct {
	AssetType   models.AssetType
	Name        string
	Description *string
	Filename    string
	Data        []byte
	IsDefault   bool
}

// Upload validates the file, writes the blob and records the asset.
// Validation failures happen before any storage write. When the asset is
// flagged default, the previous default of the same type is cleared in the
// same transaction as the insert.
func (r *Resolver) Upload(ctx context.Context, templateID uuid.UUID, in UploadInput) (*models.Asset, error) {
	contentType, width, height, err := r.validate(in)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(in.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	key := fmt.Sprintf("assets/%s/%s%s", templateID, uuid.New(), ext)

	if err := r.blobs.Upload(ctx, r.bucket, key, contentType, in.Data); err != nil {
		return nil, apperr.External("asset upload", err)
	}

	asset := &models.Asset{
		TemplateID:  templateID,
		AssetType:   in.AssetType,
		Name:        in.Name,
		Description: in.Description,
		S3Key:       key,
		ContentType: contentType,
		SizeBytes:   int64(len(in.Data)),
		Width:       width,
		Height:      height,
		IsDefault:   in.IsDefault,
	}
	created, err := r.assets.Create(asset)
	if err != nil {
		// The blob is orphaned if the insert fails; clean it up best effort.
		if delErr := r.blobs.Delete(ctx, r.bucket, key); delErr != nil {
			slog.Warn("orphaned asset blob cleanup failed", "key", key, "error", delErr)
		}
		return nil, err
	}
	return created, nil
}

// validate checks the asset type, byte ceiling and content type, and probes
// pixel dimensions for raster images. SVGs have no intrinsic pixel size.
func (r *Resolver) validate(in UploadInput) (contentType string, width, height *int, err error) {
	if !in.AssetType.Valid() {
		return "", nil, nil, apperr.Validation("unknown asset type %q", in.AssetType)
	}
	if len(in.Data) == 0 {
		return "", nil, nil, apperr.Validation("empty file")
	}
	if int64(len(in.Data)) > r.maxBytes {
		return "", nil, nil, apperr.Validation("file exceeds maximum size of %d bytes", r.maxBytes)
	}

	sniff := in.Data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	contentType = http.DetectContentType(sniff)

	// DetectContentType reports SVGs as XML or plain text.
	if strings.HasSuffix(strings.ToLower(in.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	if !allowedAssetTypes[contentType] {
		return "", nil, nil, apperr.Validation("file type %q is not allowed", contentType)
	}

	if contentType != "image/svg+xml" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Data))
		if err != nil {
			return "", nil, nil, apperr.Validation("unreadable image: %v", err)
		}
		width, height = &cfg.Width, &cfg.Height
	}
	return contentType, width, height, nil
}

// ResolveDefault returns the asset used for a (template, type) pair: the
// one flagged default, or the most recently created of that type, or nil
// when the template has none.
func (r *Resolver) ResolveDefault(templateID uuid.UUID, assetType models.AssetType) (*models.Asset, error) {
	return r.assets.FindDefault(templateID, assetType)
}

// SetDefault flags an asset as the default for its type, clearing the flag
// on siblings in the same transaction.
func (r *Resolver) SetDefault(templateID, assetID uuid.UUID) error {
	return r.assets.SetDefault(templateID, assetID)
}

// Embed reads the asset's blob and returns it as a base64 data URI, ready
// for inline insertion into HTML markup.
func (r *Resolver) Embed(ctx context.Context, asset *models.Asset) (string, error) {
	data, err := r.blobs.Download(ctx, r.bucket, asset.S3Key)
	if err != nil {
		return "", apperr.External("asset download", err)
	}
	return DataURI(asset.ContentType, data), nil
}

// Remove deletes the asset record and its blob. The record goes first so a
// blob-store failure cannot leave a dangling database row.
func (r *Resolver) Remove(ctx context.Context, templateID, assetID uuid.UUID) error {
	asset, err := r.assets.FindByID(templateID, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return apperr.NotFound("asset %s", assetID)
	}
	if err := r.assets.Delete(templateID, assetID); err != nil {
		return err
	}
	if err := r.blobs.Delete(ctx, r.bucket, asset.S3Key); err != nil {
		slog.Warn("asset blob delete failed", "key", asset.S3Key, "error", err)
	}
	return nil
}

// DataURI encodes raw bytes as a base64 data URI for the given MIME type.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// extensionFromType maps accepted MIME types to file extensions.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
