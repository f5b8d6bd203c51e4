// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// assetColumns lists all columns for template_assets SELECTs.
const assetColumns = `id, template_id, asset_type, name, description, s3_key,
	content_type, size_bytes, width, height, is_default, created_at`

// AssetStore provides access to template branding assets in PostgreSQL.
// Unlike versions, assets are mutable resources: they are hard-deleted and
// their default flag can move between rows.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore backed by the given database.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// scanAsset scans a single template_assets row.
func scanAsset(scanner interface{ Scan(...any) error }) (*models.Asset, error) {
	var a models.Asset
	err := scanner.Scan(
		&a.ID, &a.TemplateID, &a.AssetType, &a.Name, &a.Description, &a.S3Key,
		&a.ContentType, &a.SizeBytes, &a.Width, &a.Height, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset record. When the asset is flagged default,
// the previous default of the same (template, type) pair is cleared in the
// same transaction so two defaults are never observable.
func (s *AssetStore) Create(a *models.Asset) (*models.Asset, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if a.IsDefault {
		_, err = tx.Exec(`
			UPDATE template_assets SET is_default = FALSE
			WHERE template_id = $1 AND asset_type = $2 AND is_default
		`, a.TemplateID, a.AssetType)
		if err != nil {
			return nil, fmt.Errorf("clear previous default: %w", err)
		}
	}

	row := tx.QueryRow(`
		INSERT INTO template_assets (template_id, asset_type, name, description, s3_key, content_type, size_bytes, width, height, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+assetColumns,
		a.TemplateID, a.AssetType, a.Name, a.Description, a.S3Key,
		a.ContentType, a.SizeBytes, a.Width, a.Height, a.IsDefault,
	)
	created, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// FindByID returns an asset scoped to its owning template. Returns nil if
// the asset does not exist or belongs to a different template.
func (s *AssetStore) FindByID(templateID, assetID uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`
		SELECT `+assetColumns+`
		FROM template_assets
		WHERE id = $1 AND template_id = $2
	`, assetID, templateID)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return a, nil
}

// ListByTemplate returns a template's assets, optionally filtered by type,
// newest first.
func (s *AssetStore) ListByTemplate(templateID uuid.UUID, assetType models.AssetType) ([]models.Asset, error) {
	rows, err := s.db.Query(`
		SELECT `+assetColumns+`
		FROM template_assets
		WHERE template_id = $1 AND ($2 = '' OR asset_type = $2)
		ORDER BY created_at DESC
	`, templateID, string(assetType))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// FindDefault returns the asset to use for a (template, type) pair: the
// one flagged default, else the most recently created of that type, else
// nil when the template has no asset of that type at all.
func (s *AssetStore) FindDefault(templateID uuid.UUID, assetType models.AssetType) (*models.Asset, error) {
	row := s.db.QueryRow(`
		SELECT `+assetColumns+`
		FROM template_assets
		WHERE template_id = $1 AND asset_type = $2
		ORDER BY is_default DESC, created_at DESC
		LIMIT 1
	`, templateID, assetType)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find default asset: %w", err)
	}
	return a, nil
}

// SetDefault flags one asset as the default for its (template, type) pair,
// clearing the flag on every sibling in the same transaction. Concurrent
// calls serialize on the row updates, so at most one default survives.
func (s *AssetStore) SetDefault(templateID, assetID uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var assetType models.AssetType
	err = tx.QueryRow(`
		SELECT asset_type FROM template_assets WHERE id = $1 AND template_id = $2 FOR UPDATE
	`, assetID, templateID).Scan(&assetType)
	if err == sql.ErrNoRows {
		return apperr.NotFound("asset %s on template %s", assetID, templateID)
	}
	if err != nil {
		return fmt.Errorf("lock asset: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE template_assets SET is_default = FALSE
		WHERE template_id = $1 AND asset_type = $2 AND id <> $3 AND is_default
	`, templateID, assetType, assetID)
	if err != nil {
		return fmt.Errorf("clear defaults: %w", err)
	}

	_, err = tx.Exec(`UPDATE template_assets SET is_default = TRUE WHERE id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}

	return tx.Commit()
}

// Delete removes an asset record. The caller is responsible for removing
// the blob from object storage. Fails with NotFound when the asset does
// not belong to the template.
func (s *AssetStore) Delete(templateID, assetID uuid.UUID) error {
	result, err := s.db.Exec(`
		DELETE FROM template_assets WHERE id = $1 AND template_id = $2
	`, assetID, templateID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("asset %s on template %s", assetID, templateID)
	}
	return nil
}
