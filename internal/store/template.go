// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
	"docnexus/internal/vars"
)

// templateColumns lists all columns for templates SELECTs.
const templateColumns = `id, name, title, description, document_type, branding,
	current_version, is_active, created_by, created_at, updated_at`

// TemplateStore handles template and version persistence. It owns the
// version lineage invariants: every template has at least one version,
// sequences are gapless, and current_version always points at the highest
// sequence. Version rows are never updated after insert.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// scanTemplate scans a single templates row.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var t models.Template
	var branding []byte
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Title, &t.Description, &t.DocumentType, &branding,
		&t.CurrentVersion, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(branding) > 0 {
		if err := json.Unmarshal(branding, &t.Branding); err != nil {
			return nil, fmt.Errorf("decode branding: %w", err)
		}
	}
	return &t, nil
}

// Create inserts a new template together with its initial version in one
// transaction. The version's variable list is derived by scanning the
// markup. A duplicate name fails with a Validation error before any write
// is visible.
func (s *TemplateStore) Create(t *models.Template, html, css string) (*models.Template, *models.TemplateVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	branding, err := json.Marshal(t.Branding)
	if err != nil {
		return nil, nil, fmt.Errorf("encode branding: %w", err)
	}

	row := tx.QueryRow(`
		INSERT INTO templates (name, title, description, document_type, branding, current_version, created_by)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		RETURNING `+templateColumns,
		t.Name, t.Title, t.Description, t.DocumentType, branding, t.CreatedBy,
	)
	created, err := scanTemplate(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, apperr.Validation("template name %q already exists", t.Name)
		}
		return nil, nil, fmt.Errorf("create template: %w", err)
	}

	variables := vars.Merge(nil, vars.Extract(html), nil)
	version, err := insertVersion(tx, created.ID, 1, html, css, variables, nil, t.CreatedBy)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return created, version, nil
}

// CreateVersion appends the next immutable version for a template and
// advances current_version, all in one transaction. The template row is
// locked for the duration so two concurrent updates can never compute the
// same sequence number; the unique (template_id, sequence) index is the
// backstop. Passing supplied variables overrides the previous version's
// declarations; either way the markup is re-scanned additively.
func (s *TemplateStore) CreateVersion(templateID uuid.UUID, html, css string, supplied []models.Variable, createdBy uuid.UUID) (*models.TemplateVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	var active bool
	err = tx.QueryRow(`
		SELECT current_version, is_active FROM templates WHERE id = $1 FOR UPDATE
	`, templateID).Scan(&current, &active)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("template %s", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock template: %w", err)
	}
	if !active {
		return nil, apperr.NotFound("template %s is inactive", templateID)
	}

	base := supplied
	if base == nil {
		prev, err := findVersionTx(tx, templateID, current)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			base = prev.Variables
		}
	}
	variables := vars.Merge(base, vars.Extract(html), nil)

	version, err := insertVersion(tx, templateID, current+1, html, css, variables, nil, createdBy)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("concurrent version update on template %s", templateID)
		}
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE templates SET current_version = $1, updated_at = NOW() WHERE id = $2
	`, version.Sequence, templateID)
	if err != nil {
		return nil, fmt.Errorf("advance current version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}

// Duplicate forks a template: a new template whose version 1 copies the
// source's current content and carries a forked-from reference to the
// source version. Content is copied, never shared, so later edits to
// either template are independent.
func (s *TemplateStore) Duplicate(sourceID uuid.UUID, newName string, createdBy uuid.UUID) (*models.Template, *models.TemplateVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = $1`, sourceID)
	source, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil, apperr.NotFound("template %s", sourceID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find source template: %w", err)
	}

	sourceVersion, err := findVersionTx(tx, sourceID, source.CurrentVersion)
	if err != nil {
		return nil, nil, err
	}
	if sourceVersion == nil {
		return nil, nil, apperr.NotFound("template %s version %d", sourceID, source.CurrentVersion)
	}

	branding, err := json.Marshal(source.Branding)
	if err != nil {
		return nil, nil, fmt.Errorf("encode branding: %w", err)
	}

	row = tx.QueryRow(`
		INSERT INTO templates (name, title, description, document_type, branding, current_version, created_by)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		RETURNING `+templateColumns,
		newName, source.Title+" (Copy)", source.Description, source.DocumentType, branding, createdBy,
	)
	fork, err := scanTemplate(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, apperr.Validation("template name %q already exists", newName)
		}
		return nil, nil, fmt.Errorf("create fork: %w", err)
	}

	forkVersion, err := insertVersion(
		tx, fork.ID, 1,
		sourceVersion.HTMLContent, sourceVersion.CSSContent, sourceVersion.Variables,
		&sourceVersion.ID, createdBy,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return fork, forkVersion, nil
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindByName retrieves a template by its unique name. Returns nil if not found.
func (s *TemplateStore) FindByName(name string) (*models.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE name = $1`, name)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by name: %w", err)
	}
	return t, nil
}

// List returns templates, optionally filtered by document type, newest
// first. Inactive templates are included only when activeOnly is false.
func (s *TemplateStore) List(documentType models.DocumentType, activeOnly bool, limit, offset int) ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT `+templateColumns+`
		FROM templates
		WHERE ($1 = '' OR document_type = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, string(documentType), activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// UpdateBranding replaces a template's branding configuration. Branding is
// template-level state, not version content, so no new version is created.
func (s *TemplateStore) UpdateBranding(id uuid.UUID, branding models.BrandingConfig) error {
	encoded, err := json.Marshal(branding)
	if err != nil {
		return fmt.Errorf("encode branding: %w", err)
	}
	result, err := s.db.Exec(`
		UPDATE templates SET branding = $1, updated_at = NOW() WHERE id = $2 AND is_active
	`, encoded, id)
	if err != nil {
		return fmt.Errorf("update branding: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("template %s", id)
	}
	return nil
}

// Deactivate soft-deletes a template. Version history is retained; the
// template simply stops being renderable.
func (s *TemplateStore) Deactivate(id uuid.UUID) error {
	result, err := s.db.Exec(`
		UPDATE templates SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("template %s", id)
	}
	return nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
