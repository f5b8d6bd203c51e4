// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// version.go holds the template_versions queries shared by TemplateStore.
// Versions are append-only: there is an insert and there are reads, and
// nothing else. Lookups are keyed by (template_id, sequence) so fetching
// any historical version is a single indexed read, not a chain walk.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// versionColumns lists all columns for template_versions SELECTs.
const versionColumns = `id, template_id, sequence, html_content, css_content,
	variables, forked_from, created_by, created_at`

// querier abstracts *sql.DB and *sql.Tx for version reads.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// scanVersion scans a single template_versions row.
func scanVersion(scanner interface{ Scan(...any) error }) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	var variables []byte
	err := scanner.Scan(
		&v.ID, &v.TemplateID, &v.Sequence, &v.HTMLContent, &v.CSSContent,
		&variables, &v.ForkedFrom, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(variables) > 0 {
		if err := json.Unmarshal(variables, &v.Variables); err != nil {
			return nil, fmt.Errorf("decode variables: %w", err)
		}
	}
	return &v, nil
}

// insertVersion writes one immutable version row inside the caller's
// transaction and returns it.
func insertVersion(tx *sql.Tx, templateID uuid.UUID, sequence int, html, css string, variables []models.Variable, forkedFrom *uuid.UUID, createdBy uuid.UUID) (*models.TemplateVersion, error) {
	encoded, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	row := tx.QueryRow(`
		INSERT INTO template_versions (template_id, sequence, html_content, css_content, variables, forked_from, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+versionColumns,
		templateID, sequence, html, css, encoded, forkedFrom, createdBy,
	)
	v, err := scanVersion(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("insert version %d: %w", sequence, err)
	}
	return v, nil
}

// findVersion fetches one version by (template, sequence). Returns nil if
// it does not exist.
func findVersion(q querier, templateID uuid.UUID, sequence int) (*models.TemplateVersion, error) {
	row := q.QueryRow(`
		SELECT `+versionColumns+`
		FROM template_versions
		WHERE template_id = $1 AND sequence = $2
	`, templateID, sequence)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

// findVersionTx is findVersion over an open transaction.
func findVersionTx(tx *sql.Tx, templateID uuid.UUID, sequence int) (*models.TemplateVersion, error) {
	return findVersion(tx, templateID, sequence)
}

// GetVersion returns one immutable version of a template. Returns nil if
// the template or the sequence number does not exist.
func (s *TemplateStore) GetVersion(templateID uuid.UUID, sequence int) (*models.TemplateVersion, error) {
	return findVersion(s.db, templateID, sequence)
}

// ListVersions returns all versions of a template, newest first.
func (s *TemplateStore) ListVersions(templateID uuid.UUID) ([]models.TemplateVersion, error) {
	rows, err := s.db.Query(`
		SELECT `+versionColumns+`
		FROM template_versions
		WHERE template_id = $1
		ORDER BY sequence DESC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.TemplateVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// UpdateVariableMeta refines the description, example, type, or required
// flag of variables on the current version of a template without creating
// a new version. Only metadata changes are allowed — names, markup, and
// styling stay immutable, which is why this touches the variables column
// alone and ignores entries whose names are not already declared.
func (s *TemplateStore) UpdateVariableMeta(templateID uuid.UUID, updates []models.Variable) (*models.TemplateVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT current_version FROM templates WHERE id = $1 FOR UPDATE`, templateID).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("template %s", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock template: %w", err)
	}

	version, err := findVersionTx(tx, templateID, current)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperr.NotFound("template %s version %d", templateID, current)
	}

	byName := make(map[string]models.Variable, len(updates))
	for _, u := range updates {
		byName[u.Name] = u
	}
	for i, v := range version.Variables {
		if u, ok := byName[v.Name]; ok {
			version.Variables[i].Description = u.Description
			version.Variables[i].Example = u.Example
			if u.Type != "" {
				version.Variables[i].Type = u.Type
			}
			version.Variables[i].Required = u.Required
		}
	}

	encoded, err := json.Marshal(version.Variables)
	if err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE template_versions SET variables = $1 WHERE id = $2
	`, encoded, version.ID); err != nil {
		return nil, fmt.Errorf("update variable metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}
