// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"docnexus/internal/models"
)

// documentColumns lists all columns for generated_documents SELECTs.
const documentColumns = `id, template_id, version_sequence, bindings, s3_key,
	size_bytes, checksum, created_by, created_at`

// DocumentStore records generated documents: which template version was
// rendered, with which bindings, and where the PDF artifact was stored.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new DocumentStore backed by the given database.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// scanDocument scans a single generated_documents row.
func scanDocument(scanner interface{ Scan(...any) error }) (*models.GeneratedDocument, error) {
	var d models.GeneratedDocument
	var bindings []byte
	err := scanner.Scan(
		&d.ID, &d.TemplateID, &d.VersionSequence, &bindings, &d.S3Key,
		&d.SizeBytes, &d.Checksum, &d.CreatedBy, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(bindings) > 0 {
		if err := json.Unmarshal(bindings, &d.Bindings); err != nil {
			return nil, fmt.Errorf("decode bindings: %w", err)
		}
	}
	return &d, nil
}

// Create inserts a generated document record and returns it.
func (s *DocumentStore) Create(d *models.GeneratedDocument) (*models.GeneratedDocument, error) {
	bindings, err := json.Marshal(d.Bindings)
	if err != nil {
		return nil, fmt.Errorf("encode bindings: %w", err)
	}
	row := s.db.QueryRow(`
		INSERT INTO generated_documents (template_id, version_sequence, bindings, s3_key, size_bytes, checksum, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+documentColumns,
		d.TemplateID, d.VersionSequence, bindings, d.S3Key, d.SizeBytes, d.Checksum, d.CreatedBy,
	)
	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return created, nil
}

// FindByID returns a generated document by ID. Returns nil if not found.
func (s *DocumentStore) FindByID(id uuid.UUID) (*models.GeneratedDocument, error) {
	row := s.db.QueryRow(`SELECT `+documentColumns+` FROM generated_documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

// ListByTemplate returns a template's generated documents, newest first.
func (s *DocumentStore) ListByTemplate(templateID uuid.UUID, limit, offset int) ([]models.GeneratedDocument, error) {
	rows, err := s.db.Query(`
		SELECT `+documentColumns+`
		FROM generated_documents
		WHERE template_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, templateID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.GeneratedDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}
