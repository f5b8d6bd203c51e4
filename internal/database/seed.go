// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: a minimal
// invoice template and a sample product. It is a no-op when templates
// already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	const seedHTML = `<div class="invoice">
  <img src="{{logo}}" class="logo" alt="">
  <h1>Invoice {{invoice_number}}</h1>
  <p>Billed to {{customer_name}} on {{invoice_date}}.</p>
  <table><tbody>{{order_items}}</tbody></table>
  <p class="total">Total due: {{total}}</p>
</div>`
	const seedCSS = `.invoice { max-width: 720px; margin: 0 auto; }
.logo { max-height: 64px; }
.total { font-weight: bold; color: var(--primary-color); }`
	const seedVariables = `[
		{"name": "logo", "type": "string", "required": false},
		{"name": "invoice_number", "type": "string", "required": true},
		{"name": "customer_name", "type": "string", "required": true},
		{"name": "invoice_date", "type": "date", "required": true},
		{"name": "order_items", "type": "string", "required": false},
		{"name": "total", "type": "currency", "required": true}
	]`

	var templateID string
	err = tx.QueryRow(`
		INSERT INTO templates (name, title, description, document_type, branding, current_version, created_by)
		VALUES ('standard-invoice', 'Standard Invoice', 'Default invoice layout.', 'invoice',
		        '{"primary_color":"#1E40AF","secondary_color":"#64748B","font_family":"Inter"}'::jsonb,
		        1, '00000000-0000-0000-0000-000000000000')
		RETURNING id
	`).Scan(&templateID)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO template_versions (template_id, sequence, html_content, css_content, variables, created_by)
		VALUES ($1, 1, $2, $3, $4::jsonb, '00000000-0000-0000-0000-000000000000')
	`, templateID, seedHTML, seedCSS, seedVariables)
	if err != nil {
		return fmt.Errorf("seed insert version: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO products (sku, name, description, base_price)
		VALUES ('SAMPLE-001', 'Sample Widget', 'Development fixture product.', 19.99)
	`)
	if err != nil {
		return fmt.Errorf("seed insert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development fixtures",
		"template", "standard-invoice",
		"product", "SAMPLE-001",
	)
	return nil
}
