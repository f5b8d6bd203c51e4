// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// ProductStore handles product and inventory persistence.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore backed by the given database.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// Create inserts a product and, when provided, its inventory row in one
// transaction. A duplicate SKU fails with a Validation error.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := &models.Product{}
	err = tx.QueryRow(`
		INSERT INTO products (sku, name, description, base_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sku, name, description, base_price, created_at
	`, p.SKU, p.Name, p.Description, p.BasePrice).Scan(
		&created.ID, &created.SKU, &created.Name, &created.Description,
		&created.BasePrice, &created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("product SKU %q already exists", p.SKU)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	if p.Inventory != nil {
		tiers, err := json.Marshal(p.Inventory.PricingTiers)
		if err != nil {
			return nil, fmt.Errorf("encode pricing tiers: %w", err)
		}
		inv := &models.Inventory{}
		var tiersRaw []byte
		err = tx.QueryRow(`
			INSERT INTO inventory (product_id, quantity, pricing_tiers)
			VALUES ($1, $2, $3)
			RETURNING product_id, quantity, pricing_tiers, updated_at
		`, created.ID, p.Inventory.Quantity, tiers).Scan(
			&inv.ProductID, &inv.Quantity, &tiersRaw, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("create inventory: %w", err)
		}
		if err := json.Unmarshal(tiersRaw, &inv.PricingTiers); err != nil {
			return nil, fmt.Errorf("decode pricing tiers: %w", err)
		}
		created.Inventory = inv
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// FindBySKU returns a product with its inventory joined in. Returns nil if
// not found.
func (s *ProductStore) FindBySKU(sku string) (*models.Product, error) {
	p := &models.Product{}
	var invProductID sql.NullString
	var invQty sql.NullInt64
	var tiersRaw []byte
	var invUpdated sql.NullTime

	err := s.db.QueryRow(`
		SELECT p.id, p.sku, p.name, p.description, p.base_price, p.created_at,
		       i.product_id, i.quantity, i.pricing_tiers, i.updated_at
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.sku = $1
	`, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.BasePrice, &p.CreatedAt,
		&invProductID, &invQty, &tiersRaw, &invUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	if invProductID.Valid {
		inv := &models.Inventory{
			ProductID: p.ID,
			Quantity:  int(invQty.Int64),
			UpdatedAt: invUpdated.Time,
		}
		if len(tiersRaw) > 0 {
			if err := json.Unmarshal(tiersRaw, &inv.PricingTiers); err != nil {
				return nil, fmt.Errorf("decode pricing tiers: %w", err)
			}
		}
		p.Inventory = inv
	}
	return p, nil
}

// List returns products ordered by SKU.
func (s *ProductStore) List(limit, offset int) ([]models.Product, error) {
	rows, err := s.db.Query(`
		SELECT id, sku, name, description, base_price, created_at
		FROM products
		ORDER BY sku
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.BasePrice, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertInventory sets the stock quantity and pricing tiers for a product,
// creating the inventory row on first write. Fails with NotFound for an
// unknown SKU.
func (s *ProductStore) UpsertInventory(sku string, quantity int, tiers []models.PricingTier) (*models.Product, error) {
	encoded, err := json.Marshal(tiers)
	if err != nil {
		return nil, fmt.Errorf("encode pricing tiers: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO inventory (product_id, quantity, pricing_tiers, updated_at)
		SELECT id, $2, $3, NOW() FROM products WHERE sku = $1
		ON CONFLICT (product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    pricing_tiers = EXCLUDED.pricing_tiers,
		    updated_at = NOW()
	`, sku, quantity, encoded)
	if err != nil {
		return nil, fmt.Errorf("upsert inventory: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, apperr.NotFound("product %q", sku)
	}

	return s.FindBySKU(sku)
}
