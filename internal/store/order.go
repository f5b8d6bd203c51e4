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

// OrderStore handles order and order item persistence.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates a new OrderStore backed by the given database.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts an order with its line items in one transaction. The
// total is computed from the items, and stock is decremented for every
// line whose SKU has an inventory row. A duplicate external order ID
// fails with a Validation error.
func (s *OrderStore) Create(o *models.Order) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	total := 0.0
	for i := range o.Items {
		total += o.Items[i].Subtotal()
	}

	var externalID sql.NullString
	if o.ExternalOrderID != "" {
		externalID = sql.NullString{String: o.ExternalOrderID, Valid: true}
	}

	created := &models.Order{}
	var createdExternal sql.NullString
	err = tx.QueryRow(`
		INSERT INTO orders (external_order_id, customer_name, customer_email, status, total_amount)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'pending'), $5)
		RETURNING id, external_order_id, customer_name, customer_email, status, total_amount, created_at
	`, externalID, o.CustomerName, o.CustomerEmail, o.Status, total).Scan(
		&created.ID, &createdExternal, &created.CustomerName, &created.CustomerEmail,
		&created.Status, &created.TotalAmount, &created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("order %q already exists", o.ExternalOrderID)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	created.ExternalOrderID = createdExternal.String

	for _, item := range o.Items {
		var line models.OrderItem
		err = tx.QueryRow(`
			INSERT INTO order_items (order_id, product_sku, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, order_id, product_sku, quantity, unit_price
		`, created.ID, item.ProductSKU, item.Quantity, item.UnitPrice).Scan(
			&line.ID, &line.OrderID, &line.ProductSKU, &line.Quantity, &line.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created.Items = append(created.Items, line)

		// Unknown SKUs and products without stock tracking are left alone.
		_, err = tx.Exec(`
			UPDATE inventory SET quantity = inventory.quantity - $1, updated_at = NOW()
			FROM products
			WHERE products.id = inventory.product_id AND products.sku = $2
		`, item.Quantity, item.ProductSKU)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", item.ProductSKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// FindByID returns an order with its items. Returns nil if not found.
func (s *OrderStore) FindByID(id uuid.UUID) (*models.Order, error) {
	o := &models.Order{}
	var external sql.NullString
	err := s.db.QueryRow(`
		SELECT id, external_order_id, customer_name, customer_email, status, total_amount, created_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &external, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.TotalAmount, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	o.ExternalOrderID = external.String

	rows, err := s.db.Query(`
		SELECT id, order_id, product_sku, quantity, unit_price
		FROM order_items WHERE order_id = $1
		ORDER BY product_sku
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductSKU, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// List returns orders without items, newest first.
func (s *OrderStore) List(limit, offset int) ([]models.Order, error) {
	rows, err := s.db.Query(`
		SELECT id, external_order_id, customer_name, customer_email, status, total_amount, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var external sql.NullString
		if err := rows.Scan(&o.ID, &external, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.ExternalOrderID = external.String
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order to a new status.
func (s *OrderStore) UpdateStatus(id uuid.UUID, status string) error {
	result, err := s.db.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.NotFound("order %s", id)
	}
	return nil
}
