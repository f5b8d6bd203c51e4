// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one line of an order. The SKU is copied onto the line so the
// order survives product deletion.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	ProductSKU string    `json:"product_sku"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
}

// Subtotal returns quantity times unit price for the line.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order is a customer order, typically mirrored from an external shop
// (Shopify, WooCommerce) via its ExternalOrderID. Invoices are generated
// from orders through the document pipeline.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	ExternalOrderID string      `json:"external_order_id,omitempty"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	Status          string      `json:"status"` // pending, confirmed, shipped, delivered, cancelled
	TotalAmount     float64     `json:"total_amount"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}
