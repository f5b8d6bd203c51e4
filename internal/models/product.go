// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingTier is one row of a product's bulk pricing table. MaxQty of 0
// means the tier is open-ended.
type PricingTier struct {
	MinQty    int     `json:"min"`
	MaxQty    int     `json:"max,omitempty"`
	UnitPrice float64 `json:"price"`
}

// Inventory tracks stock and bulk pricing for a single product.
type Inventory struct {
	ProductID    uuid.UUID     `json:"product_id"`
	Quantity     int           `json:"quantity"`
	PricingTiers []PricingTier `json:"pricing_tiers,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// UnitPriceFor returns the tiered unit price for the given order quantity,
// falling back to base when no tier matches.
func (inv *Inventory) UnitPriceFor(qty int, base float64) float64 {
	for _, t := range inv.PricingTiers {
		if qty < t.MinQty {
			continue
		}
		if t.MaxQty == 0 || qty <= t.MaxQty {
			return t.UnitPrice
		}
	}
	return base
}

// Product is a sellable item tracked by the inventory module.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	SKU         string     `json:"sku"` // unique
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	BasePrice   float64    `json:"base_price"`
	Inventory   *Inventory `json:"inventory,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
