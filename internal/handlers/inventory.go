// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// createProductRequest creates a product, optionally with initial stock.
type createProductRequest struct {
	SKU         string               `json:"sku" validate:"required,max=64"`
	Name        string               `json:"name" validate:"required,max=200"`
	Description *string              `json:"description"`
	BasePrice   float64              `json:"base_price" validate:"gte=0"`
	Quantity    *int                 `json:"quantity" validate:"omitempty,gte=0"`
	Tiers       []models.PricingTier `json:"pricing_tiers"`
}

// ProductCreate handles POST /api/products.
func (a *API) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p := &models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	}
	if req.Quantity != nil {
		p.Inventory = &models.Inventory{Quantity: *req.Quantity, PricingTiers: req.Tiers}
	}

	created, err := a.products.Create(p)
	if err != nil {
		writeError(w, err)
		return
	}
	if created.Inventory != nil && a.inventory != nil {
		a.inventory.Set(r.Context(), created.SKU, created.Inventory.Quantity)
	}
	writeJSON(w, http.StatusCreated, created)
}

// ProductList handles GET /api/products.
func (a *API) ProductList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	products, err := a.products.List(limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ProductGet handles GET /api/products/{sku}.
func (a *API) ProductGet(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	p, err := a.products.FindBySKU(sku)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, apperr.NotFound("product %q", sku))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ProductStock handles GET /api/products/{sku}/stock. Quantities for hot
// SKUs come from Valkey; misses fall through to Postgres and warm the cache.
func (a *API) ProductStock(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	if a.inventory != nil {
		if qty, ok := a.inventory.Get(r.Context(), sku); ok {
			writeJSON(w, http.StatusOK, map[string]any{"sku": sku, "quantity": qty, "cached": true})
			return
		}
	}

	p, err := a.products.FindBySKU(sku)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, apperr.NotFound("product %q", sku))
		return
	}
	qty := 0
	if p.Inventory != nil {
		qty = p.Inventory.Quantity
	}
	if a.inventory != nil {
		a.inventory.Set(r.Context(), sku, qty)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sku": sku, "quantity": qty, "cached": false})
}

// upsertInventoryRequest replaces a product's stock level and pricing tiers.
type upsertInventoryRequest struct {
	Quantity int                  `json:"quantity" validate:"gte=0"`
	Tiers    []models.PricingTier `json:"pricing_tiers"`
}

// InventoryUpsert handles PUT /api/products/{sku}/inventory.
func (a *API) InventoryUpsert(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req upsertInventoryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := a.products.UpsertInventory(sku, req.Quantity, req.Tiers)
	if err != nil {
		writeError(w, err)
		return
	}
	if a.inventory != nil {
		a.inventory.Set(r.Context(), sku, req.Quantity)
	}
	writeJSON(w, http.StatusOK, p)
}

// ProductPrice handles GET /api/products/{sku}/price?quantity=N, returning
// the tiered unit price and line total for the given quantity.
func (a *API) ProductPrice(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty < 1 {
		writeError(w, apperr.Validation("quantity must be a positive integer"))
		return
	}

	p, err := a.products.FindBySKU(sku)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, apperr.NotFound("product %q", sku))
		return
	}

	unit := p.BasePrice
	if p.Inventory != nil {
		unit = p.Inventory.UnitPriceFor(qty, p.BasePrice)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sku":        sku,
		"quantity":   qty,
		"unit_price": unit,
		"total":      unit * float64(qty),
	})
}
