// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

func TestProductCreateWithInventory(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)
	t.Cleanup(func() { cleanProducts(t, db, "TEST-INV-001") })

	created, err := s.Create(&models.Product{
		SKU:       "TEST-INV-001",
		Name:      "Widget",
		BasePrice: 10.0,
		Inventory: &models.Inventory{
			Quantity: 50,
			PricingTiers: []models.PricingTier{
				{MinQty: 1, MaxQty: 9, UnitPrice: 10.0},
				{MinQty: 10, MaxQty: 0, UnitPrice: 8.5},
			},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Inventory == nil || created.Inventory.Quantity != 50 {
		t.Fatalf("inventory = %+v", created.Inventory)
	}

	found, err := s.FindBySKU("TEST-INV-001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Inventory == nil || len(found.Inventory.PricingTiers) != 2 {
		t.Fatalf("tiers not persisted: %+v", found.Inventory)
	}
	if price := found.Inventory.UnitPriceFor(20, found.BasePrice); price != 8.5 {
		t.Errorf("tiered price for qty 20 = %v, want 8.5", price)
	}
}

func TestProductDuplicateSKUFails(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)
	t.Cleanup(func() { cleanProducts(t, db, "TEST-DUP-001") })

	if _, err := s.Create(&models.Product{SKU: "TEST-DUP-001", Name: "A", BasePrice: 1}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.Create(&models.Product{SKU: "TEST-DUP-001", Name: "B", BasePrice: 2})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUpsertInventoryCreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)
	t.Cleanup(func() { cleanProducts(t, db, "TEST-UPS-001") })

	if _, err := s.Create(&models.Product{SKU: "TEST-UPS-001", Name: "Gadget", BasePrice: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err := s.UpsertInventory("TEST-UPS-001", 10, nil)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if p.Inventory == nil || p.Inventory.Quantity != 10 {
		t.Fatalf("inventory after insert = %+v", p.Inventory)
	}

	p, err = s.UpsertInventory("TEST-UPS-001", 3, []models.PricingTier{{MinQty: 1, MaxQty: 0, UnitPrice: 4.5}})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p.Inventory.Quantity != 3 || len(p.Inventory.PricingTiers) != 1 {
		t.Fatalf("inventory after update = %+v", p.Inventory)
	}
}

func TestUpsertInventoryUnknownSKU(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	_, err := s.UpsertInventory("TEST-MISSING-SKU", 1, nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestOrderCreateComputesTotal(t *testing.T) {
	db := testDB(t)
	s := NewOrderStore(db)
	t.Cleanup(func() { cleanOrders(t, db, "EXT-100") })

	created, err := s.Create(&models.Order{
		ExternalOrderID: "EXT-100",
		CustomerName:    "Acme Corp",
		CustomerEmail:   "billing@acme.test",
		Items: []models.OrderItem{
			{ProductSKU: "SKU-A", Quantity: 2, UnitPrice: 10},
			{ProductSKU: "SKU-B", Quantity: 1, UnitPrice: 5.5},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TotalAmount != 25.5 {
		t.Errorf("total = %v, want 25.5", created.TotalAmount)
	}
	if created.Status != "pending" {
		t.Errorf("status = %q, want pending default", created.Status)
	}
	if len(created.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(created.Items))
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found.Items) != 2 {
		t.Errorf("loaded items = %d, want 2", len(found.Items))
	}
}

func TestOrderCreateDecrementsStock(t *testing.T) {
	db := testDB(t)
	products := NewProductStore(db)
	orders := NewOrderStore(db)
	t.Cleanup(func() {
		cleanOrders(t, db, "EXT-STOCK")
		cleanProducts(t, db, "TEST-STOCK-001")
	})

	if _, err := products.Create(&models.Product{
		SKU:       "TEST-STOCK-001",
		Name:      "Widget",
		BasePrice: 10,
		Inventory: &models.Inventory{Quantity: 50},
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	// One tracked SKU and one the catalog has never seen.
	_, err := orders.Create(&models.Order{
		ExternalOrderID: "EXT-STOCK",
		CustomerName:    "Acme",
		Items: []models.OrderItem{
			{ProductSKU: "TEST-STOCK-001", Quantity: 3, UnitPrice: 10},
			{ProductSKU: "TEST-STOCK-UNTRACKED", Quantity: 1, UnitPrice: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	p, err := products.FindBySKU("TEST-STOCK-001")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if p.Inventory == nil || p.Inventory.Quantity != 47 {
		t.Fatalf("quantity after order = %+v, want 47", p.Inventory)
	}
}

func TestOrderDuplicateExternalIDFails(t *testing.T) {
	db := testDB(t)
	s := NewOrderStore(db)
	t.Cleanup(func() { cleanOrders(t, db, "EXT-DUP") })

	order := &models.Order{
		ExternalOrderID: "EXT-DUP",
		CustomerName:    "Acme",
		Items:           []models.OrderItem{{ProductSKU: "S", Quantity: 1, UnitPrice: 1}},
	}
	if _, err := s.Create(order); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(order); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	db := testDB(t)
	s := NewOrderStore(db)
	t.Cleanup(func() { cleanOrders(t, db, "EXT-STATUS") })

	created, err := s.Create(&models.Order{
		ExternalOrderID: "EXT-STATUS",
		CustomerName:    "Acme",
		Items:           []models.OrderItem{{ProductSKU: "S", Quantity: 1, UnitPrice: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateStatus(created.ID, "shipped"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Status != "shipped" {
		t.Errorf("status = %q, want shipped", found.Status)
	}
}
