// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// inventory.go provides a Valkey-backed cache for product stock
// quantities. Reads on hot SKUs skip Postgres entirely. Cache errors are
// logged and treated as misses, so Postgres remains the source of truth.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// inventoryKeyPrefix is the Valkey key prefix for cached quantities.
	inventoryKeyPrefix = "inventory:"

	// DefaultInventoryTTL is how long a cached quantity stays valid.
	DefaultInventoryTTL = 15 * time.Minute
)

// InventoryCache caches product stock quantities by SKU.
type InventoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInventoryCache creates an inventory cache backed by the given Valkey client.
func NewInventoryCache(client *redis.Client, ttl time.Duration) *InventoryCache {
	if ttl == 0 {
		ttl = DefaultInventoryTTL
	}
	return &InventoryCache{client: client, ttl: ttl}
}

// Get retrieves the cached quantity for a SKU. The second return value
// reports whether the cache held an entry.
func (c *InventoryCache) Get(ctx context.Context, sku string) (int, bool) {
	val, err := c.client.Get(ctx, inventoryKeyPrefix+sku).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		slog.Warn("inventory cache get error", "sku", sku, "error", err)
		return 0, false
	}
	qty, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("inventory cache corrupt value", "sku", sku, "value", val)
		return 0, false
	}
	return qty, true
}

// Set stores the quantity for a SKU with the configured TTL.
func (c *InventoryCache) Set(ctx context.Context, sku string, quantity int) {
	if err := c.client.Set(ctx, inventoryKeyPrefix+sku, quantity, c.ttl).Err(); err != nil {
		slog.Warn("inventory cache set error", "sku", sku, "error", err)
	}
}

// Invalidate removes a SKU from the cache.
func (c *InventoryCache) Invalidate(ctx context.Context, sku string) {
	if err := c.client.Del(ctx, inventoryKeyPrefix+sku).Err(); err != nil {
		slog.Warn("inventory cache invalidate error", "sku", sku, "error", err)
	}
}
