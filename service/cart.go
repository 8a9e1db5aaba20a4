package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"storefront/model"
	"storefront/store"
)

// Cart is the ordered set of line items, unique by product id.
// Every mutation replaces the whole list and writes it through.
type Cart struct {
	*persister

	mu    sync.Mutex
	items []model.CartItem
}

func NewCart(kv store.Store, logger *slog.Logger) *Cart {
	return &Cart{persister: newPersister(kv, store.KeyCart, logger)}
}

// Load replaces the in-memory cart with the persisted one. A missing or
// corrupted snapshot yields an empty cart.
func (c *Cart) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var saved []model.CartItem
	if !c.readJSON(ctx, &saved) {
		saved = nil
	}
	c.items = saved
}

// Items returns a copy of the rows in insertion order.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Count is the total quantity across rows.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Add inserts the product with quantity 1, or bumps an existing row by 1.
func (c *Cart) Add(ctx context.Context, item model.CartItem) {
	if item.ProductID == "" {
		c.logger.Warn("ignoring cart item without product id", "name", item.Name)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.Clone(c.items)
	if i := indexOf(next, item.ProductID); i >= 0 {
		next[i].Quantity++
	} else {
		item.Quantity = 1
		next = append(next, item)
	}
	c.commit(ctx, next)
}

// Remove drops the row. Removing an absent product is a no-op.
func (c *Cart) Remove(ctx context.Context, productID string) {
	c.RemoveItems(ctx, productID)
}

// RemoveItems drops every listed product in a single replace.
func (c *Cart) RemoveItems(ctx context.Context, productIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(c.items), func(it model.CartItem) bool {
		return slices.Contains(productIDs, it.ProductID)
	})
	c.commit(ctx, next)
}

// UpdateQuantity sets the row's quantity to exactly n. Clamping is the
// caller's job; see AdjustQuantity.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.Clone(c.items)
	if i := indexOf(next, productID); i >= 0 {
		next[i].Quantity = n
	}
	c.commit(ctx, next)
}

// AdjustQuantity adds delta to the row's quantity, never going below 1.
// It returns the resulting quantity, or 0 if the product is not in the cart.
func (c *Cart) AdjustQuantity(ctx context.Context, productID string, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, productID)
	if i < 0 {
		return 0
	}
	next := slices.Clone(c.items)
	next[i].Quantity = max(1, next[i].Quantity+delta)
	c.commit(ctx, next)
	return next[i].Quantity
}

// Clear empties the cart and deletes the persisted key entirely.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.remove(ctx)
}

// Select returns the rows for productIDs in cart order, plus the ids that
// are not in the cart.
func (c *Cart) Select(productIDs []string) (rows []model.CartItem, missing []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if slices.Contains(productIDs, it.ProductID) {
			rows = append(rows, it)
		}
	}
	for _, id := range productIDs {
		if indexOf(c.items, id) < 0 && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return rows, missing
}

// commit must be called with c.mu held.
func (c *Cart) commit(ctx context.Context, next []model.CartItem) {
	c.items = next
	if next == nil {
		next = []model.CartItem{}
	}
	c.writeJSON(ctx, next)
}

func indexOf(items []model.CartItem, productID string) int {
	return slices.IndexFunc(items, func(it model.CartItem) bool { return it.ProductID == productID })
}
