package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"storefront/model"
	"storefront/store"
)

// Wishlist is a set of saved products, independent of the cart.
type Wishlist struct {
	*persister

	mu    sync.Mutex
	items []model.WishlistItem
}

func NewWishlist(kv store.Store, logger *slog.Logger) *Wishlist {
	return &Wishlist{persister: newPersister(kv, store.KeyWishlist, logger)}
}

func (w *Wishlist) Load(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var saved []model.WishlistItem
	if !w.readJSON(ctx, &saved) {
		saved = nil
	}
	w.items = saved
}

func (w *Wishlist) Items() []model.WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.items)
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index(productID) >= 0
}

// Add saves the product. Adding a saved product changes nothing.
func (w *Wishlist) Add(ctx context.Context, item model.WishlistItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if item.ProductID == "" || w.index(item.ProductID) >= 0 {
		return
	}
	w.commit(ctx, append(slices.Clone(w.items), item))
}

func (w *Wishlist) Remove(ctx context.Context, productID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(w.items), func(it model.WishlistItem) bool {
		return it.ProductID == productID
	})
	w.commit(ctx, next)
}

// Toggle flips presence and returns whether the product is now saved.
func (w *Wishlist) Toggle(ctx context.Context, item model.WishlistItem) bool {
	if item.ProductID == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.index(item.ProductID); i >= 0 {
		w.commit(ctx, slices.Delete(slices.Clone(w.items), i, i+1))
		return false
	}
	w.commit(ctx, append(slices.Clone(w.items), item))
	return true
}

// Clear empties the wishlist and deletes its key.
func (w *Wishlist) Clear(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = nil
	w.remove(ctx)
}

func (w *Wishlist) index(productID string) int {
	return slices.IndexFunc(w.items, func(it model.WishlistItem) bool { return it.ProductID == productID })
}

func (w *Wishlist) commit(ctx context.Context, next []model.WishlistItem) {
	w.items = next
	if next == nil {
		next = []model.WishlistItem{}
	}
	w.writeJSON(ctx, next)
}
