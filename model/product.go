package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll is the catalog pseudo-category that disables filtering.
const CategoryAll = "View All"

// Product as listed by the catalog API.
type Product struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	StocksQty       int             `json:"stocks_qty"`
	Image           string          `json:"image,omitempty"`
	IsDiscounted    bool            `json:"is_discounted"`
	IsPublished     bool            `json:"is_pulished"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// EffectivePrice is the price a shopper pays right now.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.IsDiscounted {
		return p.DiscountedPrice
	}
	return p.Price
}

// CartItem captures the product as a cart row, freezing the display price.
func (p Product) CartItem() CartItem {
	return CartItem{ProductID: p.ID, Name: p.Name, Price: FormatPeso(p.EffectivePrice()), Image: p.Image}
}

// WishlistItem captures the product as a wishlist entry.
func (p Product) WishlistItem() WishlistItem {
	return WishlistItem{ProductID: p.ID, Name: p.Name, Price: FormatPeso(p.EffectivePrice()), Image: p.Image}
}
