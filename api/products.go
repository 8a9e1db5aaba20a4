package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"storefront/model"
)

type productWire struct {
	ID              flexString      `json:"id"`
	MongoID         flexString      `json:"_id"`
	SKU             flexString      `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	StocksQty       flexInt         `json:"stocks_qty"`
	Image           *string         `json:"image"`
	IsDiscounted    bool            `json:"is_discounted"`
	IsPublished     bool            `json:"is_pulished"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ListProducts lists the catalog, optionally filtered by category and a
// search query. An empty result is valid, not an error; callers show
// EmptyCatalogMessage. Each product's Price is its effective price.
func (c *Client) ListProducts(ctx context.Context, category, query string) ([]model.Product, error) {
	q := url.Values{}
	if category != "" && category != model.CategoryAll {
		q.Set("category", category)
	}
	if query != "" {
		q.Set("q", query)
	}

	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: q}, &raw); err != nil {
		return nil, err
	}
	var wires []productWire
	if err := decodeList(raw, &wires); err != nil {
		return nil, err
	}

	out := make([]model.Product, 0, len(wires))
	for _, w := range wires {
		p := model.Product{
			ID:              string(w.ID),
			SKU:             string(w.SKU),
			Name:            w.Name,
			Category:        w.Category,
			Description:     w.Description,
			Price:           w.Price,
			DiscountedPrice: w.DiscountedPrice,
			StocksQty:       int(w.StocksQty),
			IsDiscounted:    w.IsDiscounted,
			IsPublished:     w.IsPublished,
			CreatedAt:       w.CreatedAt,
			UpdatedAt:       w.UpdatedAt,
		}
		if p.ID == "" {
			p.ID = string(w.MongoID)
		}
		if w.Image != nil {
			p.Image = *w.Image
		}
		p.Price = p.EffectivePrice()
		out = append(out, p)
	}
	return out, nil
}

// EmptyCatalogMessage is the message for an empty listing.
func EmptyCatalogMessage(category, query string) string {
	all := category == "" || category == model.CategoryAll
	switch {
	case all && query != "":
		return "No products found for your search"
	case !all:
		return "No products available for this category"
	default:
		return "No products available"
	}
}
