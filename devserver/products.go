package devserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/model"
)

type productOut struct {
	ID              string      `json:"id"`
	SKU             string      `json:"sku"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	Description     string      `json:"description"`
	Price           json.Number `json:"price"`
	DiscountedPrice json.Number `json:"discounted_price"`
	StocksQty       int         `json:"stocks_qty"`
	Image           *string     `json:"image"`
	IsDiscounted    bool        `json:"is_discounted"`
	IsPublished     bool        `json:"is_pulished"`
}

// ListProducts handles GET /products?category=...&q=...
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]productOut, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && category != model.CategoryAll && !strings.EqualFold(p.Category, category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		po := productOut{
			ID:              p.ID,
			SKU:             p.SKU,
			Name:            p.Name,
			Category:        p.Category,
			Description:     p.Description,
			Price:           json.Number(p.Price.String()),
			DiscountedPrice: json.Number(p.DiscountedPrice.String()),
			StocksQty:       p.StocksQty,
			IsDiscounted:    p.IsDiscounted,
			IsPublished:     p.IsPublished,
		}
		if p.Image != "" {
			img := p.Image
			po.Image = &img
		}
		out = append(out, po)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}
