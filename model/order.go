package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one purchased row as sent to and returned by the orders API.
type OrderLine struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Order is owned by the remote API. The client creates it once and only
// re-fetches it afterwards.
type Order struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"order_number,omitempty"`
	CustomerEmail  string          `json:"customer_email"`
	Items          []OrderLine     `json:"cart_items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Voucher        string          `json:"voucher,omitempty"`
	PaymentType    string          `json:"payment_type,omitempty"`
	PaymentChannel string          `json:"payment_channel,omitempty"`
	PaymentStatus  string          `json:"payment_status,omitempty"`
	ShipmentStatus string          `json:"shipment_status,omitempty"`
	PaymentLink    string          `json:"payment_link,omitempty"`
	CheckoutAt     time.Time       `json:"date_checkout"`
}

// LinesFromCart prices each cart row from its captured display price.
// It returns the lines and their grand total.
func LinesFromCart(items []CartItem) ([]OrderLine, decimal.Decimal, error) {
	lines := make([]OrderLine, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		price, err := ParsePrice(it.Price)
		if err != nil {
			return nil, decimal.Zero, err
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, OrderLine{
			SKU:      it.ProductID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    price,
			Total:    lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return lines, total, nil
}
