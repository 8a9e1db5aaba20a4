package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// number encodes a decimal as a bare JSON number.
type number decimal.Decimal

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(s))
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// decodeList accepts either a bare array or an envelope {"data": [...]}.
func decodeList(raw json.RawMessage, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	return decodeList(env.Data, out)
}

type lineWire struct {
	SKU      flexString      `json:"sku"`
	Name     string          `json:"name"`
	Quantity flexInt         `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// parseCartItems handles the shapes seen in order history: an array, a JSON
// string holding an array, or that string encoded once more.
func parseCartItems(raw json.RawMessage) ([]model.OrderLine, error) {
	for depth := 0; depth < 4; depth++ {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, nil
		}
		switch raw[0] {
		case '[':
			var wire []lineWire
			if err := json.Unmarshal(raw, &wire); err != nil {
				return nil, err
			}
			lines := make([]model.OrderLine, 0, len(wire))
			for _, w := range wire {
				lines = append(lines, model.OrderLine{
					SKU:      string(w.SKU),
					Name:     w.Name,
					Quantity: int(w.Quantity),
					Price:    w.Price,
					Total:    w.Total,
				})
			}
			return lines, nil
		case '"':
			var inner string
			if err := json.Unmarshal(raw, &inner); err != nil {
				return nil, err
			}
			raw = json.RawMessage(inner)
		default:
			return nil, fmt.Errorf("unexpected cart_items payload %.20q", raw)
		}
	}
	return nil, fmt.Errorf("cart_items nested too deeply")
}

type orderWire struct {
	ID             flexString      `json:"id"`
	MongoID        flexString      `json:"_id"`
	OrderNumber    flexString      `json:"order_number"`
	CustomerEmail  string          `json:"customer_email"`
	CartItems      json.RawMessage `json:"cart_items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Voucher        *string         `json:"voucher"`
	PaymentType    string          `json:"payment_type"`
	PaymentChannel string          `json:"payment_channel"`
	PaymentStatus  string          `json:"payment_status"`
	ShipmentStatus string          `json:"shipment_status"`
	PaymentLink    string          `json:"payment_link"`
	DateCheckout   string          `json:"date_checkout"`
	CreatedAt      string          `json:"createdAt"`
}

func (w orderWire) order() (model.Order, error) {
	lines, err := parseCartItems(w.CartItems)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", w.ID, err)
	}
	o := model.Order{
		ID:             string(w.ID),
		OrderNumber:    string(w.OrderNumber),
		CustomerEmail:  w.CustomerEmail,
		Items:          lines,
		TotalAmount:    w.TotalAmount,
		PaymentType:    w.PaymentType,
		PaymentChannel: w.PaymentChannel,
		PaymentStatus:  w.PaymentStatus,
		ShipmentStatus: w.ShipmentStatus,
		PaymentLink:    w.PaymentLink,
		CheckoutAt:     parseTime(w.DateCheckout, w.CreatedAt),
	}
	if o.ID == "" {
		o.ID = string(w.MongoID)
	}
	if w.Voucher != nil {
		o.Voucher = *w.Voucher
	}
	return o, nil
}

func parseTime(candidates ...string) time.Time {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
