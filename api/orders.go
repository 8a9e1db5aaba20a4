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

// CreateOrderRequest is everything the orders endpoint needs. Totals are
// computed client-side from the cart snapshot.
type CreateOrderRequest struct {
	CustomerEmail  string
	Lines          []model.OrderLine
	Total          decimal.Decimal
	Voucher        string
	PaymentType    string
	PaymentChannel string
	CheckoutAt     time.Time
	IdempotencyKey string
}

type lineOut struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    number `json:"price"`
	Total    number `json:"total"`
}

type orderOut struct {
	CustomerEmail  string    `json:"customer_email"`
	PaymentLink    string    `json:"payment_link"`
	CartItems      []lineOut `json:"cart_items"`
	TotalAmount    number    `json:"total_amount"`
	Voucher        *string   `json:"voucher"`
	IsPaid         bool      `json:"is_paid"`
	DateCheckout   string    `json:"date_checkout"`
	PaymentType    string    `json:"payment_type"`
	PaymentChannel string    `json:"payment_channel,omitempty"`
	DatePaid       *string   `json:"date_paid"`
}

// CreateOrder records the order. For external channels the returned order
// carries the hosted payment link.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	body := orderOut{
		CustomerEmail:  req.CustomerEmail,
		CartItems:      make([]lineOut, 0, len(req.Lines)),
		TotalAmount:    number(req.Total),
		PaymentType:    req.PaymentType,
		PaymentChannel: req.PaymentChannel,
	}
	for _, l := range req.Lines {
		body.CartItems = append(body.CartItems, lineOut{
			SKU: l.SKU, Name: l.Name, Quantity: l.Quantity, Price: number(l.Price), Total: number(l.Total),
		})
	}
	if req.Voucher != "" {
		v := req.Voucher
		body.Voucher = &v
	}
	at := req.CheckoutAt
	if at.IsZero() {
		at = c.now()
	}
	body.DateCheckout = at.UTC().Format(time.RFC3339Nano)

	r := request{method: http.MethodPost, path: "/orders", body: body}
	if req.IdempotencyKey != "" {
		r.header = http.Header{"Idempotency-Key": {req.IdempotencyKey}}
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	var env struct {
		orderWire
		Data *orderWire `json:"data"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
	}
	w := env.orderWire
	if env.Data != nil {
		w = *env.Data
	}
	o, err := w.order()
	if err != nil {
		return nil, err
	}
	if o.CustomerEmail == "" {
		o.CustomerEmail = req.CustomerEmail
	}
	if len(o.Items) == 0 {
		o.Items = req.Lines
		o.TotalAmount = req.Total
	}
	if o.PaymentType == "" {
		o.PaymentType = req.PaymentType
	}
	if o.PaymentChannel == "" {
		o.PaymentChannel = req.PaymentChannel
	}
	if o.Voucher == "" {
		o.Voucher = req.Voucher
	}
	if o.CheckoutAt.IsZero() {
		o.CheckoutAt = at
	}
	return &o, nil
}

// ListOrders returns the order history of email.
func (c *Client) ListOrders(ctx context.Context, email string) ([]model.Order, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/orders",
		query:  url.Values{"email": {email}},
	}, &raw)
	if err != nil {
		return nil, err
	}

	var wires []orderWire
	if err := decodeList(raw, &wires); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(wires))
	for _, w := range wires {
		o, err := w.order()
		if err != nil {
			c.logger.Warn("skipping unreadable order", "id", string(w.ID), "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
