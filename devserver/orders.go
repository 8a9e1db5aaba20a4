package devserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type storedOrder struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerEmail  string          `json:"customer_email"`
	CartItems      json.RawMessage `json:"cart_items"`
	TotalAmount    json.Number     `json:"total_amount"`
	Voucher        *string         `json:"voucher"`
	PaymentType    string          `json:"payment_type"`
	PaymentChannel string          `json:"payment_channel,omitempty"`
	PaymentStatus  string          `json:"payment_status"`
	ShipmentStatus string          `json:"shipment_status"`
	PaymentLink    string          `json:"payment_link"`
	IsPaid         bool            `json:"is_paid"`
	DateCheckout   string          `json:"date_checkout"`
	CreatedAt      string          `json:"createdAt"`
}

type replay struct {
	status int
	body   []byte
}

type createOrderReq struct {
	CustomerEmail  string          `json:"customer_email"`
	CartItems      json.RawMessage `json:"cart_items"`
	TotalAmount    json.Number     `json:"total_amount"`
	Voucher        *string         `json:"voucher"`
	PaymentType    string          `json:"payment_type"`
	PaymentChannel string          `json:"payment_channel"`
	DateCheckout   string          `json:"date_checkout"`
}

// PaymentLinkBase prefixes the hosted payment page of external orders.
const PaymentLinkBase = "https://pay.twin.local/checkout/"

// CreateOrder handles POST /orders
func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.CustomerEmail == "" {
		fields["customer_email"] = []string{"The customer email field is required."}
	}
	if items := bytes.TrimSpace(req.CartItems); len(items) == 0 || bytes.Equal(items, []byte("[]")) || items[0] != '[' {
		fields["cart_items"] = []string{"The cart items field is required."}
	}
	if req.PaymentType == "" {
		fields["payment_type"] = []string{"The payment type field is required."}
	}
	if len(fields) > 0 {
		writeFieldErrs(w, fields)
		return
	}

	key := r.Header.Get("Idempotency-Key")

	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		if prev, ok := s.replays[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(prev.status)
			_, _ = w.Write(prev.body)
			return
		}
	}

	s.orderSeq++
	id := uuid.NewString()
	now := s.now().UTC()
	o := &storedOrder{
		ID:             id,
		OrderNumber:    fmt.Sprintf("ORD-%s-%05d", now.Format("20060102"), s.orderSeq),
		CustomerEmail:  req.CustomerEmail,
		CartItems:      req.CartItems,
		TotalAmount:    req.TotalAmount,
		Voucher:        req.Voucher,
		PaymentType:    req.PaymentType,
		PaymentChannel: req.PaymentChannel,
		PaymentStatus:  "pending",
		ShipmentStatus: "processing",
		DateCheckout:   req.DateCheckout,
		CreatedAt:      now.Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if strings.EqualFold(req.PaymentType, "wallet") {
		o.PaymentStatus = "paid"
		o.IsPaid = true
	} else {
		o.PaymentLink = PaymentLinkBase + id
	}
	s.orders = append(s.orders, o)

	body, err := json.Marshal(o)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if key != "" {
		s.replays[key] = replay{status: http.StatusCreated, body: body}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

// ListOrders handles GET /orders?email=...
// cart_items come back as a JSON string holding a JSON string, the way the
// production backend stores them.
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeFieldErrs(w, map[string][]string{"email": {"The email field is required."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]storedOrder, 0)
	for _, o := range s.orders {
		if !strings.EqualFold(o.CustomerEmail, email) {
			continue
		}
		cp := *o
		enc, err := doubleEncode(o.CartItems)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		cp.CartItems = enc
		out = append(out, cp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// OrderCount reports how many orders were recorded.
func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func doubleEncode(raw json.RawMessage) (json.RawMessage, error) {
	once, err := json.Marshal(string(raw))
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(once))
}
