package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod records how a subscription was paid.
type PaymentMethod struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Subscription gates premium features.
type Subscription struct {
	PlanID        string          `json:"planId"`
	PlanTitle     string          `json:"planTitle"`
	Amount        decimal.Decimal `json:"amount"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
	ExpiryDate    *time.Time      `json:"expiryDate,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// ActiveAt reports whether the subscription still applies at now.
func (s Subscription) ActiveAt(now time.Time) bool {
	return s.ExpiryDate == nil || now.Before(*s.ExpiryDate)
}

// NewSubscription derives plan id and expiry from the plan title.
func NewSubscription(title string, amount decimal.Decimal, method PaymentMethod, now time.Time) Subscription {
	t := strings.ToLower(title)

	var expiry time.Time
	switch {
	case strings.Contains(t, "annual") || strings.Contains(t, "year"):
		expiry = now.AddDate(1, 0, 0)
	case strings.Contains(t, "monthly") || strings.Contains(t, "month"):
		expiry = now.AddDate(0, 1, 0)
	case strings.Contains(t, "free") || strings.Contains(t, "days"):
		expiry = now.AddDate(0, 0, 7)
	default:
		expiry = now.AddDate(0, 0, 30)
	}

	plan := "free"
	switch {
	case strings.Contains(t, "annual"):
		plan = "annual"
	case strings.Contains(t, "monthly"):
		plan = "monthly"
	}

	return Subscription{
		PlanID:        plan,
		PlanTitle:     title,
		Amount:        amount,
		PurchaseDate:  now,
		ExpiryDate:    &expiry,
		PaymentMethod: method,
	}
}

// PaymentTypeFor classifies a subscription channel the way the pricing
// screen does: known e-wallets are "e-wallet", anything else "credit-card".
func PaymentTypeFor(channelID string) string {
	if o, ok := LookupPaymentOption(channelID); ok && o.Channel == ChannelEWallet {
		return "e-wallet"
	}
	return "credit-card"
}
