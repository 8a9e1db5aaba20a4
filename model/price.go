package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PesoSign prefixes every display price.
const PesoSign = "₱"

var priceReplacer = strings.NewReplacer(PesoSign, "", ",", "")

// ParsePrice turns a display string such as "₱1,500.00" into an amount.
func ParsePrice(display string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(priceReplacer.Replace(display))
	if raw == "" {
		return decimal.Zero, fmt.Errorf("price %q: empty", display)
	}
	if strings.ContainsAny(raw, "eE") {
		return decimal.Zero, fmt.Errorf("price %q: exponent not allowed", display)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", display, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %q: negative", display)
	}
	return d, nil
}

// FormatPeso renders an amount with the peso sign, thousands separators and
// two decimals, e.g. "₱1,500.00".
func FormatPeso(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := PesoSign + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
