package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/store"
)

// ErrInsufficientFunds is returned by Debit when the balance cannot cover
// the amount. The balance is left untouched.
var ErrInsufficientFunds = apperr.Validation("Insufficient wallet balance")

// ErrInvalidAmount rejects zero or negative cash-in and debit amounts.
var ErrInvalidAmount = apperr.Validation("Please enter a valid amount")

// Wallet holds the in-app peso balance.
type Wallet struct {
	*persister

	mu      sync.Mutex
	balance decimal.Decimal
}

func NewWallet(kv store.Store, logger *slog.Logger) *Wallet {
	return &Wallet{persister: newPersister(kv, store.KeyWallet, logger)}
}

// Load reads the persisted balance, defaulting to zero.
func (w *Wallet) Load(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance = decimal.Zero
	raw, ok := w.read(ctx)
	if !ok {
		return
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		w.logger.Warn("discarding malformed balance", "value", raw, "error", err)
		return
	}
	w.balance = d
}

func (w *Wallet) Balance() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// CanCover reports whether a debit of amount would succeed right now.
func (w *Wallet) CanCover(amount decimal.Decimal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !amount.GreaterThan(w.balance)
}

// Set overwrites the balance.
func (w *Wallet) Set(ctx context.Context, amount decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.commit(ctx, amount)
}

// Add increments the balance by amount. The amount is not validated here;
// CashIn is the validating entry point.
func (w *Wallet) Add(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.commit(ctx, w.balance.Add(amount))
	return w.balance
}

// CashIn tops up the wallet with a strictly positive amount.
func (w *Wallet) CashIn(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return w.Balance(), ErrInvalidAmount
	}
	return w.Add(ctx, amount), nil
}

// Debit subtracts amount, refusing to take the balance below zero.
func (w *Wallet) Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return w.Balance(), ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount.GreaterThan(w.balance) {
		return w.balance, ErrInsufficientFunds
	}
	w.commit(ctx, w.balance.Sub(amount))
	return w.balance, nil
}

// Reset zeroes the balance and deletes the persisted key.
func (w *Wallet) Reset(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = decimal.Zero
	w.remove(ctx)
}

func (w *Wallet) commit(ctx context.Context, next decimal.Decimal) {
	w.balance = next
	w.write(ctx, next.String())
}
