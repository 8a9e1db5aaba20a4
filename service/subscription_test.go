package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/model"
	"storefront/store"
)

func TestSubscriptionsLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	kv := store.NewMemoryStore()

	s := NewSubscriptions(kv, nil)
	s.Load(ctx)
	if s.Active(now) {
		t.Fatalf("no plan must not be active")
	}

	sub := model.NewSubscription("Monthly Plan", decimal.NewFromInt(149), model.PaymentMethod{Type: "e-wallet", Channel: "gcash"}, now)
	s.Set(ctx, sub)

	fresh := NewSubscriptions(kv, nil)
	fresh.Load(ctx)
	got, ok := fresh.Current()
	if !ok {
		t.Fatalf("expected plan after reload")
	}
	if got.PlanID != "monthly" || !got.Amount.Equal(decimal.NewFromInt(149)) {
		t.Fatalf("unexpected plan %+v", got)
	}
	if !fresh.Active(now.AddDate(0, 0, 10)) {
		t.Fatalf("expected active within the month")
	}
	if fresh.Active(now.AddDate(0, 2, 0)) {
		t.Fatalf("expected expired after two months")
	}

	fresh.Clear(ctx)
	if kv.Has(store.KeySubscription) || fresh.Active(now) {
		t.Fatalf("clear must delete the plan")
	}
}
