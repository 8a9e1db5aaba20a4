package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/model"
	"storefront/store"
)

// Subscriptions keeps the purchased plan that gates premium features.
type Subscriptions struct {
	*persister

	mu      sync.Mutex
	current *model.Subscription
}

func NewSubscriptions(kv store.Store, logger *slog.Logger) *Subscriptions {
	return &Subscriptions{persister: newPersister(kv, store.KeySubscription, logger)}
}

func (s *Subscriptions) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var saved model.Subscription
	if !s.readJSON(ctx, &saved) {
		s.current = nil
		return
	}
	s.current = &saved
}

func (s *Subscriptions) Set(ctx context.Context, sub model.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sub
	s.writeJSON(ctx, sub)
}

func (s *Subscriptions) Current() (model.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Subscription{}, false
	}
	return *s.current, true
}

// Active reports whether a plan is present and not past its expiry.
func (s *Subscriptions) Active(now time.Time) bool {
	sub, ok := s.Current()
	return ok && sub.ActiveAt(now)
}

func (s *Subscriptions) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.remove(ctx)
}
