package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"storefront/apperr"
	"storefront/store"
)

// persister writes one key on behalf of one store. Failures are logged and
// recorded, never returned: durability is best-effort relative to memory.
type persister struct {
	kv     store.Store
	key    string
	logger *slog.Logger

	degraded atomic.Pointer[apperr.Error]
}

func newPersister(kv store.Store, key string, logger *slog.Logger) *persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &persister{kv: kv, key: key, logger: logger.With("key", key)}
}

func (p *persister) Degraded() error {
	if e := p.degraded.Load(); e != nil {
		return e
	}
	return nil
}

func (p *persister) fail(op string, err error) {
	p.logger.Error("persist failed", "op", op, "error", err)
	p.degraded.Store(apperr.Persistence(op, p.key, err))
}

// read returns the raw snapshot, or ok == false when absent or unreadable.
func (p *persister) read(ctx context.Context) (string, bool) {
	raw, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		p.fail("get", err)
		return "", false
	}
	return raw, ok
}

// readJSON decodes the snapshot into v. Malformed data counts as absent.
func (p *persister) readJSON(ctx context.Context, v any) bool {
	raw, ok := p.read(ctx)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		p.logger.Warn("discarding malformed snapshot", "error", err)
		return false
	}
	return true
}

func (p *persister) write(ctx context.Context, raw string) {
	if err := p.kv.Set(ctx, p.key, raw); err != nil {
		p.fail("set", err)
		return
	}
	p.degraded.Store(nil)
}

func (p *persister) writeJSON(ctx context.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		p.fail("encode", err)
		return
	}
	p.write(ctx, string(b))
}

func (p *persister) remove(ctx context.Context) {
	if err := p.kv.Remove(ctx, p.key); err != nil {
		p.fail("remove", err)
		return
	}
	p.degraded.Store(nil)
}
