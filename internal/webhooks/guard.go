package webhooks

import (
	"context"
	"time"

	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/redis"
)

// Guard suppresses duplicate webhook deliveries by event id. Reconciliation
// is idempotent on its own through the payment-status compare-and-swap; the
// guard just spares the database the replay traffic.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewGuard(store redis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) *Guard {
	return &Guard{store: store, ttl: ttl, logg: logg}
}

// CheckAndMark reports whether the event is fresh, marking it seen when so.
// Redis being down degrades to treating every event as fresh.
func (g *Guard) CheckAndMark(ctx context.Context, scope, eventID string) bool {
	if g == nil || g.store == nil || eventID == "" {
		return true
	}
	fresh, err := g.store.SetNX(ctx, g.store.IdempotencyKey(scope, eventID), time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		if g.logg != nil {
			g.logg.Warn(ctx, "idempotency store unavailable, processing event anyway")
		}
		return true
	}
	return fresh
}

// Release forgets a mark so a failed event can be retried by the gateway.
func (g *Guard) Release(ctx context.Context, scope, eventID string) {
	if g == nil || g.store == nil || eventID == "" {
		return
	}
	if err := g.store.Del(ctx, g.store.IdempotencyKey(scope, eventID)); err != nil && g.logg != nil {
		g.logg.Warn(ctx, "failed to release idempotency mark")
	}
}
