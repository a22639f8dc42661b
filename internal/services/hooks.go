package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Routing keys of the catalog events.
const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductPublished   = "product.published"
	EventProductUnpublished = "product.unpublished"
	EventProductArchived    = "product.archived"
	EventVariantStock       = "variant.stock_changed"
)

// EventPublisher publishes catalog events to a broker.
type EventPublisher interface {
	Publish(routingKey string, event interface{}) error
}

// CatalogCache caches storefront listings.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Actor identifies the admin performing a write.
type Actor struct {
	ID       uint64
	Username string
}

// Event is the envelope of every published catalog event.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Actor      string      `json:"actor,omitempty"`
	Data       interface{} `json:"data"`
}

// Hooks carries the side effects of catalog writes. Every field is optional.
// Side-effect failures are logged and never fail the write itself.
type Hooks struct {
	Cache  CatalogCache
	Events EventPublisher
	Audit  *AuditService
}

type change struct {
	action     string
	resource   string
	resourceID uint64
	event      string
	data       interface{}
	detail     string
	invalidate bool
}

func (h Hooks) after(ctx context.Context, actor Actor, c change) {
	if c.invalidate && h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("Failed to invalidate catalog cache")
		}
	}
	if c.event != "" && h.Events != nil {
		evt := Event{
			ID:         uuid.NewString(),
			Type:       c.event,
			OccurredAt: time.Now().UTC(),
			Actor:      actor.Username,
			Data:       c.data,
		}
		if err := h.Events.Publish(c.event, evt); err != nil {
			log.WithError(err).WithField("event", c.event).Warn("Failed to publish catalog event")
		}
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, actor, c.action, c.resource, c.resourceID, c.detail)
	}
}

// cached loads key from the cache into dest, or calls load and stores the
// result. Cache errors fall through to load.
func cached[T any](ctx context.Context, cache CatalogCache, key string, load func() (T, error)) (T, error) {
	if cache != nil {
		var hit T
		ok, err := cache.Get(ctx, key, &hit)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
		} else if ok {
			return hit, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if cache != nil {
		if err := cache.Set(ctx, key, v); err != nil {
			log.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
		}
	}
	return v, nil
}
