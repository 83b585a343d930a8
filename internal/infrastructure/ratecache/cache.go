package ratecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

const (
	defaultTTL = 5 * time.Minute
	keyPrefix  = "settlement:revenue-terms:"
)

type cachedTerms struct {
	Percentage        decimal.Decimal `json:"percentage"`
	PartnerID         string          `json:"partner_id,omitempty"`
	PartnerPercentage decimal.Decimal `json:"partner_percentage"`
}

// Cache is a read-through Redis cache in front of another
// port.RevenueShareRateProvider. Redis failures fall back to the source.
type Cache struct {
	client redis.UniversalClient
	source port.RevenueShareRateProvider
	ttl    time.Duration
	logger *slog.Logger
}

func New(client redis.UniversalClient, source port.RevenueShareRateProvider, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, source: source, ttl: ttl, logger: logger}
}

func (c *Cache) TermsFor(ctx context.Context, tenantID string) (valueobject.RevenueShareTerms, error) {
	key := keyPrefix + tenantID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedTerms
		if err := json.Unmarshal(data, &cached); err == nil {
			return valueobject.RevenueShareTerms(cached), nil
		}
		c.logger.Warn("discarding unreadable cached revenue terms", "tenant_id", tenantID)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("revenue terms cache unavailable", "tenant_id", tenantID, "error", err)
	}

	terms, err := c.source.TermsFor(ctx, tenantID)
	if err != nil {
		return valueobject.RevenueShareTerms{}, fmt.Errorf("load revenue terms: %w", err)
	}

	payload, err := json.Marshal(cachedTerms(terms))
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("cache revenue terms", "tenant_id", tenantID, "error", err)
	}
	return terms, nil
}

// Invalidate drops a company's cached terms after they change.
func (c *Cache) Invalidate(ctx context.Context, tenantID string) error {
	return c.client.Del(ctx, keyPrefix+tenantID).Err()
}
