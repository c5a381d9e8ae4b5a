package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateSource resolves the current exchange rate. A redis-backed cache is
// consulted first; the configured fallback is used when redis is absent,
// empty, or failing, so quoting never blocks on the cache.
type RateSource struct {
	Client   *redis.Client
	Key      string
	TTL      time.Duration
	Fallback decimal.Decimal
}

type cachedRate struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Current returns the rate in effect.
func (s RateSource) Current(ctx context.Context) decimal.Decimal {
	if s.Client == nil || s.Key == "" {
		return s.Fallback
	}
	data, err := s.Client.Get(ctx, s.Key).Bytes()
	if err != nil {
		return s.Fallback
	}
	var entry cachedRate
	if err := json.Unmarshal(data, &entry); err != nil {
		return s.Fallback
	}
	if !entry.Rate.IsPositive() {
		return s.Fallback
	}
	return entry.Rate
}

// Store caches a freshly published rate with the configured TTL.
func (s RateSource) Store(ctx context.Context, rate decimal.Decimal) error {
	if s.Client == nil || s.Key == "" {
		return nil
	}
	if !rate.IsPositive() {
		return ErrNonPositiveRate
	}
	data, err := json.Marshal(cachedRate{Rate: rate, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.Key, data, s.TTL).Err()
}
