package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/redis"
)

// CachedCalculator wraps a Calculator with a redis cache-aside. The marks
// for a (date, location, params) tuple never change, so a generous TTL is
// safe; it exists only to bound key growth.
type CachedCalculator struct {
	inner Calculator
	ttl   time.Duration
}

func NewCachedCalculator(inner Calculator) *CachedCalculator {
	return &CachedCalculator{inner: inner, ttl: 72 * time.Hour}
}

func (c *CachedCalculator) ComputeDailyTimes(ctx context.Context, date time.Time, loc Location, params Params) (model.TimeMarkSet, error) {
	key := marksKey(date, loc, params)

	if raw, ok := redis.Get(ctx, key); ok {
		var marks model.TimeMarkSet
		if err := json.Unmarshal([]byte(raw), &marks); err == nil {
			return marks, nil
		}
		log.Warn().Str("key", key).Msg("discarding corrupt cached marks")
	}

	marks, err := c.inner.ComputeDailyTimes(ctx, date, loc, params)
	if err != nil {
		return model.TimeMarkSet{}, err
	}

	if raw, err := json.Marshal(marks); err == nil {
		redis.Set(ctx, key, raw, c.ttl)
	}
	return marks, nil
}

func marksKey(date time.Time, loc Location, params Params) string {
	return fmt.Sprintf("marks:%s:%.4f:%.4f:%d:%d",
		date.Format("2006-01-02"), loc.Latitude, loc.Longitude, params.Method, params.School)
}
