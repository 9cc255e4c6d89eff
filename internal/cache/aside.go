package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"postboard/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: on a hit, dest is populated from
// the cached JSON; on a miss, fill loads dest from the source of truth and the
// result is written back with the given TTL. Cache failures degrade to a
// plain fill; a fill error is never cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if uerr := json.Unmarshal(raw, dest); uerr == nil {
			return nil
		}
		// Corrupt entry; drop it and fall through to the source.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fill(); err != nil {
		return err
	}

	if raw, merr := json.Marshal(dest); merr == nil {
		if serr := client.Set(ctx, key, raw, ttl).Err(); serr != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed",
				slog.String("key", key), slog.String("error", serr.Error()))
		}
	}
	return nil
}
