package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

type listReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *goredis.StringSliceCmd
}

// NameSource reads the name list of a country from the Redis list
// "whoami:names:<country>". A missing or empty list reports domain.ErrUnknownCountry
// so a content.Chain falls through to the next source.
type NameSource struct {
	rdb listReader
}

func NewNameSource(rdb listReader) *NameSource {
	return &NameSource{rdb: rdb}
}

func (s *NameSource) Names(ctx context.Context, country string) ([]string, error) {
	names, err := s.rdb.LRange(ctx, namesKey(country), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read names for %s: %w", country, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCountry, country)
	}
	return names, nil
}

// ReplaceNames atomically swaps the list of country for names.
func ReplaceNames(ctx context.Context, rdb goredis.Cmdable, country string, names []string) error {
	key := namesKey(country)
	_, err := rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(names) > 0 {
			values := make([]any, len(names))
			for i, n := range names {
				values[i] = n
			}
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace names for %s: %w", country, err)
	}
	return nil
}

// SeedNames stores names for country unless a list is already there, so operator
// edits survive restarts. It reports whether the list was written.
func SeedNames(ctx context.Context, rdb goredis.Cmdable, country string, names []string) (bool, error) {
	n, err := rdb.Exists(ctx, namesKey(country)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check names for %s: %w", country, err)
	}
	if n > 0 || len(names) == 0 {
		return false, nil
	}
	if err := ReplaceNames(ctx, rdb, country, names); err != nil {
		return false, err
	}
	return true, nil
}

func namesKey(country string) string {
	return "whoami:names:" + country
}
