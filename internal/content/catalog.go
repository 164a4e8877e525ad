// Package content selects the name a user is asked to guess.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/retry"
)

var loadPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     time.Second,
}

// Catalog caches the name list of every country after its first successful load.
type Catalog struct {
	source domain.ContentSource
	policy retry.Policy
	intN   func(n int) int

	group singleflight.Group
	mu    sync.RWMutex
	names map[string][]string
}

func NewCatalog(source domain.ContentSource) *Catalog {
	return &Catalog{
		source: source,
		policy: loadPolicy,
		intN:   rand.IntN,
		names:  make(map[string][]string),
	}
}

// Names returns the candidate list of country, loading it at most once even under
// concurrent callers.
func (c *Catalog) Names(ctx context.Context, country string) ([]string, error) {
	country = NormalizeCountry(country)

	c.mu.RLock()
	names, ok := c.names[country]
	c.mu.RUnlock()
	if ok {
		return names, nil
	}

	v, err, _ := c.group.Do(country, func() (any, error) {
		return c.load(ctx, country)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *Catalog) load(ctx context.Context, country string) ([]string, error) {
	policy := c.policy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.WarnContext(ctx, "Name list load failed, retrying", "country", country, "attempt", attempt, "backoff", backoff, "error", err)
	}

	names, err := retry.Do(ctx, policy, retry.StopOn(domain.ErrUnknownCountry), func(ctx context.Context) ([]string, error) {
		return c.source.Names(ctx, country)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load names for %s: %w", country, err)
	}

	c.mu.Lock()
	c.names[country] = names
	c.mu.Unlock()

	slog.InfoContext(ctx, "Name list loaded", "country", country, "count", len(names))
	return names, nil
}

// Pick returns one name of country chosen uniformly at random.
func (c *Catalog) Pick(ctx context.Context, country string) (string, error) {
	names, err := c.Names(ctx, country)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", domain.ErrNoCandidates
	}
	return names[c.intN(len(names))], nil
}
