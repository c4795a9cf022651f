package wpc

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
)

// CachedSource wraps an ArtifactSource with an in-memory LRU over artifact
// documents. Artifacts are immutable once published, so entries never
// expire. Availability indexes are NOT cached: the current day's index
// grows as new MPDs are issued.
type CachedSource struct {
	inner   ArtifactSource
	cache   *lru.Cache[string, domain.Artifact]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source.
func NewCachedSource(inner ArtifactSource, maxEntries int, metrics *observability.Metrics) (*CachedSource, error) {
	cache, err := lru.New[string, domain.Artifact](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create artifact cache: %w", err)
	}
	return &CachedSource{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}, nil
}

func (c *CachedSource) AvailableNumbers(ctx context.Context, date time.Time) ([]string, error) {
	return c.inner.AvailableNumbers(ctx, date)
}

func (c *CachedSource) FetchArtifact(ctx context.Context, productID string, year int, number string) (domain.Artifact, error) {
	key := fmt.Sprintf("%s|%d|%s", productID, year, number)
	if doc, ok := c.cache.Get(key); ok {
		c.metrics.ArtifactCache.WithLabelValues("hit").Inc()
		return doc, nil
	}
	c.metrics.ArtifactCache.WithLabelValues("miss").Inc()

	doc, err := c.inner.FetchArtifact(ctx, productID, year, number)
	if err != nil {
		// Failures are not cached so a product that 404s today can appear
		// tomorrow without a restart.
		return nil, err
	}
	c.cache.Add(key, doc)
	return doc, nil
}
