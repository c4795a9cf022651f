// Package coordinator implements the fan-out fetch across the product
// catalog: one request per product, every outcome collected, partial
// failures isolated per product.
package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
)

// Source is the read interface onto the artifact store the coordinator
// fans out against.
type Source interface {
	AvailableNumbers(ctx context.Context, date time.Time) ([]string, error)
	FetchArtifact(ctx context.Context, productID string, year int, number string) (domain.Artifact, error)
}

// Result is the merged outcome of one fan-out batch. Artifacts and Failed
// partition the catalog exactly: every product ID lands in one or the other.
type Result struct {
	Artifacts domain.ArtifactBag
	Failed    []string // catalog order
	Metadata  *domain.Metadata
}

// Coordinator issues per-product fetches and gathers all outcomes.
type Coordinator struct {
	source     Source
	catalog    *domain.Catalog
	logger     *slog.Logger
	metrics    *observability.Metrics
	maxWorkers int
}

// New creates a Coordinator. maxWorkers <= 0 runs one worker per product.
func New(source Source, catalog *domain.Catalog, logger *slog.Logger, metrics *observability.Metrics, maxWorkers int) *Coordinator {
	return &Coordinator{
		source:     source,
		catalog:    catalog,
		logger:     logger,
		metrics:    metrics,
		maxWorkers: maxWorkers,
	}
}

// AvailableNumbers returns the MPD numbers valid on a date.
func (c *Coordinator) AvailableNumbers(ctx context.Context, date time.Time) ([]string, error) {
	return c.source.AvailableNumbers(ctx, date)
}

// FetchAll fetches every catalog product for (year, number) concurrently and
// waits for all requests to settle. A failed product never aborts or blocks
// the rest; it is recorded in Result.Failed and omitted from the bag.
// Slot indexing keys each outcome by its originating product regardless of
// completion order.
func (c *Coordinator) FetchAll(ctx context.Context, year int, number string) Result {
	ids := c.catalog.ProductIDs()
	start := time.Now()

	workers := c.maxWorkers
	if workers <= 0 {
		workers = len(ids)
	}

	type outcome struct {
		doc domain.Artifact
		err error
	}
	slots := make([]outcome, len(ids))

	p := pool.New().WithMaxGoroutines(workers)
	for i, id := range ids {
		p.Go(func() {
			doc, err := c.source.FetchArtifact(ctx, id, year, number)
			slots[i] = outcome{doc: doc, err: err}
		})
	}
	p.Wait()

	result := Result{Artifacts: make(domain.ArtifactBag, len(ids))}
	for i, id := range ids {
		if slots[i].err != nil {
			c.metrics.FetchOutcomes.WithLabelValues(id, "error").Inc()
			c.logger.Warn("artifact fetch failed",
				"product", id, "year", year, "mpd", number, "error", slots[i].err)
			result.Failed = append(result.Failed, id)
			continue
		}
		c.metrics.FetchOutcomes.WithLabelValues(id, "success").Inc()
		result.Artifacts[id] = slots[i].doc
	}

	if doc, ok := result.Artifacts[domain.ProductMPD]; ok {
		meta, found, err := domain.ExtractMetadata(doc)
		if err != nil {
			c.logger.Warn("MPD metadata decode failed", "year", year, "mpd", number, "error", err)
		} else if found {
			result.Metadata = meta
		}
	}

	c.metrics.FetchBatchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("fetch batch complete",
		"year", year, "mpd", number,
		"fetched", len(result.Artifacts), "failed", len(result.Failed),
		"duration", time.Since(start))

	return result
}
