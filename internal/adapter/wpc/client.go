package wpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
)

// ErrNoData is returned by AvailableNumbers when the store has no index file
// for the requested date. Callers surface it as "no MPD data for this date",
// distinct from transport failures.
var ErrNoData = errors.New("no MPD data for date")

// ArtifactSource is the read interface onto the verification file store.
type ArtifactSource interface {
	// AvailableNumbers returns the MPD numbers valid on a date.
	AvailableNumbers(ctx context.Context, date time.Time) ([]string, error)

	// FetchArtifact retrieves one product's GeoJSON document.
	FetchArtifact(ctx context.Context, productID string, year int, number string) (domain.Artifact, error)
}

// Client implements ArtifactSource against the WPC verification file store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a store client. The timeout bounds each individual GET.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// AvailableNumbers fetches the daily valid-numbers index. A 404 maps to
// ErrNoData; any other non-200 status or transport error is a fetch error.
func (c *Client) AvailableNumbers(ctx context.Context, date time.Time) ([]string, error) {
	body, err := c.get(ctx, AvailabilityURL(c.baseURL, date))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.metrics.AvailabilityLookups.WithLabelValues("no_data").Inc()
			return nil, fmt.Errorf("%w: %s", ErrNoData, domain.DateKey(date))
		}
		c.metrics.AvailabilityLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("availability lookup for %s: %w", domain.DateKey(date), err)
	}

	var index struct {
		MPDNums []domain.NumberString `json:"mpd_nums"`
	}
	if err := json.Unmarshal(body, &index); err != nil {
		c.metrics.AvailabilityLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode availability index: %w", err)
	}

	nums := make([]string, len(index.MPDNums))
	for i, n := range index.MPDNums {
		nums[i] = string(n)
	}
	c.metrics.AvailabilityLookups.WithLabelValues("success").Inc()
	return nums, nil
}

// FetchArtifact retrieves one product's GeoJSON document and checks it is
// well-formed JSON before handing it on.
func (c *Client) FetchArtifact(ctx context.Context, productID string, year int, number string) (domain.Artifact, error) {
	body, err := c.get(ctx, ArtifactURL(c.baseURL, productID, year, number))
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d/%s: %w", productID, year, number, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s %d/%s: malformed GeoJSON document", productID, year, number)
	}
	return domain.Artifact(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoData
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("store returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
