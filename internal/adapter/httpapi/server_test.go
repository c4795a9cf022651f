package httpapi_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/httpapi"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/kafkaaudit"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/coordinator"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/selection"
)

// stubFetcher serves canned availability and synthesized batches, standing in
// for the coordinator behind both the machine and the availability route.
type stubFetcher struct {
	catalog   *domain.Catalog
	available map[string][]string
	validDate string
}

func (f *stubFetcher) AvailableNumbers(_ context.Context, date time.Time) ([]string, error) {
	nums, ok := f.available[domain.DateKey(date)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wpc.ErrNoData, domain.DateKey(date))
	}
	return nums, nil
}

func (f *stubFetcher) FetchAll(_ context.Context, year int, number string) coordinator.Result {
	result := coordinator.Result{
		Artifacts: domain.ArtifactBag{},
		Metadata: &domain.Metadata{
			MPDNumber: domain.NumberString(number),
			ValidDate: f.validDate,
		},
	}
	for _, id := range f.catalog.ProductIDs() {
		result.Artifacts[id] = domain.Artifact(fmt.Sprintf(`{"product":%q,"year":%d}`, id, year))
	}
	return result
}

// recordingAudit captures published events so the fire-and-forget path can be
// awaited in tests.
type recordingAudit struct {
	events chan kafkaaudit.SubmissionEvent
}

func (a *recordingAudit) PublishSubmission(_ context.Context, event kafkaaudit.SubmissionEvent) error {
	a.events <- event
	return nil
}

func newTestServer(t *testing.T) (*httpapi.Server, *stubFetcher, *recordingAudit) {
	t.Helper()
	catalog, err := domain.LoadCatalog("")
	require.NoError(t, err)

	fetcher := &stubFetcher{catalog: catalog, available: map[string][]string{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	machine := selection.NewMachine(fetcher, catalog, logger, metrics)
	audit := &recordingAudit{events: make(chan kafkaaudit.SubmissionEvent, 4)}

	srv := httpapi.NewServer(":0", machine, catalog, fetcher,
		"https://www.wpc.ncep.noaa.gov/verification/mpd_verif/Images", audit, metrics, logger)
	return srv, fetcher, audit
}

func do(t *testing.T, srv *httpapi.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, rdr))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzFollowsFirstSubmission(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	do(t, srv, http.MethodPost, "/api/selection/year", `{"year":2024}`)
	do(t, srv, http.MethodPost, "/api/selection/number", `{"number":"0007"}`)
	rec = do(t, srv, http.MethodPost, "/api/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/catalog", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var catalog domain.Catalog
	decode(t, rec, &catalog)
	require.NotEmpty(t, catalog.Products)
	assert.Equal(t, "StageIV", catalog.Products[0].ID, "catalog order is the map stacking order")
	assert.Equal(t, domain.ProductMPD, catalog.Products[len(catalog.Products)-1].ID)
	assert.NotEmpty(t, catalog.StaticLayers)
}

func TestOptionsEndpoint(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/options", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Years      []int    `json:"years"`
		ImageYears []int    `json:"image_years"`
		Months     []string `json:"months"`
		Seasons    []string `json:"seasons"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []int{2020, 2021, 2022, 2023, 2024, 2025, 2026}, body.Years)
	assert.Equal(t, 2017, body.ImageYears[0])
	assert.Len(t, body.Months, 12)
	assert.Equal(t, []string{"DJF", "MAM", "JJA", "SON"}, body.Seasons)
}

func TestPlotsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/plots?cadence=monthly", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Plots []domain.Plot `json:"plots"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Plots, 14)

	rec = do(t, srv, http.MethodGet, "/api/plots?cadence=weekly", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlotURLEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet,
		"/api/plot-url?cadence=monthly&year=2024&month=Sep&plot=barchart_no_WA_OR_20km_skill_scores", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t,
		"https://www.wpc.ncep.noaa.gov/verification/mpd_verif/Images/Monthly/2024_Sep/barchart_no_WA_OR_20km_skill_scores_2024_Sep.png",
		body["url"])

	// Past the October 2024 domain expansion the no_WA_OR infix disappears.
	rec = do(t, srv, http.MethodGet,
		"/api/plot-url?cadence=monthly&year=2024&month=Oct&plot=barchart_no_WA_OR_20km_skill_scores", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.NotContains(t, body["url"], "no_WA_OR")

	rec = do(t, srv, http.MethodGet, "/api/plot-url?cadence=monthly&month=Sep&plot=nonsense", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet,
		"/api/plot-url?cadence=monthly&year=2024&plot=barchart_no_WA_OR_20km_skill_scores", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "monthly plots need a month")
}

func TestAvailableEndpoint(t *testing.T) {
	srv, fetcher, _ := newTestServer(t)
	fetcher.available["20240915"] = []string{"0012", "0013"}

	rec := do(t, srv, http.MethodGet, "/api/available?date=20240915", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date    string   `json:"date"`
		Numbers []string `json:"mpd_nums"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "20240915", body.Date)
	assert.Equal(t, []string{"0012", "0013"}, body.Numbers)

	rec = do(t, srv, http.MethodGet, "/api/available?date=20190102", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/available?date=notadate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitFlow(t *testing.T) {
	srv, _, audit := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/selection/year", `{"year":2024}`)
	do(t, srv, http.MethodPost, "/api/selection/number", `{"number":"12"}`)

	rec := do(t, srv, http.MethodPost, "/api/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		State     selection.State    `json:"state"`
		Artifacts domain.ArtifactBag `json:"artifacts"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "0012", body.State.Number, "bare numeric input is padded")
	require.NotNil(t, body.State.Metadata)
	assert.Equal(t, "0012", string(body.State.Metadata.MPDNumber))
	assert.Contains(t, body.Artifacts, domain.ProductMPD)

	select {
	case event := <-audit.events:
		assert.Equal(t, "number", event.Mode)
		assert.Equal(t, 2024, event.Year)
		assert.Equal(t, "0012", event.Number)
	case <-time.After(time.Second):
		t.Fatal("no audit event published")
	}
}

func TestSubmitWithoutSelection(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/submit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStepEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/selection/year", `{"year":2024}`)
	do(t, srv, http.MethodPost, "/api/selection/number", `{"number":"0012"}`)

	rec := do(t, srv, http.MethodPost, "/api/step", `{"delta":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		State selection.State `json:"state"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "0013", body.State.Number)

	rec = do(t, srv, http.MethodPost, "/api/step", `{"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeepLinkEndpoint(t *testing.T) {
	srv, fetcher, _ := newTestServer(t)
	fetcher.available["20240601"] = []string{"0005", "0006"}

	rec := do(t, srv, http.MethodPost, "/api/deeplink?date=20240601&mpd=0005&overlay=FFW", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		State selection.State `json:"state"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2024, body.State.Year)
	assert.Equal(t, "0005", body.State.Number)
	assert.Equal(t, []string{"FFW"}, body.State.ForcedOverlays)

	rec = do(t, srv, http.MethodPost, "/api/deeplink?date=20240601", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "mpd parameter is required")

	rec = do(t, srv, http.MethodPost, "/api/deeplink?date=20190101&mpd=0001", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no availability for the shared date")
}

func TestShareEndpoint(t *testing.T) {
	srv, fetcher, _ := newTestServer(t)
	fetcher.validDate = "2024-06-01 0600Z"
	fetcher.available["20240601"] = []string{"0005"}

	rec := do(t, srv, http.MethodGet, "/api/share", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing loaded to share yet")

	do(t, srv, http.MethodPost, "/api/selection/year", `{"year":2024}`)
	do(t, srv, http.MethodPost, "/api/selection/number", `{"number":"0005"}`)
	rec = do(t, srv, http.MethodPost, "/api/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/share?overlay=FFW&overlay=USGS", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "date=20240601&mpd=0005&overlay=FFW&overlay=USGS", body["query"])
}

func TestArtifactsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/artifacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())

	do(t, srv, http.MethodPost, "/api/selection/year", `{"year":2024}`)
	do(t, srv, http.MethodPost, "/api/selection/number", `{"number":"0007"}`)
	do(t, srv, http.MethodPost, "/api/submit", "")

	rec = do(t, srv, http.MethodGet, "/api/artifacts", "")
	var bag domain.ArtifactBag
	decode(t, rec, &bag)
	assert.Contains(t, bag, domain.ProductMPD)
}
