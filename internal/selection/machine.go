// Package selection implements the dashboard's selection state machine: two
// mutually exclusive search modes (year+number vs. calendar date) reconciled
// into one canonical selection through named transitions.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/coordinator"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
)

// Fetcher is the coordinator surface the machine drives.
type Fetcher interface {
	AvailableNumbers(ctx context.Context, date time.Time) ([]string, error)
	FetchAll(ctx context.Context, year int, number string) coordinator.Result
}

// State is a point-in-time snapshot of the machine for the view layer.
type State struct {
	Mode       domain.Mode `json:"mode"`
	Year       int         `json:"year,omitempty"`
	Number     string      `json:"number,omitempty"`
	Date       string      `json:"date,omitempty"` // YYYYMMDD
	DateNumber string      `json:"date_number,omitempty"`

	DateOptions []string `json:"date_options,omitempty"`
	Fetching    bool     `json:"fetching"`

	AvailabilityError string `json:"availability_error,omitempty"`
	LoadError         string `json:"load_error,omitempty"`

	Metadata       *domain.Metadata `json:"metadata,omitempty"`
	FailedProducts []string         `json:"failed_products,omitempty"`
	ForcedOverlays []string         `json:"forced_overlays,omitempty"`
}

// Machine owns the current selection and the artifact bag it resolves to.
// It is safe for concurrent use, but the design intent is a single writer:
// one dashboard, one forecaster.
type Machine struct {
	fetcher Fetcher
	catalog *domain.Catalog
	logger  *slog.Logger
	metrics *observability.Metrics

	mu  sync.Mutex
	sel domain.Selection

	dateOptions []string
	availGen    uint64 // discards stale availability lookups

	bag      domain.ArtifactBag
	metadata *domain.Metadata
	failed   []string

	fetching bool
	batchGen uint64 // discards stale fetch batches

	availabilityErr string
	loadErr         string

	forcedOverlays []string
	deepLinkArmed  bool
	deepLinkNumber string

	submitted bool
}

// NewMachine creates an idle machine.
func NewMachine(fetcher Fetcher, catalog *domain.Catalog, logger *slog.Logger, metrics *observability.Metrics) *Machine {
	return &Machine{
		fetcher: fetcher,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// State returns a snapshot of the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() State {
	s := State{
		Mode:              m.sel.Mode,
		Year:              m.sel.Year,
		Number:            m.sel.Number,
		DateNumber:        m.sel.DateNumber,
		DateOptions:       append([]string(nil), m.dateOptions...),
		Fetching:          m.fetching,
		AvailabilityError: m.availabilityErr,
		LoadError:         m.loadErr,
		Metadata:          m.metadata,
		FailedProducts:    append([]string(nil), m.failed...),
		ForcedOverlays:    append([]string(nil), m.forcedOverlays...),
	}
	if !m.sel.Date.IsZero() {
		s.Date = domain.DateKey(m.sel.Date)
	}
	return s
}

// Artifacts returns the current bag. The bag is replaced wholesale on each
// submission, never mutated, so sharing the map is safe.
func (m *Machine) Artifacts() domain.ArtifactBag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bag
}

// CheckReadiness reports ready once at least one submission has completed,
// i.e. the store has been reached end to end.
func (m *Machine) CheckReadiness(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.submitted {
		return errors.New("no selection submitted yet")
	}
	return nil
}

// SetYear activates number mode with the given year. The date-mode slot is
// left untouched.
func (m *Machine) SetYear(year int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel.Mode = domain.ModeNumber
	m.sel.Year = year
}

// SetNumber activates number mode with the given MPD number. Numeric input
// is normalized to the padded wire form. If the current date's availability
// list contains the number, the date-mode slot is synchronized to agree;
// the active slot is never overwritten by sync.
func (m *Machine) SetNumber(number string) error {
	number = normalizeNumber(number)
	if number == "" {
		return fmt.Errorf("empty MPD number")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel.Mode = domain.ModeNumber
	m.sel.Number = number
	m.syncInactiveLocked()
	return nil
}

// SetDate activates date mode, adopts the date's year into the number-mode
// year slot, and refreshes the availability options for that date.
func (m *Machine) SetDate(ctx context.Context, date time.Time) {
	m.mu.Lock()
	m.sel.Mode = domain.ModeDate
	m.sel.Date = date
	m.sel.Year = date.Year()
	m.mu.Unlock()

	m.refreshAvailability(ctx, date)
}

// SelectAvailable activates date mode with one of the looked-up numbers and
// synchronizes the number-mode slot to agree.
func (m *Machine) SelectAvailable(number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.dateOptions) == 0 {
		return fmt.Errorf("no available MPDs for the selected date")
	}
	found := false
	for _, n := range m.dateOptions {
		if n == number {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("MPD %s is not valid for the selected date", number)
	}
	m.sel.Mode = domain.ModeDate
	m.sel.DateNumber = number
	m.syncInactiveLocked()
	return nil
}

// Submit resolves the active mode's (year, number) pair and runs the
// fan-out fetch. A submission issued while another batch is in flight
// supersedes it; the older batch's results are dropped on arrival.
func (m *Machine) Submit(ctx context.Context) (coordinator.Result, error) {
	m.mu.Lock()
	year, number, err := m.sel.Resolve()
	if err != nil {
		m.mu.Unlock()
		return coordinator.Result{}, err
	}
	mode := m.sel.Mode
	gen := m.beginBatchLocked()
	m.mu.Unlock()

	m.metrics.Submissions.WithLabelValues(string(mode)).Inc()
	return m.runBatch(ctx, gen, year, number)
}

// Step pages to the adjacent MPD: the active mode's number is incremented
// or decremented (clamped at zero, re-padded), number mode is forced
// active, and the batch is submitted immediately without a separate
// confirm.
func (m *Machine) Step(ctx context.Context, delta int) (coordinator.Result, error) {
	m.mu.Lock()
	year, number, err := m.sel.Resolve()
	if err != nil {
		m.mu.Unlock()
		return coordinator.Result{}, err
	}
	stepped, err := domain.StepNumber(number, delta)
	if err != nil {
		m.mu.Unlock()
		return coordinator.Result{}, err
	}

	m.sel.Mode = domain.ModeNumber
	m.sel.Year = year
	m.sel.Number = stepped
	gen := m.beginBatchLocked()
	m.mu.Unlock()

	m.metrics.Submissions.WithLabelValues(string(domain.ModeNumber)).Inc()
	return m.runBatch(ctx, gen, year, stepped)
}

// ApplyDeepLink populates the selection from a shared link and, once the
// date's availability confirms, auto-submits. The deep link is one-shot:
// armed here, cleared after the first submission attempt.
func (m *Machine) ApplyDeepLink(ctx context.Context, dl domain.DeepLinkState) (coordinator.Result, error) {
	number := normalizeNumber(dl.Number)
	if number == "" {
		return coordinator.Result{}, fmt.Errorf("deep link has no MPD number")
	}

	m.mu.Lock()
	m.sel.Mode = domain.ModeNumber
	m.sel.Date = dl.Date
	m.sel.Year = dl.Date.Year()
	m.sel.Number = number
	m.deepLinkArmed = true
	m.deepLinkNumber = number
	m.forcedOverlays = m.knownOverlays(dl.Overlays)
	m.mu.Unlock()

	m.refreshAvailability(ctx, dl.Date)

	m.mu.Lock()
	if !m.deepLinkArmed {
		// A stale availability lookup or concurrent action already
		// consumed the deep link.
		m.mu.Unlock()
		return coordinator.Result{}, nil
	}
	m.deepLinkArmed = false
	if m.availabilityErr != "" {
		err := errors.New(m.availabilityErr)
		m.mu.Unlock()
		return coordinator.Result{}, err
	}
	// The shared number is selected verbatim, as the link encodes exactly
	// what the sender was viewing.
	m.sel.DateNumber = m.deepLinkNumber
	year, number, err := m.sel.Resolve()
	if err != nil {
		m.mu.Unlock()
		return coordinator.Result{}, err
	}
	gen := m.beginBatchLocked()
	m.mu.Unlock()

	m.metrics.Submissions.WithLabelValues(string(domain.ModeNumber)).Inc()
	return m.runBatch(ctx, gen, year, number)
}

// ShareQuery serializes the currently displayed MPD plus the given visible
// overlay IDs into the deep-link query shape.
func (m *Machine) ShareQuery(visibleOverlays []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day, ok := m.metadata.ValidDay()
	if !ok {
		return "", fmt.Errorf("no MPD loaded to share")
	}
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		return "", fmt.Errorf("parse metadata valid date: %w", err)
	}
	return domain.EncodeShareQuery(date, string(m.metadata.MPDNumber), m.knownOverlays(visibleOverlays)), nil
}

// beginBatchLocked marks a fetch in flight and returns its generation token.
func (m *Machine) beginBatchLocked() uint64 {
	m.batchGen++
	m.fetching = true
	return m.batchGen
}

// runBatch performs the fan-out outside the lock and applies the result only
// if no newer batch superseded it, closing the stale-overwrite race.
func (m *Machine) runBatch(ctx context.Context, gen uint64, year int, number string) (coordinator.Result, error) {
	result := m.fetcher.FetchAll(ctx, year, number)

	m.mu.Lock()
	if gen != m.batchGen {
		m.metrics.StaleBatchesDropped.Inc()
		m.logger.Info("stale fetch batch dropped", "year", year, "mpd", number)
		m.mu.Unlock()
		return result, nil
	}

	m.fetching = false
	m.submitted = true
	m.deepLinkArmed = false
	m.bag = result.Artifacts
	m.metadata = result.Metadata
	m.failed = result.Failed
	m.availabilityErr = ""
	if len(result.Failed) > 0 {
		m.loadErr = "Error loading data for: " + strings.Join(result.Failed, ", ")
	} else {
		m.loadErr = ""
	}

	// Re-sync the date picker to the MPD actually displayed, mainly for
	// the step flow where paging crosses a day boundary.
	var refreshDate time.Time
	if day, ok := result.Metadata.ValidDay(); ok {
		if d, err := time.Parse("2006-01-02", day); err == nil && !d.Equal(m.sel.Date) {
			m.sel.Date = d
			refreshDate = d
		}
	}
	m.mu.Unlock()

	if !refreshDate.IsZero() {
		m.refreshAvailability(ctx, refreshDate)
	}
	return result, nil
}

// refreshAvailability looks up the valid numbers for a date and applies the
// outcome unless a newer lookup superseded it. On success the inactive
// mode's slot is synchronized; the active slot is never overwritten.
func (m *Machine) refreshAvailability(ctx context.Context, date time.Time) {
	m.mu.Lock()
	m.availGen++
	gen := m.availGen
	m.mu.Unlock()

	nums, err := m.fetcher.AvailableNumbers(ctx, date)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.availGen {
		return
	}

	if err != nil {
		if errors.Is(err, wpc.ErrNoData) {
			m.availabilityErr = "No MPD data for " + domain.DateKey(date)
		} else {
			m.availabilityErr = "Error fetching available MPDs"
			m.logger.Warn("availability lookup failed", "date", domain.DateKey(date), "error", err)
		}
		m.dateOptions = nil
		m.sel.DateNumber = ""
		return
	}

	m.availabilityErr = ""
	m.dateOptions = nums
	m.syncInactiveLocked()
}

// syncInactiveLocked reconciles the two modes after either slot or the
// availability options change. The rule is directional: the active mode is
// authoritative and sync only ever writes the inactive mode's slot.
func (m *Machine) syncInactiveLocked() {
	switch m.sel.Mode {
	case domain.ModeNumber:
		if m.sel.Number == "" || m.sel.Number == m.sel.DateNumber {
			return
		}
		for _, n := range m.dateOptions {
			if n == m.sel.Number {
				m.sel.DateNumber = m.sel.Number
				return
			}
		}
	case domain.ModeDate:
		if m.sel.DateNumber != "" && m.sel.DateNumber != m.sel.Number {
			m.sel.Number = m.sel.DateNumber
		}
	}
}

// knownOverlays filters overlay IDs to those the catalog knows about.
func (m *Machine) knownOverlays(ids []string) []string {
	var known []string
	for _, id := range ids {
		if m.catalog.HasOverlay(id) {
			known = append(known, id)
		}
	}
	return known
}

// normalizeNumber pads numeric input to the wire width and passes
// non-numeric input through untouched for Resolve to reject later.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return domain.PadNumber(n)
	}
	return s
}
