package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/kafkaaudit"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/coordinator"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/selection"
)

// optionsResponse enumerates every selectable value the UI renders as a
// dropdown, so the client never hardcodes years or period codes.
type optionsResponse struct {
	Years      []int            `json:"years"`
	ImageYears []int            `json:"image_years"`
	Months     []string         `json:"months"`
	Seasons    []string         `json:"seasons"`
	Cadences   []domain.Cadence `json:"cadences"`
}

type plotsResponse struct {
	Cadence     domain.Cadence `json:"cadence"`
	DefaultYear int            `json:"default_year"`
	Plots       []domain.Plot  `json:"plots"`
}

type submitResponse struct {
	State     selection.State    `json:"state"`
	Artifacts domain.ArtifactBag `json:"artifacts"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		Years:      domain.Years(),
		ImageYears: domain.ImageYears(),
		Months:     domain.Months,
		Seasons:    domain.Seasons,
		Cadences:   domain.Cadences,
	})
}

func (s *Server) handlePlots(w http.ResponseWriter, r *http.Request) {
	cadence := domain.Cadence(r.URL.Query().Get("cadence"))
	plots := domain.Plots(cadence)
	if plots == nil {
		writeError(w, http.StatusBadRequest, "unknown cadence")
		return
	}
	writeJSON(w, http.StatusOK, plotsResponse{
		Cadence:     cadence,
		DefaultYear: domain.DefaultPlotYear(cadence),
		Plots:       plots,
	})
}

func (s *Server) handlePlotURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cadence := domain.Cadence(q.Get("cadence"))
	plot := q.Get("plot")

	if !knownPlot(cadence, plot) {
		writeError(w, http.StatusBadRequest, "unknown cadence or plot")
		return
	}

	period := wpc.PlotPeriod{
		Cadence: cadence,
		Month:   q.Get("month"),
		Season:  q.Get("season"),
	}
	if y := q.Get("year"); y != "" {
		year, err := parseYear(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		period.Year = year
	} else {
		period.Year = domain.DefaultPlotYear(cadence)
	}
	switch cadence {
	case domain.CadenceMonthly:
		if monthIndexOf(period.Month) == 0 {
			writeError(w, http.StatusBadRequest, "monthly plots need a valid month")
			return
		}
	case domain.CadenceSeasonal:
		if !knownSeason(period.Season) {
			writeError(w, http.StatusBadRequest, "seasonal plots need a valid season")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": wpc.PlotImageURL(s.imageBaseURL, period, plot),
	})
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDateKey(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYYMMDD")
		return
	}

	nums, err := s.availability.AvailableNumbers(r.Context(), date)
	if err != nil {
		if errors.Is(err, wpc.ErrNoData) {
			writeError(w, http.StatusNotFound, "No MPD data for "+domain.DateKey(date))
			return
		}
		s.logger.Error("availability lookup failed", "date", domain.DateKey(date), "error", err)
		writeError(w, http.StatusBadGateway, "Error fetching available MPDs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":     domain.DateKey(date),
		"mpd_nums": nums,
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleArtifacts(w http.ResponseWriter, _ *http.Request) {
	bag := s.machine.Artifacts()
	if bag == nil {
		bag = domain.ArtifactBag{}
	}
	writeJSON(w, http.StatusOK, bag)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	query, err := s.machine.ShareQuery(r.URL.Query()["overlay"])
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"query": query})
}

func (s *Server) handleSetYear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Year == 0 {
		writeError(w, http.StatusBadRequest, "body must carry a year")
		return
	}
	s.machine.SetYear(body.Year)
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleSetNumber(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.machine.SetNumber(body.Number); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleSetDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	date, err := domain.ParseDateKey(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYYMMDD")
		return
	}
	s.machine.SetDate(r.Context(), date)
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleSelectAvailable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.machine.SelectAvailable(body.Number); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.machine.State())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.machine.Submit(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.publishAudit(result, time.Since(start))
	writeJSON(w, http.StatusOK, submitResponse{
		State:     s.machine.State(),
		Artifacts: result.Artifacts,
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Delta == 0 {
		writeError(w, http.StatusBadRequest, "body must carry a non-zero delta")
		return
	}

	start := time.Now()
	result, err := s.machine.Step(r.Context(), body.Delta)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.publishAudit(result, time.Since(start))
	writeJSON(w, http.StatusOK, submitResponse{
		State:     s.machine.State(),
		Artifacts: result.Artifacts,
	})
}

// handleDeepLink applies a shared link's query parameters, auto-submitting
// once the date's availability confirms. The query shape is the share URL's
// own: date, mpd, and repeated overlay parameters.
func (s *Server) handleDeepLink(w http.ResponseWriter, r *http.Request) {
	dl, ok, err := domain.ParseDeepLink(r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "deep link needs both date and mpd parameters")
		return
	}

	start := time.Now()
	result, err := s.machine.ApplyDeepLink(r.Context(), dl)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.publishAudit(result, time.Since(start))
	writeJSON(w, http.StatusOK, submitResponse{
		State:     s.machine.State(),
		Artifacts: result.Artifacts,
	})
}

// publishAudit records a completed submission on the audit topic. Publishing
// is fire-and-forget: the dashboard never blocks or fails a request on the
// audit path.
func (s *Server) publishAudit(result coordinator.Result, took time.Duration) {
	if s.audit == nil {
		return
	}
	state := s.machine.State()
	event := kafkaaudit.SubmissionEvent{
		Mode:        string(state.Mode),
		Year:        state.Year,
		Number:      state.Number,
		Failed:      result.Failed,
		DurationMs:  took.Milliseconds(),
		SubmittedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.PublishSubmission(ctx, event); err != nil {
			s.metrics.AuditErrors.Inc()
			s.logger.Warn("audit publish failed", "error", err)
		}
	}()
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 2200 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}

func knownPlot(c domain.Cadence, plot string) bool {
	for _, p := range domain.Plots(c) {
		if p.Value == plot {
			return true
		}
	}
	return false
}

func knownSeason(code string) bool {
	for _, s := range domain.Seasons {
		if s == code {
			return true
		}
	}
	return false
}

func monthIndexOf(code string) int {
	for i, m := range domain.Months {
		if m == code {
			return i + 1
		}
	}
	return 0
}
