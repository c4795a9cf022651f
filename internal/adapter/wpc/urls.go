package wpc

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
)

// noBufferProducts are the overlay products whose artifact file names carry
// no buffer-radius infix: warning polygons and accumulated precipitation are
// already areal, so no 20 km buffer is applied upstream.
var noBufferProducts = map[string]bool{
	"FFW":     true,
	"FLW":     true,
	"StageIV": true,
}

// fulldayProduct is the one product archived per full day rather than per
// MPD valid window.
const fulldayProduct = "MPING"

// noWAORCutoff marks the verification domain expansion: plots for periods
// at or after October 2024 drop the "_no_WA_OR" infix.
var noWAORCutoff = time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

// AvailabilityURL resolves the daily valid-numbers index for a date.
func AvailabilityURL(baseURL string, date time.Time) string {
	return fmt.Sprintf("%s/%d/MPD_nums_valid_%s.json",
		strings.TrimSuffix(baseURL, "/"), date.Year(), domain.DateKey(date))
}

// ArtifactURL resolves the GeoJSON artifact for a product, year, and MPD
// number. It never fails; an unknown combination simply yields a URL that
// will 404 at fetch time.
func ArtifactURL(baseURL, productID string, year int, number string) string {
	base := strings.TrimSuffix(baseURL, "/")

	folder := productID
	var file string
	switch {
	case productID == domain.ProductMPD:
		folder = "MPD_contour"
		file = fmt.Sprintf("MPD_contour_%d_%s.geojson", year, number)
	case noBufferProducts[productID]:
		file = fmt.Sprintf("%s_%d_%s.geojson", productID, year, number)
	case productID == fulldayProduct:
		file = fmt.Sprintf("%s_fullday_%d_%s.geojson", productID, year, number)
	default:
		file = fmt.Sprintf("%s_20km_%d_%s.geojson", productID, year, number)
	}

	return fmt.Sprintf("%s/%d/%s/%s", base, year, folder, file)
}

// PlotPeriod identifies one statistical plot image: the cadence plus the
// temporal selection fields that cadence uses.
type PlotPeriod struct {
	Cadence domain.Cadence
	Year    int
	Month   string // three-letter code, monthly cadence only
	Season  string // season code, seasonal cadence only
}

// PlotImageURL resolves the static plot image for a period and plot stem,
// applying the post-cutoff "_no_WA_OR" removal. Like ArtifactURL it never
// fails; unknown cadences yield an empty string for the caller to reject.
func PlotImageURL(imageBaseURL string, period PlotPeriod, plot string) string {
	base := strings.TrimSuffix(imageBaseURL, "/")

	var url string
	switch period.Cadence {
	case domain.CadenceMonthly:
		dir := fmt.Sprintf("%s/Monthly/%d_%s", base, period.Year, period.Month)
		// ALL_YEARS aggregates are regenerated each month and carry no year
		// in the file name.
		if strings.Contains(plot, "ALL_YEARS") {
			url = fmt.Sprintf("%s/%s_%s.png", dir, plot, period.Month)
		} else {
			url = fmt.Sprintf("%s/%s_%d_%s.png", dir, plot, period.Year, period.Month)
		}
	case domain.CadenceSeasonal:
		url = fmt.Sprintf("%s/Seasonal/%d_season_%s/%s_%d_season_%s.png",
			base, period.Year, period.Season, plot, period.Year, period.Season)
	case domain.CadenceAnnual:
		url = fmt.Sprintf("%s/All_Yrs/%s_%d.png", base, plot, period.Year)
	case domain.CadenceMultiYear:
		switch {
		case strings.Contains(plot, "EVENT"):
			url = fmt.Sprintf("%s/Event/All_Yrs/%s_%d.png", base, plot, period.Year)
		case strings.Contains(plot, "mpd_size"):
			// Size trend plots hyphenate before the year.
			url = fmt.Sprintf("%s/All_Yrs/%s-%d.png", base, plot, period.Year)
		default:
			url = fmt.Sprintf("%s/All_Yrs/%s_%d.png", base, plot, period.Year)
		}
	default:
		return ""
	}

	if period.onOrAfterCutoff() {
		url = strings.ReplaceAll(url, "_no_WA_OR", "")
	}
	return url
}

// onOrAfterCutoff reports whether the plot's period falls on or after the
// October 2024 domain expansion. Monthly periods compare year and month;
// a seasonal period counts once it extends past the cutoff (2024 SON);
// annual and multi-year periods count from the first full post-cutoff year.
func (p PlotPeriod) onOrAfterCutoff() bool {
	cutoffYear := noWAORCutoff.Year()
	switch p.Cadence {
	case domain.CadenceMonthly:
		if p.Year != cutoffYear {
			return p.Year > cutoffYear
		}
		return monthIndex(p.Month) >= int(noWAORCutoff.Month())
	case domain.CadenceSeasonal:
		if p.Year != cutoffYear {
			return p.Year > cutoffYear
		}
		return p.Season == "SON"
	default:
		return p.Year > cutoffYear
	}
}

func monthIndex(code string) int {
	for i, m := range domain.Months {
		if m == code {
			return i + 1
		}
	}
	return 0
}
