package wpc

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
)

const testBase = "https://origin.example.gov/verification/mpd_verif/"

func TestAvailabilityURL(t *testing.T) {
	date := time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"https://origin.example.gov/verification/mpd_verif/2024/MPD_nums_valid_20240915.json",
		AvailabilityURL(testBase, date))
}

func TestArtifactURL(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"MPD", "2023/MPD_contour/MPD_contour_2023_0007.geojson"},
		{"FFW", "2023/FFW/FFW_2023_0007.geojson"},
		{"FLW", "2023/FLW/FLW_2023_0007.geojson"},
		{"StageIV", "2023/StageIV/StageIV_2023_0007.geojson"},
		{"MPING", "2023/MPING/MPING_fullday_2023_0007.geojson"},
		{"USGS", "2023/USGS/USGS_20km_2023_0007.geojson"},
		{"ST4gARI", "2023/ST4gARI/ST4gARI_20km_2023_0007.geojson"},
		{"LSRFLASH", "2023/LSRFLASH/LSRFLASH_20km_2023_0007.geojson"},
	}

	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			got := ArtifactURL(testBase, tt.product, 2023, "0007")
			assert.Equal(t, "https://origin.example.gov/verification/mpd_verif/"+tt.want, got)
		})
	}
}

func TestArtifactURL_BufferInfix(t *testing.T) {
	// Everything outside the fixed no-buffer set and the fullday product
	// carries the 20 km buffer infix.
	catalog, _ := domain.LoadCatalog("")
	for _, id := range catalog.ProductIDs() {
		url := ArtifactURL(testBase, id, 2023, "0007")
		switch {
		case id == domain.ProductMPD:
			assert.NotContains(t, url, "_20km_", id)
		case noBufferProducts[id], id == fulldayProduct:
			assert.NotContains(t, url, "_20km_", id)
		default:
			assert.Contains(t, url, "_20km_", id)
		}
	}
}

const imgBase = "https://www.example.gov/verification/mpd_verif/Images"

func TestPlotImageURL_Monthly(t *testing.T) {
	period := PlotPeriod{Cadence: domain.CadenceMonthly, Year: 2023, Month: "Jun"}

	assert.Equal(t,
		imgBase+"/Monthly/2023_Jun/heat_map_all_MPD_2023_Jun.png",
		PlotImageURL(imgBase, period, "heat_map_all_MPD"))

	// ALL_YEARS aggregates omit the year.
	assert.Equal(t,
		imgBase+"/Monthly/2023_Jun/barchart_20km_no_WA_OR_CSI_ALL_YEARS_Jun.png",
		PlotImageURL(imgBase, period, "barchart_20km_no_WA_OR_CSI_ALL_YEARS"))
}

func TestPlotImageURL_Seasonal(t *testing.T) {
	period := PlotPeriod{Cadence: domain.CadenceSeasonal, Year: 2023, Season: "JJA"}
	assert.Equal(t,
		imgBase+"/Seasonal/2023_season_JJA/barchart_20km_skill_scores_2023_season_JJA.png",
		PlotImageURL(imgBase, period, "barchart_20km_skill_scores"))
}

func TestPlotImageURL_Annual(t *testing.T) {
	period := PlotPeriod{Cadence: domain.CadenceAnnual, Year: 2023}
	assert.Equal(t,
		imgBase+"/All_Yrs/heat_map_all_MPD_year_2023.png",
		PlotImageURL(imgBase, period, "heat_map_all_MPD_year"))
}

func TestPlotImageURL_MultiYear(t *testing.T) {
	period := PlotPeriod{Cadence: domain.CadenceMultiYear, Year: 2023}

	assert.Equal(t,
		imgBase+"/Event/All_Yrs/barchart_20km_CSI_MPD_EVENT_yrs_2018_2023.png",
		PlotImageURL(imgBase, period, "barchart_20km_CSI_MPD_EVENT_yrs_2018"))

	assert.Equal(t,
		imgBase+"/All_Yrs/line_plot_mpd_size_2018-2023.png",
		PlotImageURL(imgBase, period, "line_plot_mpd_size_2018"))

	assert.Equal(t,
		imgBase+"/All_Yrs/barchart_no_WA_OR_CSI_MPD_yrs_2018_2023.png",
		PlotImageURL(imgBase, period, "barchart_no_WA_OR_CSI_MPD_yrs_2018"))
}

func TestPlotImageURL_UnknownCadence(t *testing.T) {
	assert.Empty(t, PlotImageURL(imgBase, PlotPeriod{Cadence: "weekly", Year: 2023}, "x"))
}

func TestPlotImageURL_NoWAORCutoff(t *testing.T) {
	const plot = "barchart_20km_no_WA_OR_CSI_ALL_YTD"

	tests := []struct {
		name     string
		period   PlotPeriod
		stripped bool
	}{
		{"monthly before cutoff", PlotPeriod{domain.CadenceMonthly, 2024, "Sep", ""}, false},
		{"monthly at cutoff", PlotPeriod{domain.CadenceMonthly, 2024, "Oct", ""}, true},
		{"monthly after cutoff month", PlotPeriod{domain.CadenceMonthly, 2024, "Dec", ""}, true},
		{"monthly after cutoff year", PlotPeriod{domain.CadenceMonthly, 2025, "Jan", ""}, true},
		{"monthly well before", PlotPeriod{domain.CadenceMonthly, 2023, "Nov", ""}, false},
		{"seasonal before", PlotPeriod{domain.CadenceSeasonal, 2024, "", "JJA"}, false},
		{"seasonal straddling", PlotPeriod{domain.CadenceSeasonal, 2024, "", "SON"}, true},
		{"seasonal after", PlotPeriod{domain.CadenceSeasonal, 2025, "", "DJF"}, true},
		{"annual before", PlotPeriod{domain.CadenceAnnual, 2024, "", ""}, false},
		{"annual after", PlotPeriod{domain.CadenceAnnual, 2025, "", ""}, true},
		{"multiyear before", PlotPeriod{domain.CadenceMultiYear, 2024, "", ""}, false},
		{"multiyear after", PlotPeriod{domain.CadenceMultiYear, 2025, "", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := PlotImageURL(imgBase, tt.period, plot)
			if tt.stripped {
				assert.NotContains(t, url, "_no_WA_OR")
			} else {
				assert.Contains(t, url, "_no_WA_OR")
			}
		})
	}
}

func TestPlotImageURL_AllEnumeratedPlotsResolve(t *testing.T) {
	for _, cadence := range domain.Cadences {
		for _, plot := range domain.Plots(cadence) {
			period := PlotPeriod{Cadence: cadence, Year: 2023, Month: "Jan", Season: "DJF"}
			url := PlotImageURL(imgBase, period, plot.Value)
			assert.True(t, strings.HasSuffix(url, ".png"),
				fmt.Sprintf("%s/%s resolved to %q", cadence, plot.Value, url))
		}
	}
}
