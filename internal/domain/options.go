package domain

// Cadence is the reporting period granularity for the plot browser.
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceSeasonal  Cadence = "seasonal"
	CadenceAnnual    Cadence = "annual"
	CadenceMultiYear Cadence = "multiyear"
)

// Cadences lists the supported cadences in display order.
var Cadences = []Cadence{CadenceMonthly, CadenceSeasonal, CadenceAnnual, CadenceMultiYear}

// MapEpochYear is the first year with per-MPD overlay artifacts.
// ImageEpochYear is the first year with statistical plots.
const (
	MapEpochYear   = 2020
	ImageEpochYear = 2017
)

// Months are the three-letter month codes used in plot paths.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Seasons are the meteorological season codes used in plot paths.
var Seasons = []string{"DJF", "MAM", "JJA", "SON"}

// Years enumerates selectable MPD years, epoch through the current year.
func Years() []int {
	return yearsFrom(MapEpochYear)
}

// ImageYears enumerates selectable plot years, epoch through the current year.
func ImageYears() []int {
	return yearsFrom(ImageEpochYear)
}

func yearsFrom(epoch int) []int {
	current := clock.Now().UTC().Year()
	if current < epoch {
		return []int{epoch}
	}
	years := make([]int, 0, current-epoch+1)
	for y := epoch; y <= current; y++ {
		years = append(years, y)
	}
	return years
}

// DefaultPlotYear is the year preselected for a cadence: the current year
// for monthly and seasonal plots, the last complete year for annual and
// multi-year plots (those are only produced after a year closes out).
func DefaultPlotYear(c Cadence) int {
	current := clock.Now().UTC().Year()
	if c == CadenceAnnual || c == CadenceMultiYear {
		return current - 1
	}
	return current
}

// Plot is one selectable statistical plot: a display label plus the file
// name stem used in the image URL.
type Plot struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Plots returns the plot enumeration for a cadence, or nil for an unknown
// cadence.
func Plots(c Cadence) []Plot {
	switch c {
	case CadenceMonthly:
		return monthlyPlots
	case CadenceSeasonal:
		return seasonalPlots
	case CadenceAnnual:
		return annualPlots
	case CadenceMultiYear:
		return multiYearPlots
	default:
		return nil
	}
}

var monthlyPlots = []Plot{
	{"Heat Map - All MPDs", "heat_map_all_MPD"},
	{"Heat Map - False Alarm MPDs", "heat_map_no_WA_OR_FAR_MPD"},
	{"MPD/UFVS Centroid and Directional Displacement", "rose_cen_disp_mpd"},
	{"Skill Scores", "barchart_no_WA_OR_20km_skill_scores"},
	{"CSI - All MPDs (YTD)", "barchart_20km_no_WA_OR_CSI_ALL_YTD"},
	{"Bias - All MPDs (YTD)", "barchart_20km_no_WA_OR_FRB_ALL_YTD"},
	{"Frac. Cov. - All MPDs (YTD)", "barchart_20km_no_WA_OR_FRC_ALL_YTD"},
	{"False Alarm MPDs (YTD)", "barchart_20km_no_WA_OR_FAR_ALL_YTD"},
	{"Percentage of MPDs with No Obs (YTD)", "barchart_20km_no_WA_OR_FAR_PCT_ALL_YTD"},
	{"CSI - All MPDs (All Years)", "barchart_20km_no_WA_OR_CSI_ALL_YEARS"},
	{"Bias - All MPDs (All Years)", "barchart_20km_no_WA_OR_FRB_ALL_YEARS"},
	{"Frac. Cov. - All MPDs (All Years)", "barchart_20km_no_WA_OR_FRC_ALL_YEARS"},
	{"False Alarm MPDs (All Years)", "barchart_20km_no_WA_OR_FAR_ALL_YEARS"},
	{"Percentage of MPDs with No Obs (All Years)", "barchart_20km_no_WA_OR_FAR_PCT_ALL_YEARS"},
}

var seasonalPlots = []Plot{
	{"Heat Map - All MPDs", "heat_map_all_MPD"},
	{"Skill Scores", "barchart_20km_skill_scores"},
	{"MPD/UFVS Centroid and Directional Displacement", "rose_cen_disp_mpd"},
}

var annualPlots = []Plot{
	{"Skill Scores", "barchart_no_WA_OR_skill_scores_year"},
	{"Heat Map - All MPDs", "heat_map_all_MPD_year"},
	{"Heat Map - False Alarm MPDs", "heat_map_FAR_MPDs_year"},
	{"Heat Map - DJF MPDs", "heat_map_DJF_MPD"},
	{"Heat Map - MAM MPDs", "heat_map_MAM_MPD"},
	{"Heat Map - JJA MPDs", "heat_map_JJA_MPD"},
	{"Heat Map - SON MPDs", "heat_map_SON_MPD"},
	{"MPD/UFVS Centroid and Directional Displacement", "rose_cen_disp_mpd_year"},
	{"MPD/UFVS Centroid and Directional Displacement (DJF)", "rose_cen_disp_mpd_year_DJF"},
	{"MPD/UFVS Centroid and Directional Displacement (MAM)", "rose_cen_disp_mpd_year_MAM"},
	{"MPD/UFVS Centroid and Directional Displacement (JJA)", "rose_cen_disp_mpd_year_JJA"},
	{"MPD/UFVS Centroid and Directional Displacement (SON)", "rose_cen_disp_mpd_year_SON"},
	{"MPD/UFVS Centroid and Directional Displacement (WC)", "rose_cen_disp_mpd_year_WC"},
	{"MPD/UFVS Centroid and Directional Displacement (SW)", "rose_cen_disp_mpd_year_SW"},
	{"MPD/UFVS Centroid and Directional Displacement (NP)", "rose_cen_disp_mpd_year_NP"},
	{"MPD/UFVS Centroid and Directional Displacement (SP)", "rose_cen_disp_mpd_year_SP"},
	{"MPD/UFVS Centroid and Directional Displacement (SE)", "rose_cen_disp_mpd_year_SE"},
	{"MPD/UFVS Centroid and Directional Displacement (NE)", "rose_cen_disp_mpd_year_NE"},
}

var multiYearPlots = []Plot{
	{"Heat Map - All MPDs", "heat_map_all_MPD_GnBu_2018"},
	{"CSI", "barchart_no_WA_OR_CSI_MPD_yrs_2018"},
	{"Frequency Bias", "barchart_no_WA_OR_BIAS_MPD_yrs_2018"},
	{"Frac. Cov.", "barchart_no_WA_OR_FR_COV_MPD_yrs_2018"},
	{"Number of MPDs", "barchart_no_WA_OR_NUM_MPD_yrs_2018"},
	{"False Alarm MPDs", "barchart_no_WA_OR_FAR_CT_MPD_yrs_2018"},
	{"False Alarm %", "barchart_no_WA_OR_FAR_PERCENT_MPD_yrs_2018"},
	{"CSI (By Region)", "barchart_no_WA_OR_CSI_MPD_REGION_yrs_2018"},
	{"Frequency Bias (By Region)", "barchart_no_WA_OR_BIAS_MPD_REGION_yrs_2018"},
	{"Frac. Cov. (By Region)", "barchart_no_WA_OR_FR_COV_MPD_REGION_yrs_2018"},
	{"Number of MPDs (By Region)", "barchart_no_WA_OR_NUM_MPD_REGION_yrs_2018"},
	{"False Alarm MPDs (By Region)", "barchart_no_WA_OR_FAR_CT_MPD_REGION_yrs_2018"},
	{"False Alarm % (By Region)", "barchart_no_WA_OR_FAR_PERCENT_MPD_REGION_yrs_2018"},
	{"CSI (By Season)", "barchart_no_WA_OR_CSI_MPD_SEASON_yrs_2018"},
	{"Frequency Bias (By Season)", "barchart_no_WA_OR_FR_BIAS_MPD_SEASON_yrs_2018"},
	{"Frac. Cov. (By Season)", "barchart_no_WA_OR_FR_COV_MPD_SEASON_yrs_2018"},
	{"Number of MPDs (By Season)", "barchart_no_WA_OR_NUM_MPD_SEASON_yrs_2018"},
	{"False Alarm MPDs (By Season)", "barchart_no_WA_OR_FAR_CT_MPD_SEASON_yrs_2018"},
	{"False Alarm % (By Season)", "barchart_no_WA_OR_FAR_PERCENT_MPD_SEASON_yrs_2018"},
	{"CSI (By Event Type)", "barchart_20km_CSI_MPD_EVENT_yrs_2018"},
	{"Frequency Bias (By Event Type)", "barchart_20km_BIAS_MPD_EVENT_yrs_2018"},
	{"Frac. Cov. (By Event Type)", "barchart_20km_FCOV_MPD_EVENT_yrs_2018"},
	{"False Alarm MPDs (By Event Type)", "barchart_20km_FAR_num_MPD_EVENT_yrs_2018"},
	{"False Alarm % (By Event Type)", "barchart_20km_FAR_PCT_MPD_EVENT_yrs_2018"},
	{"MPD Size", "line_plot_mpd_size_2018"},
	{"MPD Size (By region)", "line_plot_mpd_size_region_2018"},
	{"MPD Size (By season)", "line_plot_mpd_size_season_2018"},
}
