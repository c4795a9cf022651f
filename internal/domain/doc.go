// Package domain models Weather Prediction Center (WPC) Mesoscale
// Precipitation Discussion (MPD) verification data.
//
// # Data Source
//
// Verification artifacts are pre-computed by an out-of-band WPC process and
// published as flat files under a per-year directory tree, e.g.
// https://origin.wpc.ncep.noaa.gov/verification/mpd_verif/. This service
// never computes skill scores itself; it only resolves file names, fetches
// them, and merges the results for display.
//
// # MPD Identifiers
//
// An MPD instance is identified by its issuance year plus a sequence number
// that resets each year and is zero-padded to four digits on the wire
// ("0007", not "7"). The daily index file MPD_nums_valid_<YYYYMMDD>.json
// lists the numbers valid on a given calendar date; a 404 for that file is
// the normal "no MPDs issued that day" condition, not a transport failure.
//
// # Artifact Naming Conventions
//
// Overlay products follow one of four GeoJSON file name templates:
//
//	MPD itself:          MPD_contour_<year>_<num>.geojson under MPD_contour/
//	Warning polygons and
//	accumulated precip:  <id>_<year>_<num>.geojson        (FFW, FLW, StageIV)
//	mPING reports:       <id>_fullday_<year>_<num>.geojson
//	Everything else:     <id>_20km_<year>_<num>.geojson
//
// The "_20km_" infix denotes the 20 km buffer radius applied to point and
// area observations before matching them against the MPD polygon. The MPD
// document may carry a top-level "metadata" object with the tag, valid
// period, and verification statistics (CSI, GSS, fractional coverage, unit
// discharge, centroid displacement).
//
// # Statistical Plot Naming
//
// Monthly, seasonal, annual, and multi-year verification plots are static
// PNGs whose names encode the period. Two irregularities matter:
//
//	ALL_YEARS monthly plots omit the year from the file name.
//	Plots produced for periods from October 2024 onward drop the
//	"_no_WA_OR" infix, because Washington and Oregon were added to the
//	verification domain at that point.
//
// Plot name templates are enumerated per cadence in this package; the URL
// shapes themselves live in the wpc adapter.
package domain
