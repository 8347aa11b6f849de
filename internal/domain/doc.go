// Package domain holds the transformation rules for the Maji Ndogo farm
// survey dataset.
//
// # Data Sources
//
// Field survey records come from the project database: one row per
// surveyed plot, produced by joining the geographic, weather, soil/crop,
// and farm management feature tables on Field_ID. Two known defects exist
// in that source: the Annual_yield and Crop_type columns were swapped at
// ingestion time, and elevation values carry a meaningless sign. A handful
// of crop type labels are misspelled ("cassaval", "wheatn", "teaa") and
// padded with whitespace.
//
// Weather station readings arrive as a remote CSV of free-text messages,
// one per reading:
//
//	"Rainfall reading: 23.5mm"
//	"Temperature at the weather station: 28C"
//	"Pollution level = 0.85"
//
// A separate mapping CSV relates Field_ID to the Weather_station covering
// that plot. Despite the similar names, the reading table and the mapping
// table are distinct datasets.
//
// # Measurement Extraction
//
// Each message is matched against an ordered list of patterns, one per
// measurement kind. The first pattern that matches wins, so the configured
// order is semantically significant: a message that could spuriously match
// two patterns is always attributed to the kind listed first. A pattern
// may carry several capturing groups to tolerate alternative phrasings
// ("= 0.85" vs "Pollution at 0.85"); the first group that participated in
// the match supplies the numeric value. Messages matching no pattern yield
// an explicit no-match rather than an error.
package domain
