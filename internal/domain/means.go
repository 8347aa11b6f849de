package domain

import (
	"slices"

	"github.com/majindogo/farm-survey-etl/internal/dataset"
)

// StationReading is one weather station reading after message extraction.
// Matched is false for readings whose message matched no pattern; such
// readings are excluded from aggregation.
type StationReading struct {
	StationID string
	Measurement
	Matched bool
}

// StationMeans groups readings by (station, measurement kind), computes the
// arithmetic mean of each group's values, and pivots the result into a wide
// table: one row per station, a Weather_station_ID column followed by one
// column per observed measurement kind. Kinds appear in the order given by
// kindOrder (the configured pattern order); kinds not listed there come
// last in first-seen order. Stations are sorted by ID. A nil cell means the
// station produced no readings of that kind.
func StationMeans(readings []StationReading, kindOrder []string) *dataset.Table {
	type group struct {
		sum float64
		n   int
	}
	groups := make(map[string]map[string]*group)
	var seenKinds []string

	for _, r := range readings {
		if !r.Matched {
			continue
		}
		byKind := groups[r.StationID]
		if byKind == nil {
			byKind = make(map[string]*group)
			groups[r.StationID] = byKind
		}
		g := byKind[r.Kind]
		if g == nil {
			g = &group{}
			byKind[r.Kind] = g
			if !slices.Contains(seenKinds, r.Kind) {
				seenKinds = append(seenKinds, r.Kind)
			}
		}
		g.sum += r.Value
		g.n++
	}

	var kinds []string
	for _, k := range kindOrder {
		if slices.Contains(seenKinds, k) {
			kinds = append(kinds, k)
		}
	}
	for _, k := range seenKinds {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}

	stations := make([]string, 0, len(groups))
	for id := range groups {
		stations = append(stations, id)
	}
	slices.Sort(stations)

	cols := append([]string{"Weather_station_ID"}, kinds...)
	rows := make([][]any, 0, len(stations))
	for _, id := range stations {
		row := make([]any, 0, len(cols))
		row = append(row, id)
		for _, k := range kinds {
			if g := groups[id][k]; g != nil {
				row = append(row, g.sum/float64(g.n))
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}

	t, _ := dataset.New(cols, rows)
	return t
}
