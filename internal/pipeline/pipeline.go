// Package pipeline contains the two batch processors that transform the
// Maji Ndogo source datasets: the field pipeline (survey records from the
// database) and the weather pipeline (station readings from a remote CSV).
// Each processor is a small state machine; stages invoked before their
// predecessor return ErrNotReady rather than failing on missing state.
package pipeline

import (
	"context"
	"errors"

	"github.com/majindogo/farm-survey-etl/internal/dataset"
)

// ErrNotReady is returned when a pipeline stage is invoked before the
// stage it depends on has run.
var ErrNotReady = errors.New("pipeline: dataset not loaded")

// State tracks how far a processor has advanced through its stages.
type State int

const (
	StateNotLoaded State = iota
	StateLoaded
	StateProcessed
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoaded:
		return "loaded"
	case StateProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

// Querier runs a SQL query and returns the result as a table.
type Querier interface {
	Query(ctx context.Context, query string) (*dataset.Table, error)
}

// Fetcher retrieves a remote CSV resource as a table.
type Fetcher interface {
	FetchTable(ctx context.Context, url string) (*dataset.Table, error)
}
