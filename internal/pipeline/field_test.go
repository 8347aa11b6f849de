package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majindogo/farm-survey-etl/internal/dataset"
	"github.com/majindogo/farm-survey-etl/internal/domain"
	"github.com/majindogo/farm-survey-etl/internal/observability"
	"github.com/majindogo/farm-survey-etl/internal/pipeline"
)

// --- mocks ---

type mockQuerier struct {
	table *dataset.Table
	err   error
	query string
}

func (m *mockQuerier) Query(_ context.Context, query string) (*dataset.Table, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

type mockFetcher struct {
	tables map[string]*dataset.Table
	err    error
}

func (m *mockFetcher) FetchTable(_ context.Context, url string) (*dataset.Table, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.tables[url]
	if !ok {
		return nil, errors.New("unexpected url: " + url)
	}
	return t, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// --- fixtures ---

const mappingURL = "https://example.test/mapping.csv"

// rawFieldTable carries the known source defects: crop labels live under
// Annual_yield, yields under Crop_type, and elevation signs are garbage.
func rawFieldTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(
		[]string{"Field_ID", "Elevation", "Annual_yield", "Crop_type", "Rainfall"},
		[][]any{
			{int64(1), -320.5, " cassaval ", 0.5, 440.2},
			{int64(2), 150.0, "maize", 1.2, 500.0},
			{int64(3), 0.0, "teaa", 0.9, 380.7},
		},
	)
	require.NoError(t, err)
	return tbl
}

func mappingTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(
		[]string{"", "Field_ID", "Weather_station"},
		[][]any{
			{"0", "1", "4"},
			{"1", "2", "5"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func newFieldProcessor(t *testing.T, q pipeline.Querier, f pipeline.Fetcher) *pipeline.FieldProcessor {
	t.Helper()
	return pipeline.NewFieldProcessor(pipeline.FieldConfig{
		SQLQuery: "SELECT * FROM survey",
		SwapFrom: "Annual_yield",
		SwapTo:   "Crop_type",
		ValueRenames: map[string]string{
			"cassaval": "cassava",
			"wheatn":   "wheat",
			"teaa":     "tea",
		},
		MappingURL: mappingURL,
	}, q, f, discardLogger(), testMetrics())
}

// --- tests ---

func TestFieldProcessor_Process(t *testing.T) {
	q := &mockQuerier{table: rawFieldTable(t)}
	f := &mockFetcher{tables: map[string]*dataset.Table{mappingURL: mappingTable(t)}}
	p := newFieldProcessor(t, q, f)

	table, err := p.Process(context.Background())
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, "SELECT * FROM survey", q.query)
	assert.Equal(t, pipeline.StateProcessed, p.State())

	// Swap repaired: crop labels are back under Crop_type.
	crops, err := table.Column(pipeline.ColCropType)
	require.NoError(t, err)
	assert.Equal(t, []any{"cassava", "maize", "tea"}, crops)

	yields, err := table.Column("Annual_yield")
	require.NoError(t, err)
	assert.Equal(t, []any{0.5, 1.2, 0.9}, yields)

	// Elevation sign repaired.
	elevations, err := table.Column(pipeline.ColElevation)
	require.NoError(t, err)
	assert.Equal(t, []any{320.5, 150.0, 0.0}, elevations)

	// Every field row preserved; unmatched fields get a nil station.
	assert.Equal(t, 3, table.NumRows())
	stations, err := table.Column(pipeline.ColWeatherStation)
	require.NoError(t, err)
	assert.Equal(t, []any{"4", "5", nil}, stations)

	// The mapping CSV's unnamed index column does not leak through.
	assert.NotContains(t, table.Columns(), "")
}

func TestFieldProcessor_TableAccessibleAfterProcess(t *testing.T) {
	q := &mockQuerier{table: rawFieldTable(t)}
	f := &mockFetcher{tables: map[string]*dataset.Table{mappingURL: mappingTable(t)}}
	p := newFieldProcessor(t, q, f)

	table, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Same(t, table, p.Table())
}

func TestFieldProcessor_ProcessedAtUsesClock(t *testing.T) {
	at := time.Date(2024, time.February, 24, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	defer domain.SetClock(nil)

	q := &mockQuerier{table: rawFieldTable(t)}
	f := &mockFetcher{tables: map[string]*dataset.Table{mappingURL: mappingTable(t)}}
	p := newFieldProcessor(t, q, f)

	_, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, p.ProcessedAt())
}

func TestFieldProcessor_IngestErrorPropagates(t *testing.T) {
	q := &mockQuerier{err: errors.New("connection refused")}
	p := newFieldProcessor(t, q, &mockFetcher{})

	_, err := p.Process(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, pipeline.StateNotLoaded, p.State())
}

func TestFieldProcessor_MappingFetchErrorPropagates(t *testing.T) {
	q := &mockQuerier{table: rawFieldTable(t)}
	f := &mockFetcher{err: errors.New("unreachable")}
	p := newFieldProcessor(t, q, f)

	_, err := p.Process(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather station mapping")
}

func TestFieldProcessor_StagesBeforeIngestReturnNotReady(t *testing.T) {
	p := newFieldProcessor(t, &mockQuerier{}, &mockFetcher{})

	assert.ErrorIs(t, p.SwapColumns(), pipeline.ErrNotReady)
	assert.ErrorIs(t, p.ApplyCorrections(), pipeline.ErrNotReady)
	assert.ErrorIs(t, p.MapWeatherStations(context.Background()), pipeline.ErrNotReady)
	assert.Equal(t, pipeline.StateNotLoaded, p.State())
}

func TestFieldProcessor_SwapUnknownColumnFails(t *testing.T) {
	tbl, err := dataset.New([]string{"Field_ID"}, [][]any{{int64(1)}})
	require.NoError(t, err)

	q := &mockQuerier{table: tbl}
	p := newFieldProcessor(t, q, &mockFetcher{})

	_, err = p.Process(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Annual_yield")
}
