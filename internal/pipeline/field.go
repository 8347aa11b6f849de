package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/majindogo/farm-survey-etl/internal/dataset"
	"github.com/majindogo/farm-survey-etl/internal/domain"
	"github.com/majindogo/farm-survey-etl/internal/observability"
)

// Column names of the field survey dataset.
const (
	ColFieldID        = "Field_ID"
	ColElevation      = "Elevation"
	ColCropType       = "Crop_type"
	ColWeatherStation = "Weather_station"
)

// FieldConfig holds the settings the field pipeline needs.
type FieldConfig struct {
	SQLQuery     string
	SwapFrom     string // the pair of columns whose data were exchanged upstream
	SwapTo       string
	ValueRenames map[string]string // crop type typo -> canonical form
	MappingURL   string            // Field_ID -> Weather_station mapping CSV
}

// FieldProcessor produces a fully corrected, weather-annotated field table.
type FieldProcessor struct {
	cfg     FieldConfig
	querier Querier
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics

	table       *dataset.Table
	state       State
	processedAt time.Time
}

// NewFieldProcessor creates a field pipeline over the given collaborators.
func NewFieldProcessor(cfg FieldConfig, q Querier, f Fetcher, logger *slog.Logger, metrics *observability.Metrics) *FieldProcessor {
	return &FieldProcessor{
		cfg:     cfg,
		querier: q,
		fetcher: f,
		logger:  logger,
		metrics: metrics,
	}
}

// Table returns the current field table. It remains accessible after
// Process returns, in whatever shape the last completed stage left it.
func (p *FieldProcessor) Table() *dataset.Table { return p.table }

// State reports how far the processor has advanced.
func (p *FieldProcessor) State() State { return p.state }

// ProcessedAt is the completion time of the last successful Process run.
func (p *FieldProcessor) ProcessedAt() time.Time { return p.processedAt }

// Process runs the full field pipeline: ingest, column swap, corrections,
// weather station mapping. Stages run strictly in that order; the first
// failure aborts the run and propagates.
func (p *FieldProcessor) Process(ctx context.Context) (*dataset.Table, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	err := p.run(ctx)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("field", "error").Inc()
		return nil, err
	}

	p.metrics.PipelineRuns.WithLabelValues("field", "success").Inc()
	p.metrics.PipelineDuration.WithLabelValues("field").Observe(time.Since(start).Seconds())
	p.processedAt = domain.Now()
	p.logger.Info("field pipeline complete",
		"rows", p.table.NumRows(),
		"columns", len(p.table.Columns()),
	)
	return p.table, nil
}

func (p *FieldProcessor) run(ctx context.Context) error {
	if err := p.Ingest(ctx); err != nil {
		return err
	}
	if err := p.SwapColumns(); err != nil {
		return err
	}
	if err := p.ApplyCorrections(); err != nil {
		return err
	}
	return p.MapWeatherStations(ctx)
}

// Ingest executes the configured SQL query and stores the raw table.
func (p *FieldProcessor) Ingest(ctx context.Context) error {
	table, err := p.querier.Query(ctx, p.cfg.SQLQuery)
	if err != nil {
		return fmt.Errorf("ingest field data: %w", err)
	}
	p.table = table
	p.state = StateLoaded
	p.metrics.RowsIngested.WithLabelValues("field").Add(float64(table.NumRows()))
	p.logger.Info("field data loaded", "rows", table.NumRows())
	return nil
}

// SwapColumns repairs the known upstream labeling defect by exchanging the
// data under the configured column pair.
func (p *FieldProcessor) SwapColumns() error {
	if p.state < StateLoaded {
		return ErrNotReady
	}
	if err := p.table.SwapColumns(p.cfg.SwapFrom, p.cfg.SwapTo); err != nil {
		return err
	}
	p.logger.Info("swapped columns", "from", p.cfg.SwapFrom, "to", p.cfg.SwapTo)
	return nil
}

// ApplyCorrections repairs the elevation sign artifact and normalizes crop
// type labels against the typo-rename mapping.
func (p *FieldProcessor) ApplyCorrections() error {
	if p.state < StateLoaded {
		return ErrNotReady
	}

	if err := p.table.Apply(ColElevation, func(v any) any {
		f, ok := dataset.Float(v)
		if !ok {
			return v
		}
		return domain.CorrectElevation(f)
	}); err != nil {
		return err
	}

	if err := p.table.Apply(ColCropType, func(v any) any {
		return domain.NormalizeCropType(p.cfg.ValueRenames, dataset.String(v))
	}); err != nil {
		return err
	}

	p.logger.Info("applied corrections", "columns", []string{ColElevation, ColCropType})
	return nil
}

// MapWeatherStations fetches the Field_ID -> Weather_station mapping table
// and left-joins it onto the field table. Every field row is preserved;
// fields without a mapped station get a nil Weather_station. The unnamed
// index column the mapping CSV carries is dropped by position before the
// join.
func (p *FieldProcessor) MapWeatherStations(ctx context.Context) error {
	if p.state < StateLoaded {
		return ErrNotReady
	}

	mapping, err := p.fetcher.FetchTable(ctx, p.cfg.MappingURL)
	if err != nil {
		return fmt.Errorf("load weather station mapping: %w", err)
	}

	if i, ok := mapping.ColumnIndex(""); ok {
		if err := mapping.DropColumnAt(i); err != nil {
			return err
		}
	}

	joined, err := p.table.LeftJoin(mapping, ColFieldID)
	if err != nil {
		return fmt.Errorf("join weather station mapping: %w", err)
	}

	p.table = joined
	p.state = StateProcessed
	p.logger.Info("weather stations mapped", "mapping_rows", mapping.NumRows())
	return nil
}
