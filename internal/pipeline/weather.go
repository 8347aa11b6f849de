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

// Column names of the weather station reading dataset.
const (
	ColStationID   = "Weather_station_ID"
	ColMessage     = "Message"
	ColMeasurement = "Measurement"
	ColValue       = "Value"
)

// WeatherConfig holds the settings the weather pipeline needs.
type WeatherConfig struct {
	StationCSVURL string
	Patterns      []domain.Pattern // precedence order
}

// WeatherProcessor annotates station readings with extracted measurements
// and answers per-station mean queries.
type WeatherProcessor struct {
	cfg     WeatherConfig
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics

	table       *dataset.Table
	state       State
	processedAt time.Time
}

// NewWeatherProcessor creates a weather pipeline over the given fetcher.
func NewWeatherProcessor(cfg WeatherConfig, f Fetcher, logger *slog.Logger, metrics *observability.Metrics) *WeatherProcessor {
	return &WeatherProcessor{
		cfg:     cfg,
		fetcher: f,
		logger:  logger,
		metrics: metrics,
	}
}

// Table returns the current weather table.
func (p *WeatherProcessor) Table() *dataset.Table { return p.table }

// State reports how far the processor has advanced.
func (p *WeatherProcessor) State() State { return p.state }

// ProcessedAt is the completion time of the last successful Process run.
func (p *WeatherProcessor) ProcessedAt() time.Time { return p.processedAt }

// Process loads the station readings and extracts measurements from every
// message. Means are not computed here; callers request them explicitly
// via CalculateMeans.
func (p *WeatherProcessor) Process(ctx context.Context) (*dataset.Table, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if err := p.Load(ctx); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("weather", "error").Inc()
		return nil, err
	}
	if err := p.ProcessMessages(); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("weather", "error").Inc()
		return nil, err
	}

	p.metrics.PipelineRuns.WithLabelValues("weather", "success").Inc()
	p.metrics.PipelineDuration.WithLabelValues("weather").Observe(time.Since(start).Seconds())
	p.processedAt = domain.Now()
	p.logger.Info("weather pipeline complete", "rows", p.table.NumRows())
	return p.table, nil
}

// Load fetches the weather station reading table.
func (p *WeatherProcessor) Load(ctx context.Context) error {
	table, err := p.fetcher.FetchTable(ctx, p.cfg.StationCSVURL)
	if err != nil {
		return fmt.Errorf("load weather station data: %w", err)
	}
	p.table = table
	p.state = StateLoaded
	p.metrics.RowsIngested.WithLabelValues("weather").Add(float64(table.NumRows()))
	p.logger.Info("weather station data loaded", "rows", table.NumRows())
	return nil
}

// ProcessMessages extracts a measurement from every reading's message in a
// single pass, adding Measurement and Value columns. Readings matching no
// pattern get nil in both columns; that is not an error, only a debug log.
func (p *WeatherProcessor) ProcessMessages() error {
	if p.state < StateLoaded {
		return ErrNotReady
	}

	messages, err := p.table.Column(ColMessage)
	if err != nil {
		return err
	}

	kinds := make([]any, len(messages))
	values := make([]any, len(messages))
	for i, msg := range messages {
		m, ok := domain.ExtractMeasurement(p.cfg.Patterns, dataset.String(msg))
		if !ok {
			p.metrics.ExtractionMisses.Inc()
			p.logger.Debug("no measurement match", "row", i, "message", dataset.String(msg))
			continue
		}
		kinds[i] = m.Kind
		values[i] = m.Value
		p.metrics.MeasurementsExtracted.WithLabelValues(m.Kind).Inc()
	}

	if err := p.table.AddColumn(ColMeasurement, kinds); err != nil {
		return err
	}
	if err := p.table.AddColumn(ColValue, values); err != nil {
		return err
	}

	p.state = StateProcessed
	p.logger.Info("messages processed", "rows", len(messages))
	return nil
}

// CalculateMeans groups readings by (station, measurement kind) and returns
// the mean value per group as a wide table: one row per station, one column
// per measurement kind in configured pattern order. Unmatched readings are
// ignored. This is a query over processed data; it does not mutate the
// stored table.
func (p *WeatherProcessor) CalculateMeans() (*dataset.Table, error) {
	if p.state < StateProcessed {
		return nil, ErrNotReady
	}

	readings := make([]domain.StationReading, 0, p.table.NumRows())
	for i := 0; i < p.table.NumRows(); i++ {
		station, err := p.table.Cell(i, ColStationID)
		if err != nil {
			return nil, err
		}
		kind, err := p.table.Cell(i, ColMeasurement)
		if err != nil {
			return nil, err
		}
		value, err := p.table.Cell(i, ColValue)
		if err != nil {
			return nil, err
		}

		r := domain.StationReading{StationID: dataset.String(station)}
		if kind != nil {
			if f, ok := dataset.Float(value); ok {
				r.Matched = true
				r.Kind = dataset.String(kind)
				r.Value = f
			}
		}
		readings = append(readings, r)
	}

	kindOrder := make([]string, len(p.cfg.Patterns))
	for i, pat := range p.cfg.Patterns {
		kindOrder[i] = pat.Kind
	}

	means := domain.StationMeans(readings, kindOrder)
	p.logger.Info("mean values calculated", "stations", means.NumRows())
	return means, nil
}
