// Command validate runs end-to-end data integrity checks against live
// pipeline output: it executes both pipelines with the configured sources
// and verifies table schemas, the non-negative elevation invariant, the
// corrected crop vocabulary, rainfall sanity, and join completeness.
//
// Usage:
//
//	DB_DSN=postgres://... go run ./cmd/validate
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/majindogo/farm-survey-etl/internal/adapter/csvfetch"
	"github.com/majindogo/farm-survey-etl/internal/adapter/sqldb"
	"github.com/majindogo/farm-survey-etl/internal/config"
	"github.com/majindogo/farm-survey-etl/internal/dataset"
	"github.com/majindogo/farm-survey-etl/internal/domain"
	"github.com/majindogo/farm-survey-etl/internal/observability"
	"github.com/majindogo/farm-survey-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	crops := flag.String("crops", "cassava,tea,wheat,potato,banana,coffee,rice,maize",
		"comma-separated list of valid corrected crop types")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger("none", "text")
	metrics := observability.NewMetricsForTesting()
	ctx := context.Background()

	patterns := make([]domain.Pattern, 0, len(cfg.Patterns))
	for _, spec := range cfg.Patterns {
		p, err := domain.NewPattern(spec.Kind, spec.Pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pattern: %v\n", err)
			os.Exit(1)
		}
		patterns = append(patterns, p)
	}

	fetcher := csvfetch.NewClient(cfg.FetchTimeout, logger)

	weather := pipeline.NewWeatherProcessor(pipeline.WeatherConfig{
		StationCSVURL: cfg.WeatherCSVURL,
		Patterns:      patterns,
	}, fetcher, logger, metrics)

	weatherTable, err := weather.Process(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weather pipeline: %v\n", err)
		os.Exit(1)
	}

	db, err := sqldb.Open(ctx, cfg.DBDSN, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	field := pipeline.NewFieldProcessor(pipeline.FieldConfig{
		SQLQuery:     cfg.SQLQuery,
		SwapFrom:     cfg.SwapFrom,
		SwapTo:       cfg.SwapTo,
		ValueRenames: cfg.ValueRenames,
		MappingURL:   cfg.WeatherMappingURL,
	}, db, fetcher, logger, metrics)

	fieldTable, err := field.Process(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "field pipeline: %v\n", err)
		os.Exit(1)
	}

	phases := []*phase{
		checkWeatherSchema(weatherTable),
		checkWeatherExtraction(weatherTable),
		checkFieldSchema(fieldTable),
		checkElevation(fieldTable),
		checkCropTypes(fieldTable, strings.Split(*crops, ",")),
		checkRainfall(fieldTable),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func checkWeatherSchema(t *dataset.Table) *phase {
	p := &phase{name: "weather schema"}
	want := []string{
		pipeline.ColStationID,
		pipeline.ColMessage,
		pipeline.ColMeasurement,
		pipeline.ColValue,
	}
	if got := t.Columns(); !slices.Equal(got, want) {
		p.errorf("columns = %v, want %v", got, want)
	}
	return p
}

// checkWeatherExtraction verifies the (kind, value) pair is set or unset
// together: a matched row has both, an unmatched row has neither.
func checkWeatherExtraction(t *dataset.Table) *phase {
	p := &phase{name: "weather extraction"}
	for i := 0; i < t.NumRows(); i++ {
		kind, _ := t.Cell(i, pipeline.ColMeasurement)
		value, _ := t.Cell(i, pipeline.ColValue)
		if (kind == nil) != (value == nil) {
			p.errorf("row %d: measurement %v and value %v disagree", i, kind, value)
		}
	}
	return p
}

func checkFieldSchema(t *dataset.Table) *phase {
	p := &phase{name: "field schema"}
	cols := t.Columns()
	for _, want := range []string{
		pipeline.ColFieldID,
		pipeline.ColElevation,
		pipeline.ColCropType,
		pipeline.ColWeatherStation,
	} {
		if !slices.Contains(cols, want) {
			p.errorf("missing column %q", want)
		}
	}
	if slices.Contains(cols, "") {
		p.errorf("unnamed index column survived processing")
	}
	return p
}

func checkElevation(t *dataset.Table) *phase {
	p := &phase{name: "non-negative elevation"}
	col, err := t.Column(pipeline.ColElevation)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for i, v := range col {
		if f, ok := dataset.Float(v); ok && f < 0 {
			p.errorf("row %d: elevation %v", i, f)
		}
	}
	return p
}

func checkCropTypes(t *dataset.Table, valid []string) *phase {
	p := &phase{name: "valid crop types"}
	col, err := t.Column(pipeline.ColCropType)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for i, v := range col {
		crop := dataset.String(v)
		if !slices.Contains(valid, crop) {
			p.errorf("row %d: unexpected crop type %q", i, crop)
		}
	}
	return p
}

func checkRainfall(t *dataset.Table) *phase {
	p := &phase{name: "positive rainfall"}
	col, err := t.Column("Rainfall")
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for i, v := range col {
		if f, ok := dataset.Float(v); ok && f <= 0 {
			p.errorf("row %d: rainfall %v", i, f)
		}
	}
	return p
}
