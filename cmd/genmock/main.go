// Command genmock generates mock Maji Ndogo CSV fixtures for development
// and tests without network access: a weather station reading file, a
// Field_ID to Weather_station mapping file, and a JSON fixture of the
// measurements the ETL extracts from the generated messages. It uses the
// actual domain extraction logic so the JSON fixture matches real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -stations 5 -readings 40 -fields 100
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/majindogo/farm-survey-etl/internal/domain"
)

var baseTime = time.Date(2024, time.February, 24, 0, 0, 0, 0, time.UTC)

// messageTemplates produce the free-text phrasings seen in the real
// station feed, including ones the patterns do not recognize.
var messageTemplates = []func(r *rand.Rand) string{
	func(r *rand.Rand) string { return fmt.Sprintf("Rainfall reading: %.1fmm", r.Float64()*60) },
	func(r *rand.Rand) string { return fmt.Sprintf("Temperature at the weather station: %.1fC", 12+r.Float64()*25) },
	func(r *rand.Rand) string { return fmt.Sprintf("Pollution level = %.2f", r.Float64()*2) },
	func(r *rand.Rand) string { return fmt.Sprintf("Pollution at %.2f", r.Float64()*2) },
	func(r *rand.Rand) string { return "Station operating normally." },
}

type extractedFixture struct {
	StationID   string   `json:"weather_station_id"`
	Message     string   `json:"message"`
	Kind        *string  `json:"measurement,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	ProcessedAt string   `json:"processed_at"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory for fixtures")
	stations := flag.Int("stations", 5, "number of weather stations")
	readings := flag.Int("readings", 40, "number of station readings")
	fields := flag.Int("fields", 100, "number of mapped fields")
	seed := flag.Int64("seed", 1, "rng seed for reproducible fixtures")
	flag.Parse()

	// Fixed clock for reproducible processed_at timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	if err := writeStationCSV(filepath.Join(*out, "weather_station_data.csv"), rng, *stations, *readings); err != nil {
		return err
	}
	if err := writeMappingCSV(filepath.Join(*out, "weather_data_field_mapping.csv"), rng, *fields, *stations); err != nil {
		return err
	}
	if err := writeExtractedJSON(filepath.Join(*out, "extracted_measurements.json"), filepath.Join(*out, "weather_station_data.csv")); err != nil {
		return err
	}

	log.Printf("mock fixtures written to %s", *out)
	return nil
}

func writeStationCSV(path string, rng *rand.Rand, stations, readings int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Weather_station_ID", "Message"}); err != nil {
		return err
	}
	for i := 0; i < readings; i++ {
		station := strconv.Itoa(rng.Intn(stations))
		msg := messageTemplates[rng.Intn(len(messageTemplates))](rng)
		if err := w.Write([]string{station, msg}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeMappingCSV writes the Field_ID -> Weather_station mapping with the
// leading unnamed index column the real export carries.
func writeMappingCSV(path string, rng *rand.Rand, fields, stations int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"", "Field_ID", "Weather_station"}); err != nil {
		return err
	}
	for i := 0; i < fields; i++ {
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(1000 + i),
			strconv.Itoa(rng.Intn(stations)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeExtractedJSON(jsonPath, csvPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return err
	}

	patterns := domain.DefaultPatterns()
	fixtures := make([]extractedFixture, 0, len(records)-1)
	for _, rec := range records[1:] {
		fx := extractedFixture{
			StationID:   rec[0],
			Message:     rec[1],
			ProcessedAt: domain.Now().Format(time.RFC3339),
		}
		if m, ok := domain.ExtractMeasurement(patterns, rec[1]); ok {
			fx.Kind = &m.Kind
			fx.Value = &m.Value
		}
		fixtures = append(fixtures, fx)
	}

	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(jsonPath, append(data, '\n'), 0o644)
}
