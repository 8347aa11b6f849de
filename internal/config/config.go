// Package config loads service settings from environment variables,
// applying defaults that describe the published Maji Ndogo survey dataset.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	defaultSQLQuery = `
		SELECT *
		FROM geographic_features
		LEFT JOIN weather_features USING (Field_ID)
		LEFT JOIN soil_and_crop_features USING (Field_ID)
		LEFT JOIN farm_management_features USING (Field_ID)
	`
	defaultDBDSN             = "postgres://localhost:5432/maji_ndogo?sslmode=disable"
	defaultWeatherCSVURL     = "https://raw.githubusercontent.com/Explore-AI/Public-Data/master/Maji_Ndogo/Weather_station_data.csv"
	defaultWeatherMappingURL = "https://raw.githubusercontent.com/Explore-AI/Public-Data/master/Maji_Ndogo/Weather_data_field_mapping.csv"
	defaultSwapColumns       = "Annual_yield=Crop_type"
	defaultValueRenames      = `{"cassaval": "cassava", "wheatn": "wheat", "teaa": "tea"}`
	defaultPatterns          = `[
		{"kind": "Rainfall", "pattern": "(\\d+(\\.\\d+)?)\\s?mm"},
		{"kind": "Temperature", "pattern": "(\\d+(\\.\\d+)?)\\s?C"},
		{"kind": "Pollution_level", "pattern": "=\\s*(-?\\d+(\\.\\d+)?)|Pollution at \\s*(-?\\d+(\\.\\d+)?)"}
	]`
)

// PatternSpec is one entry of the ordered measurement-pattern list. List
// order is precedence order and must survive configuration round trips,
// which is why patterns are configured as a JSON array rather than an
// object.
type PatternSpec struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern"`
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	DBDSN             string
	SQLQuery          string
	SwapFrom          string // column pair known to be swapped at the source
	SwapTo            string
	ValueRenames      map[string]string
	WeatherMappingURL string
	WeatherCSVURL     string
	Patterns          []PatternSpec

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	FetchTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	swapFrom, swapTo, err := parseSwapPair(envOrDefault("SWAP_COLUMNS", defaultSwapColumns))
	if err != nil {
		return nil, err
	}

	renames, err := parseValueRenames(envOrDefault("VALUE_RENAMES", defaultValueRenames))
	if err != nil {
		return nil, err
	}

	patterns, err := parsePatterns(envOrDefault("MEASUREMENT_PATTERNS", defaultPatterns))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBDSN:             envOrDefault("DB_DSN", defaultDBDSN),
		SQLQuery:          envOrDefault("SQL_QUERY", defaultSQLQuery),
		SwapFrom:          swapFrom,
		SwapTo:            swapTo,
		ValueRenames:      renames,
		WeatherMappingURL: envOrDefault("WEATHER_MAPPING_CSV_URL", defaultWeatherMappingURL),
		WeatherCSVURL:     envOrDefault("WEATHER_CSV_URL", defaultWeatherCSVURL),
		Patterns:          patterns,
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		FetchTimeout:      fetchTimeout,
		ShutdownTimeout:   shutdownTimeout,
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}
	if strings.TrimSpace(cfg.SQLQuery) == "" {
		return nil, errors.New("SQL_QUERY is required")
	}
	if cfg.WeatherMappingURL == "" {
		return nil, errors.New("WEATHER_MAPPING_CSV_URL is required")
	}
	if cfg.WeatherCSVURL == "" {
		return nil, errors.New("WEATHER_CSV_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseSwapPair parses "A=B", the single pair of columns whose data were
// exchanged at the source. Exactly one pair of two distinct names.
func parseSwapPair(s string) (string, string, error) {
	from, to, ok := strings.Cut(s, "=")
	if !ok || strings.Contains(to, "=") {
		return "", "", fmt.Errorf("SWAP_COLUMNS must be a single A=B pair, got %q", s)
	}
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return "", "", fmt.Errorf("SWAP_COLUMNS must name two columns, got %q", s)
	}
	if from == to {
		return "", "", fmt.Errorf("SWAP_COLUMNS names the same column twice: %q", from)
	}
	return from, to, nil
}

func parseValueRenames(s string) (map[string]string, error) {
	var renames map[string]string
	if err := json.Unmarshal([]byte(s), &renames); err != nil {
		return nil, fmt.Errorf("VALUE_RENAMES is not a JSON object: %w", err)
	}
	return renames, nil
}

func parsePatterns(s string) ([]PatternSpec, error) {
	var specs []PatternSpec
	if err := json.Unmarshal([]byte(s), &specs); err != nil {
		return nil, fmt.Errorf("MEASUREMENT_PATTERNS is not a JSON array: %w", err)
	}
	if len(specs) == 0 {
		return nil, errors.New("MEASUREMENT_PATTERNS must list at least one pattern")
	}
	for _, spec := range specs {
		if spec.Kind == "" {
			return nil, errors.New("MEASUREMENT_PATTERNS entry is missing a kind")
		}
		if _, err := regexp.Compile(spec.Pattern); err != nil {
			return nil, fmt.Errorf("MEASUREMENT_PATTERNS %q: %w", spec.Kind, err)
		}
	}
	return specs, nil
}
