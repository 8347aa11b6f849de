package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMeasurement_DefaultPatterns(t *testing.T) {
	patterns := DefaultPatterns()

	tests := []struct {
		name    string
		message string
		want    Measurement
		matched bool
	}{
		{
			name:    "rainfall",
			message: "Rainfall reading: 23.5mm",
			want:    Measurement{Kind: "Rainfall", Value: 23.5},
			matched: true,
		},
		{
			name:    "rainfall with space before unit",
			message: "Measured 12 mm of rain overnight",
			want:    Measurement{Kind: "Rainfall", Value: 12},
			matched: true,
		},
		{
			name:    "temperature",
			message: "Temperature at the weather station: 28C",
			want:    Measurement{Kind: "Temperature", Value: 28},
			matched: true,
		},
		{
			name:    "pollution with equals phrasing",
			message: "Pollution level = 0.85",
			want:    Measurement{Kind: "Pollution_level", Value: 0.85},
			matched: true,
		},
		{
			name:    "pollution with at phrasing",
			message: "Pollution at 1.23 recorded by sensor",
			want:    Measurement{Kind: "Pollution_level", Value: 1.23},
			matched: true,
		},
		{
			name:    "negative pollution",
			message: "Pollution level = -0.2",
			want:    Measurement{Kind: "Pollution_level", Value: -0.2},
			matched: true,
		},
		{
			name:    "no match",
			message: "Station operating normally.",
			matched: false,
		},
		{
			name:    "empty message",
			message: "",
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractMeasurement(patterns, tt.message)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMeasurement_FirstPatternWins(t *testing.T) {
	// Both patterns match "10mm at 25C"; the configured order decides.
	rainFirst := []Pattern{
		MustPattern("Rainfall", `(\d+(\.\d+)?)\s?mm`),
		MustPattern("Temperature", `(\d+(\.\d+)?)\s?C`),
	}
	tempFirst := []Pattern{rainFirst[1], rainFirst[0]}

	message := "10mm at 25C"

	got, ok := ExtractMeasurement(rainFirst, message)
	require.True(t, ok)
	assert.Equal(t, Measurement{Kind: "Rainfall", Value: 10}, got)

	got, ok = ExtractMeasurement(tempFirst, message)
	require.True(t, ok)
	assert.Equal(t, Measurement{Kind: "Temperature", Value: 25}, got)
}

func TestExtractMeasurement_FirstParticipatingGroup(t *testing.T) {
	// The alternation puts the "at" phrasing in later groups; the value
	// must come from whichever groups participated in the match.
	p := MustPattern("Pollution_level", `=\s*(-?\d+(\.\d+)?)|Pollution at \s*(-?\d+(\.\d+)?)`)

	got, ok := ExtractMeasurement([]Pattern{p}, "Pollution at 7.1")
	require.True(t, ok)
	assert.Equal(t, Measurement{Kind: "Pollution_level", Value: 7.1}, got)
}

func TestNewPattern_Invalid(t *testing.T) {
	_, err := NewPattern("Broken", `(\d+`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestMustPattern_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustPattern("Broken", `(\d+`) })
}
