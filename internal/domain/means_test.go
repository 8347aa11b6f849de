package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matched(station, kind string, value float64) StationReading {
	return StationReading{
		StationID:   station,
		Measurement: Measurement{Kind: kind, Value: value},
		Matched:     true,
	}
}

func TestStationMeans(t *testing.T) {
	readings := []StationReading{
		matched("A", "Temperature", 10),
		matched("A", "Temperature", 20),
		matched("A", "Rainfall", 5),
	}

	means := StationMeans(readings, []string{"Rainfall", "Temperature"})

	assert.Equal(t, []string{"Weather_station_ID", "Rainfall", "Temperature"}, means.Columns())
	require.Equal(t, 1, means.NumRows())

	temp, err := means.Cell(0, "Temperature")
	require.NoError(t, err)
	assert.Equal(t, 15.0, temp)

	rain, err := means.Cell(0, "Rainfall")
	require.NoError(t, err)
	assert.Equal(t, 5.0, rain)
}

func TestStationMeans_UnmatchedReadingsIgnored(t *testing.T) {
	readings := []StationReading{
		matched("A", "Rainfall", 10),
		{StationID: "A"}, // no pattern matched; must not drag the mean down
		{StationID: "B"}, // station with only unmatched readings gets no row
	}

	means := StationMeans(readings, []string{"Rainfall"})

	require.Equal(t, 1, means.NumRows())
	rain, err := means.Cell(0, "Rainfall")
	require.NoError(t, err)
	assert.Equal(t, 10.0, rain)
}

func TestStationMeans_StationsSortedAndGapsNil(t *testing.T) {
	readings := []StationReading{
		matched("2", "Temperature", 30),
		matched("1", "Rainfall", 4),
	}

	means := StationMeans(readings, []string{"Rainfall", "Temperature"})

	require.Equal(t, 2, means.NumRows())
	first, err := means.Cell(0, "Weather_station_ID")
	require.NoError(t, err)
	assert.Equal(t, "1", first)

	// Station 1 never reported temperature.
	temp, err := means.Cell(0, "Temperature")
	require.NoError(t, err)
	assert.Nil(t, temp)
}

func TestStationMeans_KindOrderFollowsConfiguration(t *testing.T) {
	readings := []StationReading{
		matched("A", "Temperature", 1),
		matched("A", "Rainfall", 2),
		matched("A", "Humidity", 3), // kind not in the configured order
	}

	means := StationMeans(readings, []string{"Rainfall", "Temperature"})
	assert.Equal(t, []string{"Weather_station_ID", "Rainfall", "Temperature", "Humidity"}, means.Columns())
}

func TestStationMeans_Empty(t *testing.T) {
	means := StationMeans(nil, []string{"Rainfall"})
	assert.Equal(t, 0, means.NumRows())
	assert.Equal(t, []string{"Weather_station_ID"}, means.Columns())
}
