package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/model"
)

func TestDistanceZero(t *testing.T) {
	d := Distance(18.5204, 73.8567, 18.5204, 73.8567)
	assert.Equal(t, 0.0, d)
	assert.Equal(t, "0 m", FormatDistance(d))
}

func TestDistanceSymmetry(t *testing.T) {
	cases := [][4]float64{
		{0, 0, 0, 1},
		{18.5204, 73.8567, 19.0760, 72.8777},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{89.9, 0, -89.9, 180},
	}
	for _, c := range cases {
		ab := Distance(c[0], c[1], c[2], c[3])
		ba := Distance(c[2], c[3], c[0], c[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of longitude on the equator is ~111.19 km.
	d := Distance(0, 0, 0, 1)
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestFormatDistanceBoundary(t *testing.T) {
	assert.Equal(t, "999 m", FormatDistance(0.999))
	assert.Equal(t, "1.0 km", FormatDistance(1.0))
	assert.Equal(t, "500 m", FormatDistance(0.5))
	assert.Equal(t, "2.5 km", FormatDistance(2.468))
}

func coord(v float64) *float64 { return &v }

func TestRankOrdersByDistance(t *testing.T) {
	facilities := []model.Facility{
		{ID: "2", Latitude: coord(0), Longitude: coord(1)},
		{ID: "1", Latitude: coord(0), Longitude: coord(0)},
	}
	ranked := Rank(Point{0, 0}, facilities)
	require.Len(t, ranked, 2)
	assert.Equal(t, "1", ranked[0].Facility.ID)
	assert.Equal(t, "2", ranked[1].Facility.ID)
	assert.Equal(t, "0 m", ranked[0].DistanceLabel)
}

func TestRankMonotonic(t *testing.T) {
	facilities := []model.Facility{
		{ID: "a", Latitude: coord(10), Longitude: coord(10)},
		{ID: "b", Latitude: coord(0.1), Longitude: coord(0.1)},
		{ID: "c"}, // no coordinate, falls back to the default location
		{ID: "d", Latitude: coord(-5), Longitude: coord(40)},
	}
	ranked := Rank(Point{0, 0}, facilities)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].DistanceKm, ranked[i].DistanceKm)
	}
}

func TestRankSubstitutesDefaultForNaN(t *testing.T) {
	nan := math.NaN()
	facilities := []model.Facility{
		{ID: "x", Latitude: &nan, Longitude: coord(0)},
	}
	ranked := Rank(DefaultLocation, facilities)
	require.Len(t, ranked, 1)
	assert.False(t, math.IsNaN(ranked[0].DistanceKm))
	assert.Equal(t, 0.0, ranked[0].DistanceKm)
}

func TestRankSubstitutesDefaultForNonFiniteOrigin(t *testing.T) {
	facilities := []model.Facility{
		{ID: "a", Latitude: coord(DefaultLocation.Latitude), Longitude: coord(DefaultLocation.Longitude)},
		{ID: "b", Latitude: coord(0), Longitude: coord(0)},
	}
	origins := []Point{
		{math.NaN(), math.NaN()},
		{math.NaN(), 73.0},
		{math.Inf(1), 0},
	}
	for _, origin := range origins {
		ranked := Rank(origin, facilities)
		require.Len(t, ranked, 2)
		// Measured from the default location; NaN reaches neither the sort
		// nor the label.
		assert.Equal(t, "a", ranked[0].Facility.ID)
		for _, r := range ranked {
			assert.False(t, math.IsNaN(r.DistanceKm))
			assert.NotContains(t, r.DistanceLabel, "NaN")
		}
	}
}
