package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/geo"
	"github.com/toiletmap/internal/model"
)

type fakeFetcher struct {
	facilities []model.Facility
	err        error
}

func (f *fakeFetcher) Facilities(context.Context) ([]model.Facility, error) {
	return f.facilities, f.err
}

type fakeLocator struct {
	point geo.Point
	label string
	err   error
}

func (f *fakeLocator) Locate(context.Context) (geo.Point, string, error) {
	return f.point, f.label, f.err
}

func coord(v float64) *float64 { return &v }

func TestOpenRanksFromResolvedLocation(t *testing.T) {
	fetcher := &fakeFetcher{facilities: []model.Facility{
		{ID: "far", Latitude: coord(10), Longitude: coord(10)},
		{ID: "near", Latitude: coord(0.01), Longitude: coord(0.01)},
	}}
	d := New(fetcher, &fakeLocator{point: geo.Point{Latitude: 0, Longitude: 0}, label: "Origin"})

	require.NoError(t, d.Open(context.Background()))

	ranked := d.Facilities()
	require.Len(t, ranked, 2)
	assert.Equal(t, "near", ranked[0].Facility.ID)
	assert.Equal(t, "far", ranked[1].Facility.ID)

	_, label := d.Location()
	assert.Equal(t, "Origin", label)
}

func TestOpenFetchFailureIsTerminal(t *testing.T) {
	d := New(&fakeFetcher{err: errors.New("network down")}, &fakeLocator{})
	err := d.Open(context.Background())
	require.Error(t, err)
	assert.Empty(t, d.Facilities())
}

func TestLocateFailureFallsBackToDefault(t *testing.T) {
	fetcher := &fakeFetcher{facilities: []model.Facility{{ID: "a"}}}
	d := New(fetcher, &fakeLocator{err: errors.New("permission denied")})

	require.NoError(t, d.Open(context.Background()))

	point, label := d.Location()
	assert.Equal(t, geo.DefaultLocation, point)
	assert.Equal(t, geo.DefaultLocationLabel, label)
	assert.Len(t, d.Facilities(), 1)
}

func TestRefreshLocationReranks(t *testing.T) {
	fetcher := &fakeFetcher{facilities: []model.Facility{
		{ID: "a", Latitude: coord(0), Longitude: coord(0)},
		{ID: "b", Latitude: coord(0), Longitude: coord(50)},
	}}
	locator := &fakeLocator{point: geo.Point{Latitude: 0, Longitude: 0}, label: "West"}
	d := New(fetcher, locator)
	require.NoError(t, d.Open(context.Background()))
	assert.Equal(t, "a", d.Facilities()[0].Facility.ID)

	locator.point = geo.Point{Latitude: 0, Longitude: 50}
	locator.label = "East"
	d.RefreshLocation(context.Background())
	assert.Equal(t, "b", d.Facilities()[0].Facility.ID)

	_, label := d.Location()
	assert.Equal(t, "East", label)
}

func TestSelect(t *testing.T) {
	fetcher := &fakeFetcher{facilities: []model.Facility{{ID: "a", Name: "Station Block", Address: "Platform 1 Rd"}}}
	d := New(fetcher, &fakeLocator{})
	require.NoError(t, d.Open(context.Background()))

	got, ok := d.Select("a")
	require.True(t, ok)
	assert.Equal(t, "Station Block", got.Facility.Name)
	assert.Equal(t, "Platform 1 Rd", got.Facility.Address)

	_, ok = d.Select("missing")
	assert.False(t, ok)
}
