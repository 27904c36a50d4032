package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/geo"
	"github.com/toiletmap/internal/model"
)

type fakeFacilityStore struct {
	facilities []model.Facility
}

func (f *fakeFacilityStore) ListAll(context.Context) ([]model.Facility, error) {
	return f.facilities, nil
}

func (f *fakeFacilityStore) GetByID(_ context.Context, id string) (*model.Facility, error) {
	for i := range f.facilities {
		if f.facilities[i].ID == id {
			return &f.facilities[i], nil
		}
	}
	return nil, nil
}

func (f *fakeFacilityStore) UpdateStatus(context.Context, string, model.FacilityStatus) error {
	return nil
}

func ptr(v float64) *float64 { return &v }

func nearbyResponse(t *testing.T, h *FacilityHandler, target string) []model.RankedFacility {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Nearby(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Toilets []model.RankedFacility `json:"toilets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Toilets
}

func TestNearbyRanksFromQueryPoint(t *testing.T) {
	store := &fakeFacilityStore{facilities: []model.Facility{
		{ID: "far", Name: "Station", Latitude: ptr(10), Longitude: ptr(10)},
		{ID: "near", Name: "Market", Address: "Main Rd", Capacity: 6, Region: "Kothrud",
			Latitude: ptr(0.01), Longitude: ptr(0.01)},
	}}
	h := NewFacilityHandler(store, geo.Point{Latitude: 50, Longitude: 50})

	toilets := nearbyResponse(t, h, "/api/toilets/nearby?lat=0&lon=0")
	require.Len(t, toilets, 2)
	assert.Equal(t, "near", toilets[0].Facility.ID)
	assert.Equal(t, "Main Rd", toilets[0].Facility.Address)
	assert.Equal(t, 6, toilets[0].Facility.Capacity)
	assert.Equal(t, "Kothrud", toilets[0].Facility.Region)
}

func TestNearbyWithoutCoordsUsesDefaultOrigin(t *testing.T) {
	store := &fakeFacilityStore{facilities: []model.Facility{
		{ID: "a", Latitude: ptr(50), Longitude: ptr(50)},
		{ID: "b", Latitude: ptr(0), Longitude: ptr(0)},
	}}
	h := NewFacilityHandler(store, geo.Point{Latitude: 50, Longitude: 50})

	toilets := nearbyResponse(t, h, "/api/toilets/nearby")
	require.Len(t, toilets, 2)
	assert.Equal(t, "a", toilets[0].Facility.ID)
}

func TestNearbyNonFiniteCoordsNeverYieldNaN(t *testing.T) {
	store := &fakeFacilityStore{facilities: []model.Facility{
		{ID: "a", Latitude: ptr(18.5204), Longitude: ptr(73.8567)},
		{ID: "b", Latitude: ptr(0), Longitude: ptr(0)},
	}}
	h := NewFacilityHandler(store, geo.Point{Latitude: 18.5204, Longitude: 73.8567})

	// strconv.ParseFloat принимает "NaN" и "Inf", ранжирование подменяет их
	// точкой по умолчанию.
	for _, target := range []string{
		"/api/toilets/nearby?lat=NaN&lon=NaN",
		"/api/toilets/nearby?lat=Inf&lon=73.8567",
	} {
		toilets := nearbyResponse(t, h, target)
		require.Len(t, toilets, 2)
		for _, rf := range toilets {
			assert.NotContains(t, rf.DistanceLabel, "NaN", "target %s", target)
		}
	}
}
