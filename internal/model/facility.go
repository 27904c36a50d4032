package model

import "time"

type FacilityStatus string

const (
	FacilityStatusUsable      FacilityStatus = "usable"
	FacilityStatusMaintenance FacilityStatus = "maintenance"
	FacilityStatusOther       FacilityStatus = "other"
)

// Valid reports whether s is one of the known facility statuses.
func (s FacilityStatus) Valid() bool {
	switch s {
	case FacilityStatusUsable, FacilityStatusMaintenance, FacilityStatusOther:
		return true
	}
	return false
}

// Facility is a public toilet record as stored. Latitude/Longitude are nil
// when the row has no coordinate; callers substitute the default location.
type Facility struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Status    FacilityStatus `json:"status"`
	Capacity  int            `json:"capacity,omitempty"`
	Region    string         `json:"region,omitempty"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RankedFacility is the presentation wrapper with derived distance fields.
// Distance is recomputed on every location change and never written back.
type RankedFacility struct {
	Facility      Facility `json:"facility"`
	DistanceKm    float64  `json:"distance_km"`
	DistanceLabel string   `json:"distance_label"`
}
