// Package directory owns the facility list shown to a user: it fetches
// facility rows, resolves the viewer's location (with a fixed fallback) and
// keeps the list ranked by distance.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/toiletmap/internal/geo"
	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

// FacilityFetcher is the remote read of all facility rows.
type FacilityFetcher interface {
	Facilities(ctx context.Context) ([]model.Facility, error)
}

// Locator resolves the viewer's position and a display label for it.
// Implementations wrap the device location service; errors are expected
// (denied permission, no fix) and non-fatal.
type Locator interface {
	Locate(ctx context.Context) (geo.Point, string, error)
}

// Directory is the view-model of the facility list screen. It is the only
// owner of its list; ranking is recomputed whenever the list or the resolved
// location changes.
type Directory struct {
	fetcher FacilityFetcher
	locator Locator

	mu            sync.Mutex
	facilities    []model.Facility
	ranked        []model.RankedFacility
	location      geo.Point
	locationLabel string
}

func New(fetcher FacilityFetcher, locator Locator) *Directory {
	return &Directory{
		fetcher:       fetcher,
		locator:       locator,
		location:      geo.DefaultLocation,
		locationLabel: geo.DefaultLocationLabel,
	}
}

// Open performs the initial facility fetch and location request. A failed
// fetch is terminal: the list stays empty and the error is surfaced. A failed
// locate only logs and keeps the default coordinate.
func (d *Directory) Open(ctx context.Context) error {
	facilities, err := d.fetcher.Facilities(ctx)
	if err != nil {
		return fmt.Errorf("directory fetch: %w", err)
	}
	d.mu.Lock()
	d.facilities = facilities
	d.rerankLocked()
	d.mu.Unlock()

	d.RefreshLocation(ctx)
	return nil
}

// RefreshLocation re-resolves the viewer's location and re-ranks. Location
// failure substitutes the default coordinate silently.
func (d *Directory) RefreshLocation(ctx context.Context) {
	point, label, err := d.locator.Locate(ctx)
	if err != nil {
		logger.Infof("directory: location unavailable, using default: %v", err)
		point, label = geo.DefaultLocation, geo.DefaultLocationLabel
	}
	d.mu.Lock()
	d.location = point
	d.locationLabel = label
	d.rerankLocked()
	d.mu.Unlock()
}

func (d *Directory) rerankLocked() {
	d.ranked = geo.Rank(d.location, d.facilities)
}

// Facilities returns the current ranked list, nearest first.
func (d *Directory) Facilities() []model.RankedFacility {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.RankedFacility, len(d.ranked))
	copy(out, d.ranked)
	return out
}

// Location returns the resolved coordinate and its display label.
func (d *Directory) Location() (geo.Point, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location, d.locationLabel
}

// Select returns the full detail of one facility from the current list.
func (d *Directory) Select(id string) (model.RankedFacility, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.ranked {
		if r.Facility.ID == id {
			return r, true
		}
	}
	return model.RankedFacility{}, false
}
