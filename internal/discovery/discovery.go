// Package discovery sweeps a circular search area tile by tile against the
// Google Places nearby search and reduces the results to a filtered,
// de-duplicated set of places.
package discovery

import (
	"context"

	"github.com/sells-group/placesweep/internal/geo"
	"github.com/sells-group/placesweep/pkg/google"
)

// Status is the operational status reported for a place.
type Status int

const (
	// StatusUnknown means the provider did not report a status.
	StatusUnknown Status = iota
	// StatusOperational means the place is open for business.
	StatusOperational
	// StatusClosedTemporarily means the place is temporarily closed.
	StatusClosedTemporarily
	// StatusClosedPermanently means the place has closed for good.
	StatusClosedPermanently
)

// ParseStatus maps a provider business status onto a Status. Both Places
// APIs use the same spellings.
func ParseStatus(s string) Status {
	switch s {
	case "OPERATIONAL":
		return StatusOperational
	case "CLOSED_TEMPORARILY":
		return StatusClosedTemporarily
	case "CLOSED_PERMANENTLY":
		return StatusClosedPermanently
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusOperational:
		return "OPERATIONAL"
	case StatusClosedTemporarily:
		return "CLOSED_TEMPORARILY"
	case StatusClosedPermanently:
		return "CLOSED_PERMANENTLY"
	default:
		return "UNKNOWN"
	}
}

// Inactive reports whether the status marks a closed place.
func (s Status) Inactive() bool {
	return s == StatusClosedTemporarily || s == StatusClosedPermanently
}

// Place is the capability set the aggregation core relies on. Everything
// else a provider returns travels with the record untouched.
type Place interface {
	ID() string
	Score() (float64, bool)
	Status() Status
}

// Details is the provider-neutral view of a place used by exporters.
type Details struct {
	Name        string
	Address     string
	Location    geo.Coordinate
	HasLocation bool
	Rating      *float64
	RatingCount *int
	Types       []string
	PrimaryType string
}

// Describer is implemented by places that can render their Details.
type Describer interface {
	Details() Details
}

// Payloader is implemented by places that carry the provider's record.
type Payloader interface {
	Payload() any
}

// Sink receives the final result set of a run exactly once.
type Sink interface {
	Deliver(ctx context.Context, places []Place) error
}

// LegacyPlace is a result from the legacy Nearby Search API.
type LegacyPlace struct {
	Place google.LegacyPlace
}

// ID returns the place_id.
func (p LegacyPlace) ID() string { return p.Place.PlaceID }

// Score returns the rating, if the provider sent one.
func (p LegacyPlace) Score() (float64, bool) {
	if p.Place.Rating == nil {
		return 0, false
	}
	return *p.Place.Rating, true
}

// Status returns the parsed business_status.
func (p LegacyPlace) Status() Status { return ParseStatus(p.Place.BusinessStatus) }

// Details returns the exporter view. Nearby Search usually omits
// formatted_address, so the short vicinity stands in when it is missing.
func (p LegacyPlace) Details() Details {
	d := Details{
		Name:        p.Place.Name,
		Address:     p.Place.FormattedAddress,
		Rating:      p.Place.Rating,
		RatingCount: p.Place.UserRatingsTotal,
		Types:       p.Place.Types,
	}
	if d.Address == "" {
		d.Address = p.Place.Vicinity
	}
	if len(p.Place.Types) > 0 {
		d.PrimaryType = p.Place.Types[0]
	}
	if p.Place.Geometry != nil {
		d.Location = geo.Coordinate{
			Latitude:  p.Place.Geometry.Location.Lat,
			Longitude: p.Place.Geometry.Location.Lng,
		}
		d.HasLocation = true
	}
	return d
}

// Payload returns the provider record.
func (p LegacyPlace) Payload() any { return p.Place }

// APIPlace is a result from the Places API searchNearby endpoint.
type APIPlace struct {
	Place google.Place
}

// ID returns the place id.
func (p APIPlace) ID() string { return p.Place.ID }

// Score returns the rating, if it was requested and sent.
func (p APIPlace) Score() (float64, bool) {
	if p.Place.Rating == nil {
		return 0, false
	}
	return *p.Place.Rating, true
}

// Status returns the parsed businessStatus.
func (p APIPlace) Status() Status { return ParseStatus(p.Place.BusinessStatus) }

// Details returns the exporter view.
func (p APIPlace) Details() Details {
	d := Details{
		Address:     p.Place.FormattedAddress,
		Rating:      p.Place.Rating,
		RatingCount: p.Place.UserRatingCount,
		Types:       p.Place.Types,
		PrimaryType: p.Place.PrimaryType,
	}
	if p.Place.DisplayName != nil {
		d.Name = p.Place.DisplayName.Text
	}
	if p.Place.Location != nil {
		d.Location = geo.Coordinate{
			Latitude:  p.Place.Location.Latitude,
			Longitude: p.Place.Location.Longitude,
		}
		d.HasLocation = true
	}
	return d
}

// Payload returns the provider record.
func (p APIPlace) Payload() any { return p.Place }
