// Package geo covers a circular search area with overlapping sub-circles.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// MetersPerDegree is the approximate length of one degree of latitude.
const MetersPerDegree = 111320.0

// MaxRadiusRatio bounds Radius/SubRadius. Tiling cost grows with the square
// of the ratio.
const MaxRadiusRatio = 200.0

// Area validation errors.
var (
	ErrInvalidCenter = eris.New("geo: center must be a finite coordinate within [-90,90] x [-180,180]")
	ErrInvalidRadius = eris.New("geo: radius and sub-radius must be positive finite numbers")
	ErrAreaTooLarge  = eris.New("geo: radius is too large for the sub-radius")
)

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// SearchArea is a disc of Radius meters around Center, searched in
// sub-discs of SubRadius meters.
type SearchArea struct {
	Center    Coordinate
	Radius    float64
	SubRadius float64
}

// Validate rejects areas the tiler cannot cover sensibly: non-finite or
// out-of-range values and radius ratios above MaxRadiusRatio.
func (a SearchArea) Validate() error {
	lat, lon := a.Center.Latitude, a.Center.Longitude
	if !finite(lat) || !finite(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return ErrInvalidCenter
	}
	if !finite(a.Radius) || !finite(a.SubRadius) || a.Radius <= 0 || a.SubRadius <= 0 {
		return ErrInvalidRadius
	}
	if ratio := a.Radius / a.SubRadius; ratio > MaxRadiusRatio {
		return eris.Wrapf(ErrAreaTooLarge, "ratio %.0f exceeds %.0f", ratio, MaxRadiusRatio)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// metersPerLonDegree returns the length of one degree of longitude at lat.
func metersPerLonDegree(lat float64) float64 {
	return MetersPerDegree * math.Cos(lat*math.Pi/180)
}

// PlanarDistance returns the flat-earth distance in meters between from and
// to, using the degree lengths at from's latitude. Only meaningful at city
// scale.
func PlanarDistance(from, to Coordinate) float64 {
	dy := (to.Latitude - from.Latitude) * MetersPerDegree
	dx := (to.Longitude - from.Longitude) * metersPerLonDegree(from.Latitude)
	return math.Sqrt(dx*dx + dy*dy)
}
