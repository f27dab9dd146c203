package geo

import "math"

// StepFactor scales the sub-radius into the center-to-center spacing. It is
// below sqrt(3) so neighbouring sub-circles always overlap.
const StepFactor = 1.5

// Tiles returns the ordered sub-circle centers covering area. When the area
// fits inside one sub-circle the center alone is returned.
//
// Centers lie on a brick-laid grid (odd rows shifted by half a step, rows
// compressed by sqrt(3)/2) scanned row by row. A center is kept when its
// sub-circle reaches into the outer disc at all, so the area is over-covered
// rather than under-covered.
func Tiles(area SearchArea) []Coordinate {
	if area.Radius <= area.SubRadius {
		return []Coordinate{area.Center}
	}

	step := area.SubRadius * StepFactor
	latStep := step / MetersPerDegree
	lonStep := step / metersPerLonDegree(area.Center.Latitude)
	rowFactor := math.Sqrt(3) / 2

	n := int(math.Ceil(area.Radius / step))
	tiles := make([]Coordinate, 0, (2*n+1)*(2*n+1))

	for i := -n; i <= n; i++ {
		latOffset := float64(i) * latStep * rowFactor
		shift := 0.0
		if i%2 != 0 {
			shift = lonStep / 2
		}
		for j := -n; j <= n; j++ {
			lonOffset := float64(j)*lonStep + shift

			dy := latOffset * MetersPerDegree
			dx := lonOffset * metersPerLonDegree(area.Center.Latitude)
			if math.Sqrt(dx*dx+dy*dy)-area.SubRadius >= area.Radius {
				continue
			}

			tiles = append(tiles, Coordinate{
				Latitude:  area.Center.Latitude + latOffset,
				Longitude: area.Center.Longitude + lonOffset,
			})
		}
	}
	return tiles
}
