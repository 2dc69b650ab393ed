package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/twpayne/go-geom"
)

// SearchBounds returns a lon/lat box (XY layout) that contains every point
// within radiusKm of the center. The box is conservative: points inside it
// still need a DistanceKm check. Longitude is unbounded when the circle
// reaches a pole or wraps the antimeridian.
func SearchBounds(lat, lon, radiusKm float64) *geom.Bounds {
	angular := radiusKm / EarthRadiusKm
	dLat := toDegrees(angular)

	minLat := math.Max(-90, lat-dLat)
	maxLat := math.Min(90, lat+dLat)

	minLon, maxLon := -180.0, 180.0
	cosLat := math.Cos(toRadians(lat))
	if s := math.Sin(angular) / cosLat; angular < math.Pi/2 && cosLat > 0 && s < 1 {
		dLon := toDegrees(math.Asin(s))
		if lon-dLon >= -180 && lon+dLon <= 180 {
			minLon, maxLon = lon-dLon, lon+dLon
		}
	}

	return geom.NewBounds(geom.XY).Set(minLon, minLat, maxLon, maxLat)
}

// Within reports whether the coordinate falls inside b.
func Within(b *geom.Bounds, lat, lon float64) bool {
	return b.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// Geohash encodes a coordinate at the given character precision (1-12).
func Geohash(lat, lon float64, precision uint) string {
	return geohash.EncodeWithPrecision(lat, lon, precision)
}
