package geofence

import "math"

const earthRadiusM = 6371000

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Result reports whether a point fell inside a session's fence.
// Applicable is false when the session has no configured center; callers must
// not read Within in that case.
type Result struct {
	Applicable bool
	Within     bool
	DistanceM  float64
}

// Evaluate computes the great-circle distance between subject and center and
// classifies it against radiusM. A point exactly at the radius is inside.
func Evaluate(subject Point, center *Point, radiusM float64) Result {
	if center == nil {
		return Result{}
	}
	d := Distance(subject, *center)
	return Result{
		Applicable: true,
		Within:     d <= radiusM,
		DistanceM:  d,
	}
}

// Distance returns the haversine distance between two points in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}
