package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSamePoint(t *testing.T) {
	p := Point{Lat: 19.0761, Lon: 72.8774}
	assert.Zero(t, Distance(p, p))
}

func TestDistanceOneDegreeLongitudeAtEquator(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 1}
	// 2*pi*6371km / 360 ~= 111.19 km
	assert.InDelta(t, 111195, Distance(a, b), 20)
}

func TestDistanceCampusScale(t *testing.T) {
	a := Point{Lat: 19.0761, Lon: 72.8774}
	b := Point{Lat: 19.0762, Lon: 72.8775}
	d := Distance(a, b)
	assert.Greater(t, d, 10.0)
	assert.Less(t, d, 20.0)
}

func TestEvaluateBoundaryIsInside(t *testing.T) {
	center := Point{Lat: 0, Lon: 0}
	subject := Point{Lat: 0, Lon: 1}
	d := Distance(subject, center)

	res := Evaluate(subject, &center, d)
	require.True(t, res.Applicable)
	assert.True(t, res.Within, "a point exactly at the radius counts as inside")

	res = Evaluate(subject, &center, d-1)
	assert.False(t, res.Within)
}

func TestEvaluateNoCenterNotApplicable(t *testing.T) {
	res := Evaluate(Point{Lat: 19.0761, Lon: 72.8774}, nil, 100)
	assert.False(t, res.Applicable)
	assert.False(t, res.Within)
	assert.Zero(t, res.DistanceM)
}
