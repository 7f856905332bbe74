package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidLatLng = errors.New("invalid coordinate")

// Unit is the unit of measure that distances are expressed in.
type Unit string

const (
	UnitMiles         Unit = "miles"
	UnitKilometers    Unit = "km"
	UnitNauticalMiles Unit = "nm"
	UnitMeters        Unit = "m"
)

var earthRadius = map[Unit]float64{
	UnitMiles:         3963.19,
	UnitKilometers:    6376.773,
	UnitNauticalMiles: 3443.712,
	UnitMeters:        6376773.0,
}

var perLatitudeDegree = map[Unit]float64{
	UnitMiles:         69.1,
	UnitKilometers:    111.32,
	UnitNauticalMiles: 60.05,
	UnitMeters:        111320.0,
}

// EarthRadius returns the spherical earth radius expressed in u.
func (u Unit) EarthRadius() float64 {
	return earthRadius[u]
}

// PerLatitudeDegree returns the distance covered by one degree of
// latitude, expressed in u.
func (u Unit) PerLatitudeDegree() float64 {
	return perLatitudeDegree[u]
}

// PerLongitudeDegree returns the distance covered by one degree of
// longitude at the given latitude, expressed in u.
func (u Unit) PerLongitudeDegree(lat float64) float64 {
	return perLatitudeDegree[u] * math.Cos(lat*math.Pi/180.0)
}

func (u Unit) valid() bool {
	_, ok := earthRadius[u]
	return ok
}

// ParseUnit maps common unit spellings onto a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mi", "mile", "miles":
		return UnitMiles, nil
	case "km", "kms", "kilometers", "kilometres":
		return UnitKilometers, nil
	case "nm", "nms":
		return UnitNauticalMiles, nil
	case "m", "meters", "metres":
		return UnitMeters, nil
	}

	return "", fmt.Errorf("unknown unit %q", s)
}

// Convert expresses a distance given in the from unit in the to unit.
func Convert(distance float64, from, to Unit) float64 {
	if !from.valid() || !to.valid() {
		return distance
	}

	return distance / from.EarthRadius() * to.EarthRadius()
}

// LatLng is a point on the earth expressed in decimal degrees.
type LatLng struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// NewLatLng validates lat and lng and returns a normalized point.
func NewLatLng(lat, lng float64) (LatLng, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return LatLng{}, fmt.Errorf("%w: not a number", ErrInvalidLatLng)
	}

	if lat < -90.0 || lat > 90.0 {
		return LatLng{}, fmt.Errorf("%w: latitude %f out of range", ErrInvalidLatLng, lat)
	}

	return LatLng{Lat: lat, Lng: lng}.Normalize(), nil
}

// ParseLatLng parses a "lat,lng" pair.
func ParseLatLng(s string) (LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("%w: %q is not on the form lat,lng", ErrInvalidLatLng, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: failed to parse latitude from %q", ErrInvalidLatLng, s)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: failed to parse longitude from %q", ErrInvalidLatLng, s)
	}

	return NewLatLng(lat, lng)
}

// Normalize wraps the longitude into [-180, 180).
func (p LatLng) Normalize() LatLng {
	lng := math.Mod(p.Lng+180.0, 360.0)
	if lng < 0 {
		lng += 360.0
	}

	p.Lng = lng - 180.0

	return p
}

func (p LatLng) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lng)
}

// LatRad returns the latitude in radians.
func (p LatLng) LatRad() float64 {
	return p.Lat * math.Pi / 180.0
}

// LngRad returns the longitude in radians.
func (p LatLng) LngRad() float64 {
	return p.Lng * math.Pi / 180.0
}

// DistanceTo returns the great circle distance between p and other on a
// spherical earth, expressed in unit.
func (p LatLng) DistanceTo(other LatLng, unit Unit) float64 {
	dlat := other.LatRad() - p.LatRad()
	dlng := other.LngRad() - p.LngRad()

	a := math.Sin(dlat/2.0)*math.Sin(dlat/2.0) +
		math.Cos(p.LatRad())*math.Cos(other.LatRad())*math.Sin(dlng/2.0)*math.Sin(dlng/2.0)

	return 2.0 * unit.EarthRadius() * math.Asin(math.Min(1.0, math.Sqrt(a)))
}

// FlatDistanceTo returns the planar approximation of the distance between
// p and other, using per degree unit scaling at the latitude of p. Only
// accurate over short ranges away from the poles.
func (p LatLng) FlatDistanceTo(other LatLng, unit Unit) float64 {
	dlat := (other.Lat - p.Lat) * unit.PerLatitudeDegree()
	dlng := (other.Lng - p.Lng) * unit.PerLongitudeDegree(p.Lat)

	return math.Sqrt(dlat*dlat + dlng*dlng)
}

// HeadingTo returns the initial bearing from p to other in degrees,
// clockwise from north.
func (p LatLng) HeadingTo(other LatLng) float64 {
	dlng := other.LngRad() - p.LngRad()

	y := math.Sin(dlng) * math.Cos(other.LatRad())
	x := math.Cos(p.LatRad())*math.Sin(other.LatRad()) -
		math.Sin(p.LatRad())*math.Cos(other.LatRad())*math.Cos(dlng)

	heading := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(heading+360.0, 360.0)
}

// EndpointAt returns the point reached by travelling distance from p along
// the given heading (degrees clockwise from north) on a spherical earth.
func (p LatLng) EndpointAt(heading, distance float64, unit Unit) LatLng {
	ratio := distance / unit.EarthRadius()
	bearing := heading * math.Pi / 180.0

	lat := math.Asin(math.Sin(p.LatRad())*math.Cos(ratio) +
		math.Cos(p.LatRad())*math.Sin(ratio)*math.Cos(bearing))

	lng := p.LngRad() + math.Atan2(
		math.Sin(bearing)*math.Sin(ratio)*math.Cos(p.LatRad()),
		math.Cos(ratio)-math.Sin(p.LatRad())*math.Sin(lat),
	)

	return LatLng{Lat: lat * 180.0 / math.Pi, Lng: lng * 180.0 / math.Pi}.Normalize()
}

// MidpointTo returns the point halfway along the great circle between p
// and other.
func (p LatLng) MidpointTo(other LatLng, unit Unit) LatLng {
	heading := p.HeadingTo(other)
	distance := p.DistanceTo(other, unit)

	return p.EndpointAt(heading, distance/2.0, unit)
}
