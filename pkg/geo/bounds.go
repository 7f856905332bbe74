package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds is a rectangular area delimited by its south west and north east
// corners. A bounds whose north east longitude is numerically smaller than
// its south west longitude crosses the antimeridian (the ±180° longitude
// discontinuity).
type Bounds struct {
	SW LatLng `json:"sw"`
	NE LatLng `json:"ne"`
}

// NewBounds validates the corner ordering and returns a Bounds.
func NewBounds(sw, ne LatLng) (Bounds, error) {
	if sw.Lat > ne.Lat {
		return Bounds{}, fmt.Errorf("%w: south west latitude %f above north east latitude %f", ErrInvalidBounds, sw.Lat, ne.Lat)
	}

	return Bounds{SW: sw.Normalize(), NE: ne.Normalize()}, nil
}

// ParseBounds parses a "swLat,swLng;neLat,neLng" pair of corners.
func ParseBounds(s string) (Bounds, error) {
	pairs := strings.Split(strings.Trim(s, "[]"), ";")
	if len(pairs) != 2 {
		return Bounds{}, fmt.Errorf("%w: %q is not on the form swLat,swLng;neLat,neLng", ErrInvalidBounds, s)
	}

	sw, err := ParseLatLng(pairs[0])
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %s", ErrInvalidBounds, err.Error())
	}

	ne, err := ParseLatLng(pairs[1])
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %s", ErrInvalidBounds, err.Error())
	}

	return NewBounds(sw, ne)
}

// BoundsFromPointAndRadius returns the smallest bounds that contains the
// circle of the given radius around center. Near the poles the longitude
// span widens and is capped at the full [-180, 180] range.
func BoundsFromPointAndRadius(center LatLng, radius float64, unit Unit) (Bounds, error) {
	if radius < 0 || math.IsNaN(radius) {
		return Bounds{}, fmt.Errorf("%w: negative radius", ErrInvalidBounds)
	}

	if !unit.valid() {
		return Bounds{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidBounds, string(unit))
	}

	dlat := radius / unit.PerLatitudeDegree()

	swLat := math.Max(-90.0, center.Lat-dlat)
	neLat := math.Min(90.0, center.Lat+dlat)

	perLng := unit.PerLongitudeDegree(center.Lat)
	if perLng <= 0 || radius/perLng >= 180.0 {
		sw := LatLng{Lat: swLat, Lng: -180.0}
		ne := LatLng{Lat: neLat, Lng: 180.0}
		return Bounds{SW: sw, NE: ne}, nil
	}

	dlng := radius / perLng

	sw := LatLng{Lat: swLat, Lng: center.Lng - dlng}.Normalize()
	ne := LatLng{Lat: neLat, Lng: center.Lng + dlng}.Normalize()

	return Bounds{SW: sw, NE: ne}, nil
}

// CrossesMeridian reports whether the bounds spans the ±180° longitude
// discontinuity.
func (b Bounds) CrossesMeridian() bool {
	return b.SW.Lng > b.NE.Lng
}

// Contains reports whether the point lies within the bounds, corners
// included.
func (b Bounds) Contains(p LatLng) bool {
	p = p.Normalize()

	if p.Lat < b.SW.Lat || p.Lat > b.NE.Lat {
		return false
	}

	if b.CrossesMeridian() {
		return p.Lng >= b.SW.Lng || p.Lng <= b.NE.Lng
	}

	return p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
}

// Center returns the midpoint of the bounds, accounting for meridian
// crossing.
func (b Bounds) Center() LatLng {
	lat := (b.SW.Lat + b.NE.Lat) / 2.0

	lng := (b.SW.Lng + b.NE.Lng) / 2.0
	if b.CrossesMeridian() {
		lng += 180.0
	}

	return LatLng{Lat: lat, Lng: lng}.Normalize()
}
