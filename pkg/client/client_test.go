package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diwise/gorm-geoquery/pkg/geo"
	"github.com/matryer/is"
)

func TestFindPlacesNear(t *testing.T) {
	is := is.New(t)

	var requestedURI string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedURI = r.URL.RequestURI()
		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(placesResponse))
	}))
	defer server.Close()

	c := New(server.URL)

	found, err := c.FindPlacesNear(context.Background(), geo.LatLng{Lat: 62.3908, Lng: 17.3069}, 5, geo.UnitKilometers)
	is.NoErr(err)
	is.Equal(2, len(found))
	is.Equal("badhuset", found[0].Name)
	is.True(found[0].Distance != nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+requestedURI, nil)
	is.NoErr(err)
	query := req.URL.Query()
	is.Equal("62.3908,17.3069", query.Get("near"))
	is.Equal("5", query.Get("radius"))
	is.Equal("km", query.Get("units"))
}

func TestFindPlacesInBounds(t *testing.T) {
	is := is.New(t)

	var boundsParam string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		boundsParam = r.URL.Query().Get("bounds")
		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(placesResponse))
	}))
	defer server.Close()

	bounds, err := geo.NewBounds(geo.LatLng{Lat: 62, Lng: 17}, geo.LatLng{Lat: 63, Lng: 18})
	is.NoErr(err)

	_, err = New(server.URL).FindPlacesInBounds(context.Background(), bounds)
	is.NoErr(err)
	is.Equal("62,17;63,18", boundsParam)
}

func TestFindClosestPlace(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(`{"name":"badhuset","tenant":"default","location":{"latitude":62.3916,"longitude":17.30723},"distance":0.1,"units":"km"}`))
	}))
	defer server.Close()

	place, err := New(server.URL).FindClosestPlace(context.Background(), geo.LatLng{Lat: 62.3908, Lng: 17.3069})
	is.NoErr(err)
	is.Equal("badhuset", place.Name)
}

func TestFindClosestPlaceNotFound(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL).FindClosestPlace(context.Background(), geo.LatLng{})
	is.True(errors.Is(err, ErrPlaceNotFound))
}

func TestServerErrorsAreSurfaced(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL).FindPlacesNear(context.Background(), geo.LatLng{}, 5, geo.UnitKilometers)
	is.True(err != nil)
}

const placesResponse string = `{
	"count": 2,
	"places": [
		{"name": "badhuset", "tenant": "default", "location": {"latitude": 62.3916, "longitude": 17.30723}, "distance": 0.1, "units": "km"},
		{"name": "hamnen", "tenant": "default", "location": {"latitude": 62.38902, "longitude": 17.32033}, "distance": 0.9, "units": "km"}
	]
}`
