package places

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/diwise/gorm-geoquery/pkg/geo"
	"github.com/diwise/gorm-geoquery/pkg/geoquery"
	"github.com/matryer/is"
)

func testSetupPlaceRepository(t *testing.T) (*is.I, context.Context, PlaceRepository) {
	is := is.New(t)

	r, err := NewPlaceRepository(geoquery.NewSQLiteConnector())
	is.NoErr(err)

	return is, context.Background(), r
}

func createPlace(name, tenant string, lat, lon float64) *Place {
	return &Place{
		Name:     name,
		Category: "poi",
		Tenant:   tenant,
		Lat:      lat,
		Lon:      lon,
	}
}

func TestSaveAndGetPlaces(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Save(ctx, createPlace("sundsvall", "default", 62.3908, 17.3069)))
	is.NoErr(r.Save(ctx, createPlace("stockholm", "default", 59.3293, 18.0686)))
	is.NoErr(r.Save(ctx, createPlace("secret-bunker", "secret", 60.0, 15.0)))

	defaultTenantPlaces, err := r.GetPlaces(ctx, "default")
	is.NoErr(err)
	is.Equal(2, len(defaultTenantPlaces))

	allPlaces, err := r.GetPlaces(ctx)
	is.NoErr(err)
	is.Equal(3, len(allPlaces))
}

func TestSaveRejectsInvalidCoordinates(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	err := r.Save(ctx, createPlace("nowhere", "default", 95.0, 0))
	is.True(errors.Is(err, geo.ErrInvalidLatLng))
}

func TestGetInBounds(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Save(ctx, createPlace("sundsvall", "default", 62.3908, 17.3069)))
	is.NoErr(r.Save(ctx, createPlace("stockholm", "default", 59.3293, 18.0686)))

	bounds, err := geo.NewBounds(geo.LatLng{Lat: 62, Lng: 17}, geo.LatLng{Lat: 63, Lng: 18})
	is.NoErr(err)

	found, err := r.GetInBounds(ctx, bounds)
	is.NoErr(err)
	is.Equal(1, len(found))
	is.Equal("sundsvall", found[0].Name)
}

func TestGetInBoundsFiltersOnTenant(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Save(ctx, createPlace("sundsvall", "default", 62.3908, 17.3069)))
	is.NoErr(r.Save(ctx, createPlace("alno", "secret", 62.4261, 17.4412)))

	bounds, err := geo.NewBounds(geo.LatLng{Lat: 62, Lng: 17}, geo.LatLng{Lat: 63, Lng: 18})
	is.NoErr(err)

	found, err := r.GetInBounds(ctx, bounds, "default")
	is.NoErr(err)
	is.Equal(1, len(found))
	is.Equal("sundsvall", found[0].Name)
}

func TestSeed(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Seed(ctx, bytes.NewBufferString(csvMock)))

	all, err := r.GetPlaces(ctx)
	is.NoErr(err)
	is.Equal(3, len(all))

	defaultTenant, err := r.GetPlaces(ctx, "_default")
	is.NoErr(err)
	is.Equal(2, len(defaultTenant))
}

func TestSeedIsIdempotent(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Seed(ctx, bytes.NewBufferString(csvMock)))
	is.NoErr(r.Seed(ctx, bytes.NewBufferString(csvMock)))

	all, err := r.GetPlaces(ctx)
	is.NoErr(err)
	is.Equal(3, len(all))
}

func TestSeedFailsOnBadLatitude(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	err := r.Seed(ctx, bytes.NewBufferString(csvWithBadLatitude))
	is.True(err != nil)
}

func TestSeedFailsOnTooFewColumns(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	err := r.Seed(ctx, bytes.NewBufferString(csvWithTooFewColumns))
	is.True(err != nil)
}

func TestSeedWithOnlyHeader(t *testing.T) {
	is, ctx, r := testSetupPlaceRepository(t)

	is.NoErr(r.Seed(ctx, bytes.NewBufferString("name;category;tenant;lat;lon")))
}

const csvMock string = `name;category;tenant;lat;lon
badhuset;bath;_default;62.39160;17.30723
hamnen;harbour;_default;62.38902;17.32033
alno;island;_test;62.42610;17.44120`

const csvWithBadLatitude string = `name;category;tenant;lat;lon
badhuset;bath;_default;gurka;17.30723`

const csvWithTooFewColumns string = `name;category
badhuset;bath`
