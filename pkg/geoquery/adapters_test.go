package geoquery

import (
	"errors"
	"strings"
	"testing"

	"github.com/diwise/gorm-geoquery/pkg/geo"
	"github.com/matryer/is"
)

var origin = geo.LatLng{Lat: 62.3908, Lng: 17.3069}

func TestAdapterForKnownDialects(t *testing.T) {
	is := is.New(t)

	for _, dialect := range []string{"postgres", "mysql", "sqlite"} {
		_, err := adapterFor(dialect)
		is.NoErr(err)
	}
}

func TestAdapterForUnknownDialectFails(t *testing.T) {
	is := is.New(t)

	_, err := adapterFor("sqlserver")
	is.True(errors.Is(err, ErrUnsupportedDialect))
}

func TestRegisterAdapter(t *testing.T) {
	is := is.New(t)

	RegisterAdapter("testdialect", postgresAdapter{})

	a, err := adapterFor("testdialect")
	is.NoErr(err)
	is.True(a != nil)
}

func TestPostgresSphereDistanceSQL(t *testing.T) {
	is := is.New(t)

	sql := postgresAdapter{}.SphereDistanceSQL(origin, geo.UnitKilometers, "places.lat", "places.lon")

	is.True(strings.HasPrefix(sql, "6376.7730000000 * ACOS(LEAST(1.0,"))
	is.True(strings.Contains(sql, "COS(RADIANS(places.lat))"))
	is.True(strings.Contains(sql, "SIN(RADIANS(places.lon))"))
	is.True(!strings.Contains(sql, "?"))
}

func TestMySQLSphereDistanceSQLUsesMiles(t *testing.T) {
	is := is.New(t)

	sql := mysqlAdapter{}.SphereDistanceSQL(origin, geo.UnitMiles, "lat", "lng")

	is.True(strings.HasPrefix(sql, "3963.1900000000 * ACOS(LEAST(1.0,"))
}

func TestSQLiteSphereDistanceSQLAvoidsPower(t *testing.T) {
	is := is.New(t)

	sql := sqliteAdapter{}.SphereDistanceSQL(origin, geo.UnitKilometers, "lat", "lng")

	is.True(strings.Contains(sql, "ASIN(SQRT("))
	is.True(!strings.Contains(sql, "POW"))
	is.True(!strings.Contains(sql, "ACOS"))
}

func TestFlatDistanceSQLPerDialect(t *testing.T) {
	is := is.New(t)

	pg := postgresAdapter{}.FlatDistanceSQL(origin, geo.UnitKilometers, "lat", "lng")
	is.True(strings.Contains(pg, "POWER("))

	my := mysqlAdapter{}.FlatDistanceSQL(origin, geo.UnitKilometers, "lat", "lng")
	is.True(strings.Contains(my, "POW("))
	is.True(!strings.Contains(my, "POWER("))

	lite := sqliteAdapter{}.FlatDistanceSQL(origin, geo.UnitKilometers, "lat", "lng")
	is.True(!strings.Contains(lite, "POW"))
	is.True(strings.Contains(lite, "SQRT("))
}

func TestDistanceSQLInlinesOriginLatitudeScaling(t *testing.T) {
	is := is.New(t)

	atEquator := postgresAdapter{}.FlatDistanceSQL(geo.LatLng{}, geo.UnitKilometers, "lat", "lng")
	is.True(strings.Contains(atEquator, "111.3200000000"))
}
