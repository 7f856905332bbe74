package geoquery

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/diwise/gorm-geoquery/pkg/geo"
)

var ErrUnsupportedDialect = errors.New("no geoquery adapter registered for dialect")

// Adapter generates the distance SQL fragments for one database dialect.
// The origin trigonometry is precomputed and inlined as numeric literals,
// so the fragments carry no bind parameters and no injection surface.
type Adapter interface {
	SphereDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string
	FlatDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string
}

var (
	adaptersMu sync.RWMutex
	adapters   = map[string]Adapter{
		"postgres": postgresAdapter{},
		"mysql":    mysqlAdapter{},
		"sqlite":   sqliteAdapter{},
	}
)

// RegisterAdapter installs an adapter for the dialect name reported by
// gorm.Dialector.Name(), replacing any previous registration.
func RegisterAdapter(dialect string, a Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[dialect] = a
}

func adapterFor(dialect string) (Adapter, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	a, ok := adapters[dialect]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedDialect, dialect)
	}

	return a, nil
}

const degToRad = math.Pi / 180.0

// sphereDistanceSQL renders the arccosine form of the great circle
// distance against the row's coordinate columns. The clamp keeps ACOS in
// its domain when a row coincides with the origin.
func sphereDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol, clampFn string) string {
	cosLatCosLng := math.Cos(origin.LatRad()) * math.Cos(origin.LngRad())
	cosLatSinLng := math.Cos(origin.LatRad()) * math.Sin(origin.LngRad())
	sinLat := math.Sin(origin.LatRad())

	return fmt.Sprintf(
		"%.10f * ACOS(%s(1.0, %.14f * COS(RADIANS(%s)) * COS(RADIANS(%s)) + %.14f * COS(RADIANS(%s)) * SIN(RADIANS(%s)) + %.14f * SIN(RADIANS(%s))))",
		unit.EarthRadius(), clampFn,
		cosLatCosLng, latCol, lngCol,
		cosLatSinLng, latCol, lngCol,
		sinLat, latCol,
	)
}

func flatDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol, powFn string) string {
	return fmt.Sprintf(
		"SQRT(%s(%.10f * (%s - %.10f), 2) + %s(%.10f * (%s - %.10f), 2))",
		powFn, unit.PerLatitudeDegree(), latCol, origin.Lat,
		powFn, unit.PerLongitudeDegree(origin.Lat), lngCol, origin.Lng,
	)
}

type postgresAdapter struct{}

func (postgresAdapter) SphereDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	return sphereDistanceSQL(origin, unit, latCol, lngCol, "LEAST")
}

func (postgresAdapter) FlatDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	return flatDistanceSQL(origin, unit, latCol, lngCol, "POWER")
}

type mysqlAdapter struct{}

func (mysqlAdapter) SphereDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	return sphereDistanceSQL(origin, unit, latCol, lngCol, "LEAST")
}

func (mysqlAdapter) FlatDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	return flatDistanceSQL(origin, unit, latCol, lngCol, "POW")
}

// sqliteAdapter uses the haversine form with repeated multiplication
// instead of POWER, which is the form SQLite accepts when built with its
// math functions enabled.
type sqliteAdapter struct{}

func (sqliteAdapter) SphereDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	cosLat := math.Cos(origin.LatRad())

	return fmt.Sprintf(
		"2.0 * %.10f * ASIN(SQRT("+
			"SIN((%s - %.10f) * %.14f / 2.0) * SIN((%s - %.10f) * %.14f / 2.0)"+
			" + %.14f * COS(%s * %.14f)"+
			" * SIN((%s - %.10f) * %.14f / 2.0) * SIN((%s - %.10f) * %.14f / 2.0)"+
			"))",
		unit.EarthRadius(),
		latCol, origin.Lat, degToRad, latCol, origin.Lat, degToRad,
		cosLat, latCol, degToRad,
		lngCol, origin.Lng, degToRad, lngCol, origin.Lng, degToRad,
	)
}

func (sqliteAdapter) FlatDistanceSQL(origin geo.LatLng, unit geo.Unit, latCol, lngCol string) string {
	latScale := unit.PerLatitudeDegree()
	lngScale := unit.PerLongitudeDegree(origin.Lat)

	return fmt.Sprintf(
		"SQRT((%.10f * (%s - %.10f)) * (%.10f * (%s - %.10f)) + (%.10f * (%s - %.10f)) * (%.10f * (%s - %.10f)))",
		latScale, latCol, origin.Lat, latScale, latCol, origin.Lat,
		lngScale, lngCol, origin.Lng, lngScale, lngCol, origin.Lng,
	)
}
