package geoquery

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/diwise/gorm-geoquery/pkg/geo"
	"gorm.io/gorm"
)

// Formula selects how distances are computed in SQL.
type Formula string

const (
	// FormulaSphere is the great circle distance on a spherical earth.
	FormulaSphere Formula = "sphere"
	// FormulaFlat is a planar approximation, cheaper but only accurate
	// over short ranges away from the poles.
	FormulaFlat Formula = "flat"
)

var ErrInvalidColumn = errors.New("invalid column name")

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Mappable holds the per model configuration needed to generate
// geospatial conditions: which columns hold the coordinates, the unit
// distances are expressed in and the distance formula to use.
type Mappable struct {
	latCol  string
	lngCol  string
	table   string
	unit    geo.Unit
	formula Formula
}

type MappableOption func(*Mappable)

// WithColumns sets the latitude and longitude column names. Defaults are
// "lat" and "lng".
func WithColumns(latCol, lngCol string) MappableOption {
	return func(m *Mappable) {
		m.latCol = latCol
		m.lngCol = lngCol
	}
}

// WithTable qualifies the coordinate columns with a table name, needed
// when the query joins more than one table.
func WithTable(table string) MappableOption {
	return func(m *Mappable) {
		m.table = table
	}
}

func WithUnit(unit geo.Unit) MappableOption {
	return func(m *Mappable) {
		m.unit = unit
	}
}

func WithFormula(formula Formula) MappableOption {
	return func(m *Mappable) {
		m.formula = formula
	}
}

// NewMappable returns a Mappable with validated column names.
func NewMappable(opts ...MappableOption) (Mappable, error) {
	m := Mappable{
		latCol:  "lat",
		lngCol:  "lng",
		unit:    geo.UnitMiles,
		formula: FormulaSphere,
	}

	for _, opt := range opts {
		opt(&m)
	}

	for _, col := range []string{m.latCol, m.lngCol} {
		if !identifier.MatchString(col) {
			return Mappable{}, fmt.Errorf("%w: %q", ErrInvalidColumn, col)
		}
	}

	if m.table != "" && !identifier.MatchString(m.table) {
		return Mappable{}, fmt.Errorf("%w: %q", ErrInvalidColumn, m.table)
	}

	if m.formula != FormulaSphere && m.formula != FormulaFlat {
		return Mappable{}, fmt.Errorf("unknown distance formula %q", string(m.formula))
	}

	return m, nil
}

func (m Mappable) Unit() geo.Unit {
	return m.unit
}

func (m Mappable) lat() string {
	if m.table != "" {
		return m.table + "." + m.latCol
	}
	return m.latCol
}

func (m Mappable) lng() string {
	if m.table != "" {
		return m.table + "." + m.lngCol
	}
	return m.lngCol
}

// DistanceSQL returns the distance expression between the origin and the
// row coordinates, rendered for the dialect of tx.
func (m Mappable) DistanceSQL(tx *gorm.DB, origin geo.LatLng) (string, error) {
	adapter, err := adapterFor(tx.Dialector.Name())
	if err != nil {
		return "", err
	}

	if m.formula == FormulaFlat {
		return adapter.FlatDistanceSQL(origin, m.unit, m.lat(), m.lng()), nil
	}

	return adapter.SphereDistanceSQL(origin, m.unit, m.lat(), m.lng()), nil
}

// WithinRadius keeps rows within radius of the origin. A bounding box
// prefilter narrows the scan before the exact distance condition runs.
func (m Mappable) WithinRadius(origin geo.LatLng, radius float64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		expr, err := m.DistanceSQL(tx, origin)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		bounds, err := geo.BoundsFromPointAndRadius(origin, radius, m.unit)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		return m.applyBounds(tx, bounds).Where(expr+" <= ?", radius)
	}
}

// Beyond keeps rows farther than radius from the origin.
func (m Mappable) Beyond(origin geo.LatLng, radius float64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		expr, err := m.DistanceSQL(tx, origin)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		return tx.Where(expr+" > ?", radius)
	}
}

// InRange keeps rows whose distance from the origin falls within
// [lower, upper]. The bounding box prefilter is derived from the upper
// bound.
func (m Mappable) InRange(origin geo.LatLng, lower, upper float64) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		expr, err := m.DistanceSQL(tx, origin)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		bounds, err := geo.BoundsFromPointAndRadius(origin, upper, m.unit)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		return m.applyBounds(tx, bounds).Where(expr+" BETWEEN ? AND ?", lower, upper)
	}
}

// InBounds keeps rows inside the bounds. A bounds that crosses the
// antimeridian turns the longitude range into a disjunction.
func (m Mappable) InBounds(bounds geo.Bounds) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return m.applyBounds(tx, bounds)
	}
}

func (m Mappable) applyBounds(tx *gorm.DB, bounds geo.Bounds) *gorm.DB {
	tx = tx.Where(m.lat()+" BETWEEN ? AND ?", bounds.SW.Lat, bounds.NE.Lat)

	if bounds.CrossesMeridian() {
		return tx.Where("("+m.lng()+" >= ? OR "+m.lng()+" <= ?)", bounds.SW.Lng, bounds.NE.Lng)
	}

	return tx.Where(m.lng()+" BETWEEN ? AND ?", bounds.SW.Lng, bounds.NE.Lng)
}

// OrderByDistance sorts rows by their distance from the origin, closest
// first.
func (m Mappable) OrderByDistance(origin geo.LatLng) func(*gorm.DB) *gorm.DB {
	return m.orderByDistance(origin, "ASC")
}

func (m Mappable) OrderByDistanceDesc(origin geo.LatLng) func(*gorm.DB) *gorm.DB {
	return m.orderByDistance(origin, "DESC")
}

func (m Mappable) orderByDistance(origin geo.LatLng, direction string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		expr, err := m.DistanceSQL(tx, origin)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		return tx.Order(expr + " " + direction)
	}
}

// SelectDistance injects the distance from the origin as a synthetic
// column under the given alias, alongside the model's own columns.
func (m Mappable) SelectDistance(origin geo.LatLng, alias string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if !identifier.MatchString(alias) {
			_ = tx.AddError(fmt.Errorf("%w: %q", ErrInvalidColumn, alias))
			return tx
		}

		expr, err := m.DistanceSQL(tx, origin)
		if err != nil {
			_ = tx.AddError(err)
			return tx
		}

		columns := "*"
		if m.table != "" {
			columns = m.table + ".*"
		}

		return tx.Select(fmt.Sprintf("%s, %s AS %s", columns, expr, alias))
	}
}

// ClosestTo sorts by distance from the origin and keeps the single
// closest row.
func (m Mappable) ClosestTo(origin geo.LatLng) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return m.orderByDistance(origin, "ASC")(tx).Limit(1)
	}
}
