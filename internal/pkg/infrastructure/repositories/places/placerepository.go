package places

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/diwise/gorm-geoquery/pkg/geo"
	"github.com/diwise/gorm-geoquery/pkg/geoquery"
	"gorm.io/gorm"
)

var ErrPlaceNotFound = fmt.Errorf("place not found")
var ErrRepositoryError = fmt.Errorf("could not fetch data from repository")

type PlaceRepository interface {
	GetPlaces(ctx context.Context, tenants ...string) ([]Place, error)
	GetWithinRadius(ctx context.Context, origin geo.LatLng, radius float64, tenants ...string) ([]Place, error)
	GetInBounds(ctx context.Context, bounds geo.Bounds, tenants ...string) ([]Place, error)
	GetClosest(ctx context.Context, origin geo.LatLng, tenants ...string) (Place, error)

	Save(ctx context.Context, place *Place) error

	Seed(context.Context, io.Reader) error

	Unit() geo.Unit
}

func NewPlaceRepository(connect geoquery.ConnectorFunc) (PlaceRepository, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(&Place{})
	if err != nil {
		return nil, err
	}

	mappable, err := geoquery.NewMappable(
		geoquery.WithTable("places"),
		geoquery.WithColumns("lat", "lon"),
		geoquery.WithUnit(geo.UnitKilometers),
	)
	if err != nil {
		return nil, err
	}

	return &placeRepository{
		db:       impl,
		mappable: mappable,
	}, nil
}

type placeRepository struct {
	db       *gorm.DB
	mappable geoquery.Mappable
}

// Unit returns the unit of measure that radii and distances are expressed
// in when querying this repository.
func (p *placeRepository) Unit() geo.Unit {
	return p.mappable.Unit()
}

func (p *placeRepository) getPlacesQuery(tenants ...string) *gorm.DB {
	query := p.db.Model(&Place{})

	if len(tenants) > 0 {
		query = query.Where("places.tenant IN (?)", tenants)
	}

	return query
}

func (p *placeRepository) GetPlaces(ctx context.Context, tenants ...string) ([]Place, error) {
	var places []Place

	result := p.getPlacesQuery(tenants...).Find(&places)

	return places, result.Error
}

func (p *placeRepository) GetWithinRadius(ctx context.Context, origin geo.LatLng, radius float64, tenants ...string) ([]Place, error) {
	var places []Place

	query := p.getPlacesQuery(tenants...).Scopes(
		p.mappable.WithinRadius(origin, radius),
		p.mappable.OrderByDistance(origin),
	)

	result := query.Find(&places)

	return places, result.Error
}

func (p *placeRepository) GetInBounds(ctx context.Context, bounds geo.Bounds, tenants ...string) ([]Place, error) {
	var places []Place

	query := p.getPlacesQuery(tenants...).Scopes(
		p.mappable.InBounds(bounds),
	)

	result := query.Find(&places)

	return places, result.Error
}

func (p *placeRepository) GetClosest(ctx context.Context, origin geo.LatLng, tenants ...string) (Place, error) {
	var place Place

	query := p.getPlacesQuery(tenants...).Scopes(
		p.mappable.ClosestTo(origin),
	)

	result := query.First(&place)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Place{}, ErrPlaceNotFound
		}

		return Place{}, ErrRepositoryError
	}

	return place, nil
}

func (p *placeRepository) Save(ctx context.Context, place *Place) error {
	if _, err := geo.NewLatLng(place.Lat, place.Lon); err != nil {
		return err
	}

	return p.db.Save(place).Error
}
