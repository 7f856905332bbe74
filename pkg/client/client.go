package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/logging"
	"github.com/diwise/gorm-geoquery/pkg/geo"
)

var ErrPlaceNotFound = errors.New("place not found")

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Place struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Tenant   string   `json:"tenant"`
	Location Location `json:"location"`
	Distance *float64 `json:"distance,omitempty"`
	Units    string   `json:"units,omitempty"`
}

type queryResult struct {
	Count  int     `json:"count"`
	Places []Place `json:"places"`
}

type PlacefinderClient interface {
	FindPlacesNear(ctx context.Context, origin geo.LatLng, radius float64, unit geo.Unit) ([]Place, error)
	FindPlacesInBounds(ctx context.Context, bounds geo.Bounds) ([]Place, error)
	FindClosestPlace(ctx context.Context, origin geo.LatLng) (*Place, error)
}

type placefinderClient struct {
	url        string
	httpClient http.Client
}

func New(placefinderURL string) PlacefinderClient {
	return &placefinderClient{
		url: placefinderURL,
	}
}

func (c *placefinderClient) FindPlacesNear(ctx context.Context, origin geo.LatLng, radius float64, unit geo.Unit) ([]Place, error) {
	query := url.Values{}
	query.Set("near", origin.String())
	query.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))
	query.Set("units", string(unit))

	result, err := c.queryPlaces(ctx, "/api/v0/places?"+query.Encode())
	if err != nil {
		return nil, err
	}

	return result.Places, nil
}

func (c *placefinderClient) FindPlacesInBounds(ctx context.Context, bounds geo.Bounds) ([]Place, error) {
	query := url.Values{}
	query.Set("bounds", fmt.Sprintf("%s;%s", bounds.SW.String(), bounds.NE.String()))

	result, err := c.queryPlaces(ctx, "/api/v0/places?"+query.Encode())
	if err != nil {
		return nil, err
	}

	return result.Places, nil
}

func (c *placefinderClient) FindClosestPlace(ctx context.Context, origin geo.LatLng) (*Place, error) {
	query := url.Values{}
	query.Set("near", origin.String())

	respBody, err := c.get(ctx, "/api/v0/places/closest?"+query.Encode())
	if err != nil {
		return nil, err
	}

	place := &Place{}

	err = json.Unmarshal(respBody, place)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return place, nil
}

func (c *placefinderClient) queryPlaces(ctx context.Context, path string) (*queryResult, error) {
	respBody, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &queryResult{}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return result, nil
}

func (c *placefinderClient) get(ctx context.Context, path string) ([]byte, error) {
	log := logging.GetLoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve places: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPlaceNotFound
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Msgf("placefinder returned status code %d", resp.StatusCode)
		return nil, fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, nil
}
