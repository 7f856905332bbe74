package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/repositories/places"
	"github.com/diwise/gorm-geoquery/pkg/geo"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const defaultRadius float64 = 10.0

func RegisterHandlers(router *chi.Mux, log zerolog.Logger, repo places.PlaceRepository) *chi.Mux {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v0", func(r chi.Router) {
		r.Route("/places", func(r chi.Router) {
			r.Get("/", queryPlacesHandler(log, repo))
			r.Get("/closest", closestPlaceHandler(log, repo))
		})
	})

	return router
}

func queryPlacesHandler(log zerolog.Logger, repo places.PlaceRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenants := r.URL.Query()["tenant"]

		unit := repo.Unit()
		if u := r.URL.Query().Get("units"); u != "" {
			parsed, err := geo.ParseUnit(u)
			if err != nil {
				log.Debug().Err(err).Msg("bad units parameter")
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			unit = parsed
		}

		if near := r.URL.Query().Get("near"); near != "" {
			origin, err := geo.ParseLatLng(near)
			if err != nil {
				log.Debug().Err(err).Msg("bad near parameter")
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			radius := defaultRadius
			if rad := r.URL.Query().Get("radius"); rad != "" {
				radius, err = strconv.ParseFloat(rad, 64)
				if err != nil || radius < 0 {
					log.Debug().Msgf("bad radius parameter %s", rad)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
			}

			result, err := repo.GetWithinRadius(ctx, origin, geo.Convert(radius, unit, repo.Unit()), tenants...)
			if err != nil {
				log.Error().Err(err).Msg("failed to query places within radius")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			respondWithPlaces(w, log, result, &origin, unit)
			return
		}

		if b := r.URL.Query().Get("bounds"); b != "" {
			bounds, err := geo.ParseBounds(b)
			if err != nil {
				log.Debug().Err(err).Msg("bad bounds parameter")
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			result, err := repo.GetInBounds(ctx, bounds, tenants...)
			if err != nil {
				log.Error().Err(err).Msg("failed to query places in bounds")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			respondWithPlaces(w, log, result, nil, unit)
			return
		}

		result, err := repo.GetPlaces(ctx, tenants...)
		if err != nil {
			log.Error().Err(err).Msg("failed to query places")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		respondWithPlaces(w, log, result, nil, unit)
	}
}

func closestPlaceHandler(log zerolog.Logger, repo places.PlaceRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		origin, err := geo.ParseLatLng(r.URL.Query().Get("near"))
		if err != nil {
			log.Debug().Err(err).Msg("bad near parameter")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		unit := repo.Unit()
		if u := r.URL.Query().Get("units"); u != "" {
			parsed, err := geo.ParseUnit(u)
			if err != nil {
				log.Debug().Err(err).Msg("bad units parameter")
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			unit = parsed
		}

		place, err := repo.GetClosest(ctx, origin, r.URL.Query()["tenant"]...)
		if err != nil {
			if errors.Is(err, places.ErrPlaceNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			log.Error().Err(err).Msg("failed to query closest place")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		dto := newPlaceDTO(place, &origin, unit)

		w.Header().Add("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dto); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func newPlaceDTO(p places.Place, origin *geo.LatLng, unit geo.Unit) placeDTO {
	dto := placeDTO{
		Name:     p.Name,
		Category: p.Category,
		Tenant:   p.Tenant,
		Location: location{Latitude: p.Lat, Longitude: p.Lon},
	}

	if origin != nil {
		distance := origin.DistanceTo(geo.LatLng{Lat: p.Lat, Lng: p.Lon}, unit)
		dto.Distance = &distance
		dto.Units = string(unit)
	}

	return dto
}

func respondWithPlaces(w http.ResponseWriter, log zerolog.Logger, result []places.Place, origin *geo.LatLng, unit geo.Unit) {
	dtos := lo.Map(result, func(p places.Place, _ int) placeDTO {
		return newPlaceDTO(p, origin, unit)
	})

	w.Header().Add("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(placesResult{Count: len(dtos), Places: dtos})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
