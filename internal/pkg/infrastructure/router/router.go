package router

import (
	"net/http"

	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/logging"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	}).Handler)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logging.NewContextWithLogger(req.Context(), logger)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	return r
}
