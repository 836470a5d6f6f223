package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

var defaultCorsOptions = cors.Options{
	AllowOriginFunc: func(origin string) bool {
		return true
	},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Authorization", "Content-Type"},
	ExposedHeaders: []string{"Authorization"},
}

func CorsMiddleware(opts *cors.Options) func(h http.Handler) http.Handler {
	mergedOpts := defaultCorsOptions

	if opts != nil {
		if opts.AllowOriginFunc != nil {
			mergedOpts.AllowOriginFunc = opts.AllowOriginFunc
		}
		if len(opts.AllowedMethods) > 0 {
			mergedOpts.AllowedMethods = opts.AllowedMethods
		}
		if len(opts.AllowedHeaders) > 0 {
			mergedOpts.AllowedHeaders = opts.AllowedHeaders
		}
		if len(opts.ExposedHeaders) > 0 {
			mergedOpts.ExposedHeaders = opts.ExposedHeaders
		}
		if opts.MaxAge > 0 {
			mergedOpts.MaxAge = opts.MaxAge
		}
	}

	return cors.New(mergedOpts).Handler
}
