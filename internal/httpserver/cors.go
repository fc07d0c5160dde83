package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/rs/cors"
)

// CORSMiddleware wraps next with rs/cors. An empty allow-list lets no origin through.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	c := cors.New(cors.Options{
		// AllowedOrigins пустой означал бы "*", поэтому проверяем сами
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})

	return c.Handler(next)
}
