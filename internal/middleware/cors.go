package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// DefaultFrontendOrigin is always allowed so local frontends work without configuration
const DefaultFrontendOrigin = "http://localhost:3000"

// ParseOrigins splits a comma separated FRONTEND_URL value, trims it, drops duplicates
// and prepends DefaultFrontendOrigin.
func ParseOrigins(frontendURL string) []string {
	origins := []string{DefaultFrontendOrigin}
	for _, origin := range strings.Split(frontendURL, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" && !slices.Contains(origins, origin) {
			origins = append(origins, origin)
		}
	}
	return origins
}

// CORS answers preflight requests and sets CORS headers for the configured origins.
// The API is read-mostly, so only GET, POST and OPTIONS are allowed.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   ParseOrigins(frontendURL),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
