package service

import (
	"net/http"
	"time"
)

// middleware logs HTTP request details
func (api *APIServer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
