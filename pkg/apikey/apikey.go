package apikey

import "net/http"

// RequirePublic guards rider-facing endpoints with the public API key.
// An unset key leaves the endpoints open, matching legacy deployments that
// never configured one.
func RequirePublic(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("X-API-Key") != key {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards dispatcher endpoints with the admin API key. Unlike the
// public key, a missing admin key is a server misconfiguration, not an open
// door.
func RequireAdmin(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.Error(w, `{"error":"admin API key is not configured"}`, http.StatusInternalServerError)
				return
			}
			if r.Header.Get("X-API-Key") != key {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
