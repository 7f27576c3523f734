// Package security carries the API's auth and response hardening middleware.
package security

import "net/http"

// Headers sets conservative security headers on every response. The API
// serves JSON only, so framing and sniffing protections are blanket denies.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
