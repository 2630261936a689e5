package server

import (
	"context"
	"net/http"
	"strings"
)

type tzCtxKey struct{}

// timezoneMiddleware reads the caller's IANA zone from the tz query
// parameter or the X-Timezone header. Resolution and fallback happen in
// the engine.
func timezoneMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tz := strings.TrimSpace(r.URL.Query().Get("tz"))
		if tz == "" {
			tz = strings.TrimSpace(r.Header.Get("X-Timezone"))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tzCtxKey{}, tz)))
	})
}

func timezoneFromContext(r *http.Request) string {
	tz, _ := r.Context().Value(tzCtxKey{}).(string)
	return tz
}
