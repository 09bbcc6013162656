package middlewares

import (
	"net/http"
	"strings"

	"github.com/segmentio/ksuid"
)

const HeaderRequestID = "X-Request-ID"

// WithRequestID propaga X-Request-ID (si es razonable) o genera un KSUID.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if rid == "" || len(rid) > 128 {
				rid = ksuid.New().String()
			}
			w.Header().Set(HeaderRequestID, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
