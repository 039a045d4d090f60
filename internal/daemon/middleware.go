package daemon

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"reelreview/internal/services"
)

// RequestIDHeader correlates a request with its log records.
const RequestIDHeader = "X-Request-ID"

// requestID propagates the caller's request id, or assigns one, through the
// request context and the response headers.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}
