package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// PasswordHeader carries the password of a public review session.
const PasswordHeader = "X-Review-Password"

// sessionAccess gates session routes. Private sessions and public sessions
// without a password pass through; otherwise the request must carry the
// session password in PasswordHeader.
func (s *apiServer) sessionAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		if err := s.svc.AuthorizeSession(r.Context(), id, r.Header.Get(PasswordHeader)); err != nil {
			s.writeServiceError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
