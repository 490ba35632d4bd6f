package middleware

import (
	"net/http"

	"github.com/snapcloud/snapcloud-server/internal/auth"
	"github.com/snapcloud/snapcloud-server/internal/models"
	"github.com/snapcloud/snapcloud-server/internal/wire"
)

// LoadSession resolves the session cookie (possibly synthesized by the
// relay) and attaches the session to the request context. Every hit on a
// live session extends its TTL, so idle logged-in sessions survive while
// abandoned ones age out.
func LoadSession(sessions auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Load(r.Context(), cookie.Value)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			_ = sessions.Touch(r.Context(), sess.Token)

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// RequireUser rejects requests whose session has no bound user. The
// reply matches what the handlers answered for a missing username.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.SessionFrom(r.Context()).Authenticated() {
			wire.WriteError(w, models.ErrInvalidRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
