// Package middleware holds the HTTP middleware chain: the cookie relay
// and session loading. Order matters: relay restoration must run before
// the session is loaded, and relay emission happens at first write so a
// fresh login's cookie is relayed in the same response.
package middleware

import (
	"net/http"
	"strings"

	"github.com/snapcloud/snapcloud-server/internal/auth"
)

const (
	// RelayHeader ferries the session cookie's value around third-party
	// cookie blocking. Embedded clients read it from the response and
	// send it back on the next request.
	RelayHeader = "MioCracker"

	// relayNothing is the sentinel emitted when no session exists at
	// all. The client library needs a value to distinguish "reachable,
	// no session" from "relay unsupported".
	relayNothing = "nothing"
)

func hasSessionCookie(r *http.Request) bool {
	_, err := r.Cookie(auth.SessionCookie)
	return err == nil
}

// setCookieValue extracts the session cookie's value from a Set-Cookie
// header line, ignoring attributes.
func setCookieValue(line string) (string, bool) {
	first, _, _ := strings.Cut(line, ";")
	name, value, ok := strings.Cut(strings.TrimSpace(first), "=")
	if !ok || name != auth.SessionCookie {
		return "", false
	}
	return value, true
}

// relayWriter emits the relay header right before headers go out, after
// the handler has had its chance to set a fresh session cookie.
type relayWriter struct {
	http.ResponseWriter
	req     *http.Request
	emitted bool
}

func (w *relayWriter) emit() {
	if w.emitted {
		return
	}
	w.emitted = true

	value := ""
	for _, line := range w.Header().Values("Set-Cookie") {
		if v, ok := setCookieValue(line); ok {
			value = v
		}
	}
	if value == "" {
		// No outgoing cookie: fall back to the inbound one so the relay
		// header is always present while a session exists.
		if c, err := w.req.Cookie(auth.SessionCookie); err == nil {
			value = c.Value
		}
	}

	if value != "" {
		w.Header().Set(RelayHeader, auth.SessionCookie+"="+value)
	} else {
		w.Header().Set(RelayHeader, relayNothing)
	}
}

func (w *relayWriter) WriteHeader(code int) {
	w.emit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *relayWriter) Write(b []byte) (int, error) {
	w.emit()
	return w.ResponseWriter.Write(b)
}

// CookieRelay keeps a session alive for clients whose browsers strip the
// cross-site cookie. Inbound: a relay header is promoted into the Cookie
// header when the session cookie is absent — a real cookie always wins.
// Outbound: the session cookie's value is mirrored into the relay header.
func CookieRelay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cracker := r.Header.Get(RelayHeader); cracker != "" && !hasSessionCookie(r) {
			if existing := r.Header.Get("Cookie"); existing != "" {
				r.Header.Set("Cookie", existing+"; "+cracker)
			} else {
				r.Header.Set("Cookie", cracker)
			}
		}

		rw := &relayWriter{ResponseWriter: w, req: r}
		next.ServeHTTP(rw, r)
		rw.emit()
	})
}
