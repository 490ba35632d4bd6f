package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/snapcloud/snapcloud-server/internal/models"
	"github.com/snapcloud/snapcloud-server/internal/wire"
)

// Handler holds the account-facing HTTP handlers.
type Handler struct {
	svc          *Service
	sessions     SessionStore
	descriptor   string
	cookieSecure bool
	log          *slog.Logger
}

func NewHandler(svc *Service, sessions SessionStore, cookieSecure bool, log *slog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, cookieSecure: cookieSecure, log: log}
}

// SetDescriptor installs the capability descriptor returned on login.
// Called once at startup, after the operation registry is built and
// before the server accepts traffic.
func (h *Handler) SetDescriptor(descriptor string) {
	h.descriptor = descriptor
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  token,
		Path:   "/",
		MaxAge: int(maxAge / time.Second),
		Secure: h.cookieSecure,
		// The client parses this cookie by name, so it stays readable.
		HttpOnly: false,
	})
}

// Login handles POST /. With credentials it verifies the hash, binds the
// user to a session, and returns the capability descriptor. Without
// credentials it answers the descriptor for an already-authenticated
// session, which is how clients re-discover the API on reconnect.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("__u")
	hash := r.PostFormValue("__h")

	if username == "" && hash == "" {
		sess := SessionFrom(r.Context())
		if !sess.Authenticated() {
			wire.WriteError(w, models.ErrNotLoggedIn)
			return
		}
		w.Write([]byte(h.descriptor))
		return
	}

	if _, err := h.svc.Login(r.Context(), username, hash); err != nil {
		h.log.Info("login rejected", "user", username, "err", err)
		wire.WriteError(w, err)
		return
	}

	sess := SessionFrom(r.Context())
	if sess == nil {
		created, err := h.sessions.Create(r.Context())
		if err != nil {
			wire.WriteError(w, err)
			return
		}
		sess = created
	}
	sess.User = username
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		wire.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, sess.Token, SessionTTL)
	h.log.Info("login", "user", username)
	w.Write([]byte(h.descriptor))
}

// SignUp handles GET /SignUp. Account creation succeeds even when the
// password mail cannot be delivered; delivery runs in the background.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("Username")
	email := r.URL.Query().Get("Email")

	if err := h.svc.Signup(r.Context(), username, email, false); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.Write([]byte("Account created"))
}

// ResetPW handles GET /ResetPW. The response waits on the mail: a reset
// the user never receives is worse than an error.
func (h *Handler) ResetPW(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("Username")

	if err := h.svc.ResetPassword(r.Context(), username); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.Write([]byte("Password reset"))
}

// Logout destroys the session mapping and expires the cookie. Safe to
// call anonymously.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFrom(r.Context()); sess != nil {
		if err := h.sessions.Destroy(r.Context(), sess.Token); err != nil {
			wire.WriteError(w, err)
			return
		}
		h.log.Info("logout", "user", sess.User)
	}
	h.setSessionCookie(w, "", -time.Second)
	w.WriteHeader(http.StatusOK)
}

// ChangePassword applies the conditioned hash swap for the session user.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	oldHash := r.PostFormValue("OldPassword")
	newHash := r.PostFormValue("NewPassword")

	if err := h.svc.ChangePassword(r.Context(), sess.User, oldHash, newHash); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
