// Package server wires the middleware chain and route table together.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/snapcloud/snapcloud-server/internal/api"
	"github.com/snapcloud/snapcloud-server/internal/auth"
	"github.com/snapcloud/snapcloud-server/internal/middleware"
	"github.com/snapcloud/snapcloud-server/internal/project"
)

// maxBodyBytes bounds request bodies; project payloads can be large but
// not unbounded.
const maxBodyBytes = 16 << 20 // 16 MB

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// NewRegistry builds the capability registry in its fixed registration
// order. The descriptor clients receive on login is derived from this
// exact order.
func NewRegistry(authH *auth.Handler, projH *project.Handler) *api.Registry {
	return api.NewRegistry([]api.Operation{
		{Name: "logout", Parameters: []string{}, Method: "Get", Handler: authH.Logout},
		{Name: "changePassword", Parameters: []string{"OldPassword", "NewPassword"}, Method: "Post", Auth: true, Handler: authH.ChangePassword},
		{Name: "saveProject", Parameters: []string{"ProjectName", "SourceCode", "Media", "SourceSize", "MediaSize"}, Method: "Post", Auth: true, Handler: projH.Save},
		{Name: "getProjectList", Parameters: []string{}, Method: "Get", Auth: true, Handler: projH.List},
		{Name: "deleteProject", Parameters: []string{"ProjectName"}, Method: "Post", Auth: true, Handler: projH.Delete},
		{Name: "publishProject", Parameters: []string{"ProjectName"}, Method: "Post", Auth: true, Handler: projH.Publish},
		{Name: "unpublishProject", Parameters: []string{"ProjectName"}, Method: "Post", Auth: true, Handler: projH.Unpublish},
		{Name: "getRawProject", Parameters: []string{"ProjectName"}, Method: "Post", Auth: true, Handler: projH.GetRaw},
	})
}

// NewRouter assembles the full middleware chain and route table. Relay
// restoration runs before session loading so a relayed token resolves to
// the same session a cookie would have.
func NewRouter(authH *auth.Handler, projH *project.Handler, sessions auth.SessionStore) http.Handler {
	reg := NewRegistry(authH, projH)
	authH.SetDescriptor(reg.Describe())

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		// Every caller is a cross-origin embedding; echo the Origin back
		// so credentials keep working.
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "SESSIONGLUE", middleware.RelayHeader},
		ExposedHeaders:   []string{middleware.RelayHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(noStore)
	r.Use(bodyLimit)
	r.Use(middleware.CookieRelay)
	r.Use(middleware.LoadSession(sessions))

	r.Post("/", authH.Login)
	r.Get("/SignUp", authH.SignUp)
	r.Get("/ResetPW", authH.ResetPW)
	r.Get("/RawPublic", projH.RawPublic)
	r.Get("/PublicProjects", projH.PublicProjects)

	reg.Mount(r, middleware.RequireUser)

	return r
}
