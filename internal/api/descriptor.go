// Package api holds the self-describing operation registry. Clients
// discover the available services from the descriptor string returned on
// login instead of fetching a separate schema.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/snapcloud/snapcloud-server/internal/wire"
)

// Operation is one registered service: its name doubles as the route.
type Operation struct {
	Name       string
	Parameters []string
	Method     string // "Get" or "Post"
	Auth       bool   // requires an authenticated session
	Handler    http.HandlerFunc
}

// Registry is an immutable, ordered operation set built once at startup.
// Registration order is descriptor order; clients rely on it being stable
// across restarts, which is why this is a slice and never a map.
type Registry struct {
	ops        []Operation
	descriptor string
}

// NewRegistry builds the registry and precomputes the descriptor.
// Parameters are escaped individually and comma-joined: the comma is part
// of the descriptor grammar, not of any parameter name.
func NewRegistry(ops []Operation) *Registry {
	records := make([]string, len(ops))
	for i, op := range ops {
		params := make([]string, len(op.Parameters))
		for j, p := range op.Parameters {
			params[j] = wire.Escape(p)
		}
		records[i] = "Service=" + wire.Escape(op.Name) +
			"&Parameters=" + strings.Join(params, ",") +
			"&Method=" + wire.Escape(op.Method) +
			"&URL=" + wire.Escape(op.Name)
	}
	return &Registry{ops: ops, descriptor: strings.Join(records, " ")}
}

// Describe returns the capability descriptor string.
func (r *Registry) Describe() string {
	return r.descriptor
}

// Mount attaches every operation's route. guard wraps operations that
// require an authenticated session.
func (r *Registry) Mount(router chi.Router, guard func(http.Handler) http.Handler) {
	for _, op := range r.ops {
		var h http.Handler = op.Handler
		if op.Auth && guard != nil {
			h = guard(h)
		}
		switch op.Method {
		case "Post":
			router.Post("/"+op.Name, h.ServeHTTP)
		default:
			router.Get("/"+op.Name, h.ServeHTTP)
		}
	}
}
