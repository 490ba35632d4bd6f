package project

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/snapcloud/snapcloud-server/internal/auth"
	"github.com/snapcloud/snapcloud-server/internal/wire"
)

// updatedFormat matches what clients already parse for timestamps.
const updatedFormat = "2006-01-02T15:04:05.000Z"

// Handler holds the project-facing HTTP handlers. Authenticated routes
// rely on the router's session guard having bound a user already.
type Handler struct {
	svc           *Service
	defaultOrigin string
	log           *slog.Logger
}

func NewHandler(svc *Service, defaultOrigin string, log *slog.Logger) *Handler {
	return &Handler{svc: svc, defaultOrigin: defaultOrigin, log: log}
}

func owner(r *http.Request) string {
	return auth.SessionFrom(r.Context()).User
}

// Save handles POST /saveProject: the single upsert path for both
// creation and update.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = h.defaultOrigin
	}

	err := h.svc.Save(r.Context(),
		owner(r),
		r.PostFormValue("ProjectName"),
		r.PostFormValue("SourceCode"),
		r.PostFormValue("Media"),
		origin,
	)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// List handles GET /getProjectList for the session user's own projects,
// public or not.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context(), owner(r))
	if err != nil {
		wire.WriteError(w, err)
		return
	}

	records := make([]wire.Record, len(projects))
	for i, p := range projects {
		records[i] = wire.Record{
			{Key: "ProjectName", Value: p.Name},
			{Key: "Updated", Value: p.Updated.UTC().Format(updatedFormat)},
			{Key: "Notes", Value: p.Notes},
			{Key: "Public", Value: strconv.FormatBool(p.Public)},
			{Key: "Thumbnail", Value: p.Thumbnail},
		}
	}
	w.Write([]byte(wire.EncodeList(records)))
}

// GetRaw handles POST /getRawProject: the full payload of the session
// user's own project, exact owner match.
func (h *Handler) GetRaw(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.GetRaw(r.Context(), owner(r), r.PostFormValue("ProjectName"))
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	w.Write([]byte(data))
}

// Delete handles POST /deleteProject. Idempotent.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), owner(r), r.PostFormValue("ProjectName")); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Publish handles POST /publishProject.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Publish(r.Context(), owner(r), r.PostFormValue("ProjectName")); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Unpublish handles POST /unpublishProject.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unpublish(r.Context(), owner(r), r.PostFormValue("ProjectName")); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RawPublic handles GET /RawPublic without a session: any public project
// by (case-insensitive) owner and exact name.
func (h *Handler) RawPublic(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.GetPublicRaw(r.Context(),
		r.URL.Query().Get("Username"),
		r.URL.Query().Get("ProjectName"),
	)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	w.Write([]byte(data))
}

// PublicProjects handles GET /PublicProjects: the paged, searchable
// gallery listing.
func (h *Handler) PublicProjects(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	search := r.URL.Query().Get("search")

	projects, err := h.svc.ListPublic(r.Context(), page, search)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	h.log.Debug("public projects", "page", page, "search", search, "count", len(projects))

	records := make([]wire.Record, len(projects))
	for i, p := range projects {
		records[i] = wire.Record{
			{Key: "ProjectName", Value: p.Name},
			{Key: "Updated", Value: p.Updated.UTC().Format(updatedFormat)},
			{Key: "Notes", Value: p.Notes},
			{Key: "User", Value: p.User},
			{Key: "Origin", Value: p.Origin},
			{Key: "Thumbnail", Value: p.Thumbnail},
		}
	}
	w.Write([]byte(wire.EncodeList(records)))
}
