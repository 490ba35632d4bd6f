package project

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"time"

	"github.com/snapcloud/snapcloud-server/internal/models"
)

// PageSize is the fixed public-gallery page size.
const PageSize = 100

// Repo is the persistence contract for projects. Save is an upsert;
// SetPublic is a conditioned update that must not create documents.
type Repo interface {
	// Upsert inserts or updates (owner, name), applying fields
	// unconditionally and defaulting public=false only on insert.
	Upsert(ctx context.Context, owner, name string, fields models.ProjectFields) error

	// Delete removes (owner, name); removing a missing project is not an
	// error.
	Delete(ctx context.Context, owner, name string) error

	// SetPublic flips visibility. models.ErrNotFound when nothing matched.
	SetPublic(ctx context.Context, owner, name string, public bool) error

	// ListByOwner returns every project of the owner, public or not.
	ListByOwner(ctx context.Context, owner string) ([]models.Project, error)

	// Get fetches the owner's project, exact owner match.
	// models.ErrNotFound when absent.
	Get(ctx context.Context, owner, name string) (*models.Project, error)

	// GetPublic fetches a public project; the owner match is
	// case-insensitive (gallery links lowercase the name).
	GetPublic(ctx context.Context, owner, name string) (*models.Project, error)

	// ListPublic returns the page'th slice of 100 public projects
	// matching the query, offset-paged.
	ListPublic(ctx context.Context, q Query, page int) ([]models.Project, error)
}

// Archive receives a snapshot of a payload before destructive operations.
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
}

// snapSource is the slice of the project XML the server cares about:
// notes and thumbnail are lifted into queryable fields.
type snapSource struct {
	XMLName   xml.Name `xml:"project"`
	Notes     string   `xml:"notes"`
	Thumbnail string   `xml:"thumbnail"`
}

// Service implements project save/visibility/search semantics.
type Service struct {
	repo    Repo
	archive Archive // optional
	log     *slog.Logger
}

func NewService(repo Repo, archive Archive, log *slog.Logger) *Service {
	return &Service{repo: repo, archive: archive, log: log}
}

// Save upserts (owner, name). Creation and update share this one path;
// the public flag defaults on first insert and is never reset by a save.
// The source payload must be a well-formed project document or the save
// is rejected before any write.
func (s *Service) Save(ctx context.Context, owner, name, source, media, origin string) error {
	if name == "" || source == "" {
		return fmt.Errorf("save project: %w", models.ErrInvalidRequest)
	}

	var parsed snapSource
	if err := xml.Unmarshal([]byte(source), &parsed); err != nil {
		return fmt.Errorf("save project %q: bad source: %w", name, models.ErrInvalidRequest)
	}

	fields := models.ProjectFields{
		SnapData:  "<snapdata>" + source + media + "</snapdata>",
		Notes:     parsed.Notes,
		Thumbnail: parsed.Thumbnail,
		Origin:    origin,
		Updated:   time.Now(),
	}
	if err := s.repo.Upsert(ctx, owner, name, fields); err != nil {
		return fmt.Errorf("save project %q: %w", name, err)
	}
	s.log.Info("project saved", "user", owner, "project", name)
	return nil
}

// Delete removes the project, snapshotting the payload to the archive
// first when one is configured. Idempotent: deleting a project that does
// not exist succeeds.
func (s *Service) Delete(ctx context.Context, owner, name string) error {
	if name == "" {
		return fmt.Errorf("delete project: %w", models.ErrInvalidRequest)
	}
	if s.archive != nil {
		if p, err := s.repo.Get(ctx, owner, name); err == nil {
			key := fmt.Sprintf("%s/%s/%d.xml", owner, name, time.Now().Unix())
			if err := s.archive.Put(ctx, key, []byte(p.SnapData)); err != nil {
				s.log.Error("archive failed", "user", owner, "project", name, "err", err)
			}
		}
	}
	if err := s.repo.Delete(ctx, owner, name); err != nil {
		return fmt.Errorf("delete project %q: %w", name, err)
	}
	s.log.Info("project deleted", "user", owner, "project", name)
	return nil
}

// Publish marks an existing project public. Never creates one.
func (s *Service) Publish(ctx context.Context, owner, name string) error {
	return s.setPublic(ctx, owner, name, true)
}

// Unpublish hides a project from the gallery.
func (s *Service) Unpublish(ctx context.Context, owner, name string) error {
	return s.setPublic(ctx, owner, name, false)
}

func (s *Service) setPublic(ctx context.Context, owner, name string, public bool) error {
	if name == "" {
		return fmt.Errorf("set public: %w", models.ErrInvalidRequest)
	}
	if err := s.repo.SetPublic(ctx, owner, name, public); err != nil {
		return fmt.Errorf("set public %q: %w", name, err)
	}
	return nil
}

// List returns all of the owner's projects.
func (s *Service) List(ctx context.Context, owner string) ([]models.Project, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// GetRaw returns the owner's own payload, exact owner match.
func (s *Service) GetRaw(ctx context.Context, owner, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("get project: %w", models.ErrInvalidRequest)
	}
	p, err := s.repo.Get(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("get project %q: %w", name, err)
	}
	return p.SnapData, nil
}

// GetPublicRaw returns a public payload; the owner lookup is
// case-insensitive while the project name stays exact.
func (s *Service) GetPublicRaw(ctx context.Context, owner, name string) (string, error) {
	if owner == "" || name == "" {
		return "", fmt.Errorf("get public project: %w", models.ErrInvalidRequest)
	}
	p, err := s.repo.GetPublic(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("get public project %q: %w", name, err)
	}
	return p.SnapData, nil
}

// ListPublic returns one gallery page. Pagination is offset-based, so a
// page is only stable while the collection is not concurrently modified.
func (s *Service) ListPublic(ctx context.Context, page int, search string) ([]models.Project, error) {
	if page < 0 {
		page = 0
	}
	return s.repo.ListPublic(ctx, ParseSearch(search), page)
}
