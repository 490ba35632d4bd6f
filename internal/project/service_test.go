package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapcloud/snapcloud-server/internal/models"
)

type memRepo struct {
	mu       sync.Mutex
	projects map[string]*models.Project // key: user + "\x00" + name
	order    []string
}

func newMemRepo() *memRepo {
	return &memRepo{projects: map[string]*models.Project{}}
}

func key(owner, name string) string { return owner + "\x00" + name }

func (r *memRepo) Upsert(_ context.Context, owner, name string, fields models.ProjectFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(owner, name)
	p, ok := r.projects[k]
	if !ok {
		p = &models.Project{User: owner, Name: name, Public: false}
		r.projects[k] = p
		r.order = append(r.order, k)
	}
	p.SnapData = fields.SnapData
	p.Notes = fields.Notes
	p.Thumbnail = fields.Thumbnail
	p.Origin = fields.Origin
	p.Updated = fields.Updated
	return nil
}

func (r *memRepo) Delete(_ context.Context, owner, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(owner, name)
	if _, ok := r.projects[k]; ok {
		delete(r.projects, k)
		for i, o := range r.order {
			if o == k {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (r *memRepo) SetPublic(_ context.Context, owner, name string, public bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[key(owner, name)]
	if !ok {
		return models.ErrNotFound
	}
	p.Public = public
	return nil
}

func (r *memRepo) ListByOwner(_ context.Context, owner string) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Project
	for _, k := range r.order {
		if p := r.projects[k]; p.User == owner {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, owner, name string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[key(owner, name)]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetPublic(_ context.Context, owner, name string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if strings.EqualFold(p.User, owner) && p.Name == name && p.Public {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) ListPublic(_ context.Context, q Query, page int) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Project
	for _, k := range r.order {
		if p := r.projects[k]; p.Public && q.Matches(p) {
			matched = append(matched, *p)
		}
	}
	lo := page * PageSize
	if lo >= len(matched) {
		return nil, nil
	}
	hi := lo + PageSize
	if hi > len(matched) {
		hi = len(matched)
	}
	return matched[lo:hi], nil
}

type memArchive struct {
	mu   sync.Mutex
	keys []string
}

func (a *memArchive) Put(_ context.Context, key string, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sourceXML = `<project name="pong"><notes>my notes</notes><thumbnail>data:thumb</thumbnail></project>`

func TestSaveInsertsWithDefaults(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "<media/>", "snap.example"))

	p, err := repo.Get(ctx, "alice", "pong")
	require.NoError(t, err)
	assert.False(t, p.Public)
	assert.Equal(t, "my notes", p.Notes)
	assert.Equal(t, "data:thumb", p.Thumbnail)
	assert.Equal(t, "snap.example", p.Origin)
	assert.Equal(t, "<snapdata>"+sourceXML+"<media/></snapdata>", p.SnapData)
}

func TestSaveIsIdempotentAndKeepsVisibility(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "", ""))
	require.NoError(t, svc.Publish(ctx, "alice", "pong"))

	// A later save must not silently unpublish.
	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "", ""))
	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "", ""))

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Public)
}

func TestSaveRejectsMalformedSource(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	err := svc.Save(ctx, "alice", "pong", "<project><notes>unclosed", "", "")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	// Rejected before any write.
	_, err = repo.Get(ctx, "alice", "pong")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSaveRequiresNameAndSource(t *testing.T) {
	svc := NewService(newMemRepo(), nil, testLogger())
	ctx := context.Background()
	assert.ErrorIs(t, svc.Save(ctx, "alice", "", sourceXML, "", ""), models.ErrInvalidRequest)
	assert.ErrorIs(t, svc.Save(ctx, "alice", "pong", "", "", ""), models.ErrInvalidRequest)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "", ""))
	require.NoError(t, svc.Delete(ctx, "alice", "pong"))
	require.NoError(t, svc.Delete(ctx, "alice", "pong"))
}

func TestDeleteArchivesPayload(t *testing.T) {
	repo := newMemRepo()
	archive := &memArchive{}
	svc := NewService(repo, archive, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "alice", "pong", sourceXML, "", ""))
	require.NoError(t, svc.Delete(ctx, "alice", "pong"))

	require.Len(t, archive.keys, 1)
	assert.True(t, strings.HasPrefix(archive.keys[0], "alice/pong/"))

	// Deleting a missing project archives nothing.
	require.NoError(t, svc.Delete(ctx, "alice", "pong"))
	assert.Len(t, archive.keys, 1)
}

func TestPublishNonexistentCreatesNothing(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Publish(ctx, "alice", "ghost"), models.ErrNotFound)
	assert.ErrorIs(t, svc.Unpublish(ctx, "alice", "ghost"), models.ErrNotFound)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetPublicRawOwnerCaseInsensitive(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "Alice", "pong", sourceXML, "", ""))

	// Not public yet.
	_, err := svc.GetPublicRaw(ctx, "alice", "pong")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.Publish(ctx, "Alice", "pong"))

	data, err := svc.GetPublicRaw(ctx, "alice", "pong")
	require.NoError(t, err)
	assert.Contains(t, data, "<snapdata>")

	// Private fetch stays exact-match on the owner.
	_, err = svc.GetRaw(ctx, "alice", "pong")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListPublicPagination(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	for i := 0; i < PageSize+5; i++ {
		name := fmt.Sprintf("proj-%03d", i)
		require.NoError(t, svc.Save(ctx, "alice", name, sourceXML, "", ""))
		require.NoError(t, svc.Publish(ctx, "alice", name))
	}

	page0, err := svc.ListPublic(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, page0, PageSize)

	page1, err := svc.ListPublic(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, page1, 5)

	// Page 1 starts exactly PageSize records past page 0.
	assert.Equal(t, fmt.Sprintf("proj-%03d", PageSize), page1[0].Name)

	// Negative pages clamp to the first.
	pageNeg, err := svc.ListPublic(ctx, -3, "")
	require.NoError(t, err)
	assert.Equal(t, page0, pageNeg)
}

func TestListPublicSearch(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, "alice", "space game", sourceXML, "", ""))
	require.NoError(t, svc.Publish(ctx, "alice", "space game"))
	require.NoError(t, svc.Save(ctx, "bob", "space race", sourceXML, "", ""))
	require.NoError(t, svc.Publish(ctx, "bob", "space race"))

	both, err := svc.ListPublic(ctx, 0, "space")
	require.NoError(t, err)
	assert.Len(t, both, 2)

	only, err := svc.ListPublic(ctx, 0, "name:space user:bob")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "bob", only[0].User)
}
