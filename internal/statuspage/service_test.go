package statuspage

import (
	"context"
	"testing"
	"time"

	"github.com/statusloops/statusloops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	pages map[string]*domain.StatusPage
	seq   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{pages: make(map[string]*domain.StatusPage)}
}

func (m *mockRepository) CreatePage(_ context.Context, page *domain.StatusPage) error {
	for _, p := range m.pages {
		if p.Slug == page.Slug {
			return ErrSlugTaken
		}
	}
	m.seq++
	page.ID = "page-" + page.Slug
	page.CreatedAt = time.Now()
	page.UpdatedAt = page.CreatedAt
	copied := *page
	m.pages[page.ID] = &copied
	return nil
}

func (m *mockRepository) GetPageBySlug(_ context.Context, slug string) (*domain.StatusPage, error) {
	for _, p := range m.pages {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrPageNotFound
}

func (m *mockRepository) GetPageByID(_ context.Context, id string) (*domain.StatusPage, error) {
	p, ok := m.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) ListPages(_ context.Context) ([]domain.StatusPage, error) {
	list := make([]domain.StatusPage, 0, len(m.pages))
	for _, p := range m.pages {
		list = append(list, *p)
	}
	return list, nil
}

func (m *mockRepository) DeletePage(_ context.Context, id string) error {
	if _, ok := m.pages[id]; !ok {
		return ErrPageNotFound
	}
	delete(m.pages, id)
	return nil
}

// mockComponentLister and mockIncidentLister return canned data per
// page id.
type mockComponentLister struct {
	byPage map[string][]domain.Component
}

func (m *mockComponentLister) ListByPage(_ context.Context, pageID string) ([]domain.Component, error) {
	return m.byPage[pageID], nil
}

type mockIncidentLister struct {
	active   map[string][]domain.Incident
	resolved map[string][]domain.Incident
	limit    int
}

func (m *mockIncidentLister) ListActiveByPage(_ context.Context, pageID string) ([]domain.Incident, error) {
	return m.active[pageID], nil
}

func (m *mockIncidentLister) ListRecentResolved(_ context.Context, pageID string, limit int) ([]domain.Incident, error) {
	m.limit = limit
	list := m.resolved[pageID]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func newTestService() (*Service, *mockRepository, *mockComponentLister, *mockIncidentLister) {
	repo := newMockRepository()
	components := &mockComponentLister{byPage: make(map[string][]domain.Component)}
	incidents := &mockIncidentLister{
		active:   make(map[string][]domain.Incident),
		resolved: make(map[string][]domain.Incident),
	}
	return NewService(repo, components, incidents), repo, components, incidents
}

func TestCreatePage_DerivesSlug(t *testing.T) {
	svc, _, _, _ := newTestService()

	page, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme Cloud"})
	require.NoError(t, err)
	assert.Equal(t, "acme-cloud", page.Slug)
}

func TestCreatePage_SlugTaken(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	_, err = svc.CreatePage(context.Background(), CreatePageInput{Name: "Other", Slug: "acme"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestPageIDBySlug(t *testing.T) {
	svc, _, _, _ := newTestService()

	page, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	id, err := svc.PageIDBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, page.ID, id)

	_, err = svc.PageIDBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestOverview(t *testing.T) {
	svc, _, components, incidents := newTestService()

	page, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	components.byPage[page.ID] = []domain.Component{
		{ID: "c1", PageID: page.ID, Name: "API", Status: domain.ComponentStatusMajorOutage},
	}
	incidents.active[page.ID] = []domain.Incident{
		{ID: "i1", PageID: page.ID, Severity: domain.SeverityMinor, Status: domain.IncidentStatusMonitoring},
	}
	resolvedAt := time.Now()
	incidents.resolved[page.ID] = []domain.Incident{
		{ID: "i2", PageID: page.ID, Severity: domain.SeverityMajor, Status: domain.IncidentStatusResolved, ResolvedAt: &resolvedAt},
	}

	overview, err := svc.Overview(context.Background(), "acme")
	require.NoError(t, err)

	// Overall status derives from active incidents only. The component
	// outage does not feed it.
	assert.Equal(t, domain.PageStatusDegraded, overview.OverallStatus)
	assert.Len(t, overview.Components, 1)
	assert.Len(t, overview.ActiveIncidents, 1)
	assert.Len(t, overview.RecentIncidents, 1)
	assert.Equal(t, RecentIncidentLimit, incidents.limit)
}

func TestOverview_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Overview(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestResolvePage(t *testing.T) {
	svc, _, _, _ := newTestService()

	page, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	id, snapshot, err := svc.ResolvePage(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, page.ID, id)

	overview, ok := snapshot.(*Overview)
	require.True(t, ok)
	assert.Equal(t, domain.PageStatusOperational, overview.OverallStatus)
}

func TestDeletePage(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.CreatePage(context.Background(), CreatePageInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePage(context.Background(), "acme"))
	assert.Empty(t, repo.pages)

	err = svc.DeletePage(context.Background(), "acme")
	assert.ErrorIs(t, err, ErrPageNotFound)
}
