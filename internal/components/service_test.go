package components

import (
	"context"
	"testing"
	"time"

	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	components map[string]*domain.Component
	created    []*domain.Component
}

func newMockRepository() *mockRepository {
	return &mockRepository{components: make(map[string]*domain.Component)}
}

func (m *mockRepository) CreateComponent(_ context.Context, c *domain.Component) error {
	c.ID = "component-" + c.Slug
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.components[c.ID] = c
	m.created = append(m.created, c)
	return nil
}

func (m *mockRepository) GetComponentByID(_ context.Context, id string) (*domain.Component, error) {
	c, ok := m.components[id]
	if !ok {
		return nil, ErrComponentNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) ListComponentsByPage(_ context.Context, pageID string) ([]domain.Component, error) {
	var list []domain.Component
	for _, c := range m.components {
		if c.PageID == pageID {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (m *mockRepository) UpdateComponent(_ context.Context, c *domain.Component) error {
	if _, ok := m.components[c.ID]; !ok {
		return ErrComponentNotFound
	}
	c.UpdatedAt = time.Now()
	copied := *c
	m.components[c.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateComponentStatus(_ context.Context, id string, status domain.ComponentStatus) (*domain.Component, error) {
	c, ok := m.components[id]
	if !ok {
		return nil, ErrComponentNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (m *mockRepository) DeleteComponent(_ context.Context, id string) error {
	if _, ok := m.components[id]; !ok {
		return ErrComponentNotFound
	}
	delete(m.components, id)
	return nil
}

// mockBroadcaster records published events.
type mockBroadcaster struct {
	events []realtime.Event
}

func (m *mockBroadcaster) Publish(_ string, ev realtime.Event) {
	m.events = append(m.events, ev)
}

func newService() (*Service, *mockRepository, *mockBroadcaster) {
	repo := newMockRepository()
	broadcaster := &mockBroadcaster{}
	return NewService(repo, broadcaster), repo, broadcaster
}

func TestCreateComponent_DefaultsAndSlug(t *testing.T) {
	svc, _, _ := newService()

	component, err := svc.CreateComponent(context.Background(), CreateComponentInput{
		PageID: "page-1",
		Name:   "API Gateway",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComponentStatusOperational, component.Status)
	assert.Equal(t, "api-gateway", component.Slug)
	assert.Equal(t, "page-1", component.PageID)
}

func TestCreateComponent_InvalidStatus(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.CreateComponent(context.Background(), CreateComponentInput{
		PageID: "page-1",
		Name:   "API",
		Status: domain.ComponentStatus("on-fire"),
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, repo.created)
}

func TestUpdateComponentStatus(t *testing.T) {
	svc, _, broadcaster := newService()

	component, err := svc.CreateComponent(context.Background(), CreateComponentInput{
		PageID: "page-1",
		Name:   "API",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateComponentStatus(context.Background(), component.ID, domain.ComponentStatusMajorOutage)
	require.NoError(t, err)
	assert.Equal(t, domain.ComponentStatusMajorOutage, updated.Status)

	require.Len(t, broadcaster.events, 1)
	ev := broadcaster.events[0]
	assert.Equal(t, realtime.EventComponentStatusChanged, ev.Type)
	assert.Equal(t, "page-1", ev.PageID)

	payload, ok := ev.Payload.(realtime.ComponentStatusPayload)
	require.True(t, ok)
	assert.Equal(t, component.ID, payload.ComponentID)
	assert.Equal(t, domain.ComponentStatusMajorOutage, payload.Status)
}

func TestUpdateComponentStatus_NotFound(t *testing.T) {
	svc, _, broadcaster := newService()

	_, err := svc.UpdateComponentStatus(context.Background(), "missing", domain.ComponentStatusDegraded)
	assert.ErrorIs(t, err, ErrComponentNotFound)
	assert.Empty(t, broadcaster.events, "no event may be emitted for a failed update")
}

func TestUpdateComponentStatus_InvalidStatus(t *testing.T) {
	svc, _, broadcaster := newService()

	component, err := svc.CreateComponent(context.Background(), CreateComponentInput{
		PageID: "page-1",
		Name:   "API",
	})
	require.NoError(t, err)

	_, err = svc.UpdateComponentStatus(context.Background(), component.ID, domain.ComponentStatus("maintenance"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, broadcaster.events)
}

func TestUpdateComponent_DoesNotTouchStatus(t *testing.T) {
	svc, _, broadcaster := newService()

	component, err := svc.CreateComponent(context.Background(), CreateComponentInput{
		PageID: "page-1",
		Name:   "API",
	})
	require.NoError(t, err)

	uptime := 99.95
	updated, err := svc.UpdateComponent(context.Background(), component.ID, UpdateComponentInput{
		Name:       "API v2",
		GroupLabel: "Core",
		Uptime:     &uptime,
	})
	require.NoError(t, err)

	assert.Equal(t, "API v2", updated.Name)
	assert.Equal(t, domain.ComponentStatusOperational, updated.Status)
	assert.Empty(t, broadcaster.events, "metadata updates do not emit status events")
}
