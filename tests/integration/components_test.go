//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/statusloops/statusloops/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentStatusUpdate(t *testing.T) {
	client := newTestClient(t)

	_, slug := createTestPage(t, client, "Acme Cloud")
	componentID := createTestComponent(t, client, slug, "API Gateway")

	resp, err := client.PATCH("/api/v1/components/"+componentID+"/status", map[string]interface{}{
		"status": "degraded",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var component struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &component)
	assert.Equal(t, componentID, component.Data.ID)
	assert.Equal(t, "degraded", component.Data.Status)
}

func TestComponentStatusUpdate_InvalidStatus(t *testing.T) {
	client := newTestClient(t)

	_, slug := createTestPage(t, client, "Acme Cloud")
	componentID := createTestComponent(t, client, slug, "API")

	resp, err := newTestClientWithoutValidation().PATCH("/api/v1/components/"+componentID+"/status", map[string]interface{}{
		"status": "on-fire",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComponentStatusUpdate_NotFound(t *testing.T) {
	resp, err := newTestClientWithoutValidation().PATCH(
		"/api/v1/components/00000000-0000-0000-0000-000000000000/status",
		map[string]interface{}{"status": "degraded"},
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComponentList_OrderedByDisplayOrder(t *testing.T) {
	client := newTestClient(t)

	_, slug := createTestPage(t, client, "Acme Cloud")

	for _, c := range []struct {
		name  string
		order int
	}{
		{"Zeta", 1},
		{"Alpha", 0},
	} {
		resp, err := client.POST("/api/v1/pages/"+slug+"/components", map[string]interface{}{
			"name":  c.name,
			"slug":  testutil.RandomSlug("component"),
			"order": c.order,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := client.GET("/api/v1/pages/" + slug + "/components")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Alpha", list.Data[0].Name)
	assert.Equal(t, "Zeta", list.Data[1].Name)
}
