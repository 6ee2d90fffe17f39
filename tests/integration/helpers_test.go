//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/statusloops/statusloops/internal/testutil"
	"github.com/stretchr/testify/require"
)

// createTestPage creates a status page and returns its ID and slug.
func createTestPage(t *testing.T, client *testutil.Client, name string) (id, slug string) {
	t.Helper()

	slug = testutil.RandomSlug("page")
	resp, err := client.POST("/api/v1/pages", map[string]interface{}{
		"name": name,
		"slug": slug,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	t.Cleanup(func() {
		resp, err := newTestClientWithoutValidation().DELETE("/api/v1/pages/" + slug)
		if err == nil {
			_ = resp.Body.Close()
		}
	})

	return result.Data.ID, slug
}

// createTestComponent creates a component on the given page.
func createTestComponent(t *testing.T, client *testutil.Client, pageSlug, name string) (id string) {
	t.Helper()

	resp, err := client.POST("/api/v1/pages/"+pageSlug+"/components", map[string]interface{}{
		"name": name,
		"slug": testutil.RandomSlug("component"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// createTestIncident opens an incident on the given page.
func createTestIncident(t *testing.T, client *testutil.Client, pageSlug, title, severity string, componentIDs ...string) (id string) {
	t.Helper()

	payload := map[string]interface{}{
		"title":    title,
		"severity": severity,
	}
	if len(componentIDs) > 0 {
		payload["component_ids"] = componentIDs
	}

	resp, err := client.POST("/api/v1/pages/"+pageSlug+"/incidents", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// appendUpdate appends an incident update and returns the response.
func appendUpdate(t *testing.T, client *testutil.Client, incidentID, status, message string) *http.Response {
	t.Helper()

	resp, err := client.POST("/api/v1/incidents/"+incidentID+"/updates", map[string]interface{}{
		"status":  status,
		"message": message,
	})
	require.NoError(t, err)
	return resp
}
