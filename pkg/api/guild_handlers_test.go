package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordhq/concord/pkg/guild"
)

func TestListGuilds(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds", nil))

	require.Equal(t, 200, rec.Code)

	var guilds []guild.Guild
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guilds))
	require.Len(t, guilds, 1)
	assert.Equal(t, "g1", guilds[0].ID)
	assert.Equal(t, "Test Guild", guilds[0].Name)
}

func TestListGuilds_DirectoryDown(t *testing.T) {
	srv, dir := newTestServer()
	dir.listErr = guild.ErrUnavailable

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds", nil))

	assert.Equal(t, 500, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "unavailable")
}

func TestGetGuild(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds/g1", nil))

	require.Equal(t, 200, rec.Code)

	var detail struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Channels []struct {
			ID       *string `json:"id"`
			Name     string  `json:"name"`
			Channels []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"channels"`
			Overwrites []struct {
				RoleID string `json:"role_id"`
				Allow  string `json:"allow"`
				Deny   string `json:"deny"`
			} `json:"overwrites"`
		} `json:"channels"`
		Roles []struct {
			ID          string `json:"id"`
			Permissions string `json:"permissions"`
			Position    int    `json:"position"`
		} `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))

	assert.Equal(t, "g1", detail.ID)
	assert.Equal(t, "Test Guild", detail.Name)

	// Real categories first in position order, uncategorized bucket last
	// with a null id.
	require.Len(t, detail.Channels, 3)
	require.NotNil(t, detail.Channels[0].ID)
	assert.Equal(t, "cat1", *detail.Channels[0].ID)
	assert.Equal(t, "cat2", *detail.Channels[1].ID)
	assert.Nil(t, detail.Channels[2].ID)
	assert.Equal(t, "No Category", detail.Channels[2].Name)
	require.Len(t, detail.Channels[2].Channels, 1)
	assert.Equal(t, "ch3", detail.Channels[2].Channels[0].ID)

	// Roles are seniority-first; bitfields are decimal strings.
	require.Len(t, detail.Roles, 2)
	assert.Equal(t, "r1", detail.Roles[0].ID)
	assert.Equal(t, "8", detail.Roles[0].Permissions)
	assert.Equal(t, "r2", detail.Roles[1].ID)
	assert.Equal(t, "1024", detail.Roles[1].Permissions)
}

// Member-scoped overwrites never leak into the projection.
func TestGetGuild_FiltersMemberOverwrites(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds/g1", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"role_id":"r1"`)
	assert.NotContains(t, body, "u1")
}

func TestGetGuild_NotFound(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds/nope", nil))
	assert.Equal(t, 404, rec.Code)
}
