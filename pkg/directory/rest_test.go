package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

func newTestClient(t *testing.T, handler http.Handler) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewRESTClient(RESTConfig{BaseURL: srv.URL, Token: "test-token"})
	require.NoError(t, err)
	return client
}

func TestNewRESTClient_RequiresBaseURL(t *testing.T) {
	_, err := NewRESTClient(RESTConfig{})
	assert.Error(t, err)
}

func TestRESTClient_ListGuilds(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds", r.URL.Path)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]guild.Guild{{ID: "g1", Name: "One"}})
	}))

	guilds, err := client.ListGuilds(context.Background())
	require.NoError(t, err)
	require.Len(t, guilds, 1)
	assert.Equal(t, "g1", guilds[0].ID)
}

func TestRESTClient_SnapshotAssembly(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guilds/g1":
			json.NewEncoder(w).Encode(guild.Guild{ID: "g1", Name: "One"})
		case "/guilds/g1/roles":
			json.NewEncoder(w).Encode([]wireRole{
				{ID: "r1", Name: "admin", Permissions: "8", Position: 2},
			})
		case "/guilds/g1/channels":
			json.NewEncoder(w).Encode([]wireChannel{
				{ID: "cat", Name: "General", Type: wireTypeCategory, Position: 0},
				{ID: "c1", Name: "chat", Type: wireTypeText, ParentID: "cat", Position: 1, Overwrites: []wireOverwrite{
					{ID: "r1", Type: 0, Allow: "2048", Deny: "0"},
					{ID: "u9", Type: 1, Allow: "0", Deny: "1024"},
				}},
				{ID: "weird", Name: "future", Type: 99, Position: 2},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	snap, err := client.Snapshot(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, "One", snap.Guild.Name)
	require.Len(t, snap.Roles, 1)
	assert.Equal(t, permissions.Administrator, snap.Roles[0].Permissions)

	require.Len(t, snap.Channels, 3)
	assert.Equal(t, guild.KindCategory, snap.Channels[0].Kind)
	// An unrecognized upstream type code must not masquerade as anything known.
	assert.Equal(t, guild.KindUnknown, snap.Channels[2].Kind)

	require.Len(t, snap.Overwrites, 2)
	assert.Equal(t, guild.PrincipalRole, snap.Overwrites[0].PrincipalType)
	assert.Equal(t, guild.PrincipalMember, snap.Overwrites[1].PrincipalType)
}

func TestRESTClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"message":"Unknown Guild"}`, guild.ErrNotFound},
		{"forbidden", http.StatusForbidden, `{"message":"Missing Permissions"}`, guild.ErrRejected},
		{"bad request", http.StatusBadRequest, `{"message":"Invalid Form Body"}`, guild.ErrRejected},
		{"server error", http.StatusInternalServerError, ``, guild.ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			_, err := client.GetRole(context.Background(), "g1", "r1")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRESTClient_RejectionDetailSurfaced(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Missing Permissions"}`))
	}))

	err := client.DeleteRole(context.Background(), "g1", "r1")
	require.Error(t, err)
	assert.ErrorIs(t, err, guild.ErrRejected)
	assert.Contains(t, err.Error(), "Missing Permissions")
}

func TestRESTClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client, err := NewRESTClient(RESTConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ListGuilds(context.Background())
	assert.ErrorIs(t, err, guild.ErrUnavailable)
}

func TestRESTClient_SetOverwritePayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/guilds/g1/channels/c1/permissions/r1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.SetOverwrite(context.Background(), "g1", "c1", "r1", guild.Overwrite{
		Allow: permissions.SendMessages,
		Deny:  permissions.Connect,
	})
	require.NoError(t, err)
	assert.Equal(t, "2048", got["allow"])
	assert.Equal(t, "1048576", got["deny"])
}

func TestRESTClient_SetRolePositionsPayload(t *testing.T) {
	var got []map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	}))

	err := client.SetRolePositions(context.Background(), "g1", []guild.RolePosition{
		{RoleID: "r1", Position: 3},
		{RoleID: "r2", Position: 1},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0]["id"])
	assert.Equal(t, float64(3), got[0]["position"])
}
