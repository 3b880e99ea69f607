package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

// RESTConfig configures the REST directory client.
type RESTConfig struct {
	// BaseURL is the upstream API root, e.g. "https://directory.example.com/api/v1".
	BaseURL string
	// Token is the bot token sent on every request.
	Token string
	// Timeout bounds each upstream call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout is the per-call deadline when RESTConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// RESTClient implements guild.Directory over the upstream HTTP API.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     *logrus.Entry
}

// NewRESTClient builds a REST directory client.
func NewRESTClient(cfg RESTConfig) (*RESTClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directory base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &RESTClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "directory.rest"),
	}, nil
}

// Upstream wire representations. The upstream speaks numeric channel type
// codes and numeric overwrite principal types; both are converted to the
// closed domain variants at this boundary so nothing downstream can mistake
// an unrecognized code for a category.
type wireRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       *int   `json:"color"`
	Permissions string `json:"permissions"`
	Position    int    `json:"position"`
}

type wireOverwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"` // 0 = role, 1 = member
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

type wireChannel struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       int             `json:"type"`
	ParentID   string          `json:"parent_id"`
	Position   int             `json:"position"`
	Overwrites []wireOverwrite `json:"permission_overwrites"`
}

// Upstream numeric channel type codes.
const (
	wireTypeText         = 0
	wireTypeVoice        = 2
	wireTypeCategory     = 4
	wireTypeAnnouncement = 5
	wireTypeStage        = 13
	wireTypeForum        = 15
)

func kindFromWire(code int) guild.ChannelKind {
	switch code {
	case wireTypeCategory:
		return guild.KindCategory
	case wireTypeText:
		return guild.KindText
	case wireTypeVoice:
		return guild.KindVoice
	case wireTypeAnnouncement:
		return guild.KindAnnouncement
	case wireTypeStage:
		return guild.KindStage
	case wireTypeForum:
		return guild.KindForum
	default:
		return guild.KindUnknown
	}
}

func (r wireRole) toDomain() (guild.Role, error) {
	perms, err := permissions.Parse(r.Permissions)
	if err != nil {
		// Upstream always sends decimal strings; a blank field shows up in
		// older payloads and means "no permissions".
		if r.Permissions == "" {
			perms = 0
		} else {
			return guild.Role{}, err
		}
	}
	return guild.Role{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		Permissions: perms,
		Position:    r.Position,
	}, nil
}

func (c wireChannel) toDomain() (guild.Channel, []guild.Overwrite) {
	ch := guild.Channel{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     kindFromWire(c.Type),
		ParentID: c.ParentID,
		Position: c.Position,
	}
	ows := make([]guild.Overwrite, 0, len(c.Overwrites))
	for _, ow := range c.Overwrites {
		ptype := guild.PrincipalRole
		if ow.Type == 1 {
			ptype = guild.PrincipalMember
		}
		allow, err := permissions.Parse(ow.Allow)
		if err != nil {
			allow = 0
		}
		deny, err := permissions.Parse(ow.Deny)
		if err != nil {
			deny = 0
		}
		ows = append(ows, guild.Overwrite{
			ChannelID:     c.ID,
			PrincipalType: ptype,
			PrincipalID:   ow.ID,
			Allow:         allow,
			Deny:          deny,
		})
	}
	return ch, ows
}

// do issues one upstream call and decodes a JSON response into out (out may
// be nil for empty responses). Classification: 404 maps to guild.ErrNotFound,
// other 4xx to guild.ErrRejected carrying the upstream message, transport
// errors and 5xx to guild.ErrUnavailable.
func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Debug("upstream call failed")
		return fmt.Errorf("%w: %v", guild.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("upstream call")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", guild.ErrUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return guild.ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", guild.ErrRejected, upstreamMessage(resp.Body, resp.StatusCode))
	default:
		return fmt.Errorf("%w: upstream returned %d", guild.ErrUnavailable, resp.StatusCode)
	}
}

// upstreamMessage pulls the human-readable rejection reason out of an error
// body so it can be surfaced to the caller verbatim.
func upstreamMessage(body io.Reader, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("upstream returned %d", status)
}

// ListGuilds implements guild.Source.
func (c *RESTClient) ListGuilds(ctx context.Context) ([]guild.Guild, error) {
	var out []guild.Guild
	if err := c.do(ctx, http.MethodGet, "/guilds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot implements guild.Source: the guild record, roles, and channels
// (overwrites ride along on channels) are fetched concurrently and assembled
// into one point-in-time value.
func (c *RESTClient) Snapshot(ctx context.Context, guildID string) (*guild.Snapshot, error) {
	var (
		g        guild.Guild
		roles    []wireRole
		channels []wireChannel
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return c.do(ctx, http.MethodGet, "/guilds/"+guildID, nil, &g)
	})
	eg.Go(func() error {
		return c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/roles", nil, &roles)
	})
	eg.Go(func() error {
		return c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/channels", nil, &channels)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snap := &guild.Snapshot{Guild: g}
	for _, wr := range roles {
		role, err := wr.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: role %s: %v", guild.ErrUnavailable, wr.ID, err)
		}
		snap.Roles = append(snap.Roles, role)
	}
	for _, wc := range channels {
		ch, ows := wc.toDomain()
		snap.Channels = append(snap.Channels, ch)
		snap.Overwrites = append(snap.Overwrites, ows...)
	}
	return snap, nil
}

// GetRole implements guild.Directory.
func (c *RESTClient) GetRole(ctx context.Context, guildID, roleID string) (*guild.Role, error) {
	var wr wireRole
	if err := c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/roles/"+roleID, nil, &wr); err != nil {
		return nil, err
	}
	role, err := wr.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", guild.ErrUnavailable, err)
	}
	return &role, nil
}

// GetChannel implements guild.Directory.
func (c *RESTClient) GetChannel(ctx context.Context, guildID, channelID string) (*guild.Channel, error) {
	var wc wireChannel
	if err := c.do(ctx, http.MethodGet, "/guilds/"+guildID+"/channels/"+channelID, nil, &wc); err != nil {
		return nil, err
	}
	ch, _ := wc.toDomain()
	return &ch, nil
}

type roleParamsPayload struct {
	Name        *string `json:"name,omitempty"`
	Color       *int    `json:"color,omitempty"`
	Permissions *string `json:"permissions,omitempty"`
}

func encodeRoleParams(params guild.RoleParams) roleParamsPayload {
	p := roleParamsPayload{Name: params.Name, Color: params.Color}
	if params.Permissions != nil {
		s := params.Permissions.String()
		p.Permissions = &s
	}
	return p
}

// CreateRole implements guild.Directory.
func (c *RESTClient) CreateRole(ctx context.Context, guildID string, params guild.RoleParams) (*guild.Role, error) {
	var wr wireRole
	if err := c.do(ctx, http.MethodPost, "/guilds/"+guildID+"/roles", encodeRoleParams(params), &wr); err != nil {
		return nil, err
	}
	role, err := wr.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", guild.ErrUnavailable, err)
	}
	return &role, nil
}

// EditRole implements guild.Directory.
func (c *RESTClient) EditRole(ctx context.Context, guildID, roleID string, params guild.RoleParams) (*guild.Role, error) {
	var wr wireRole
	if err := c.do(ctx, http.MethodPatch, "/guilds/"+guildID+"/roles/"+roleID, encodeRoleParams(params), &wr); err != nil {
		return nil, err
	}
	role, err := wr.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", guild.ErrUnavailable, err)
	}
	return &role, nil
}

// DeleteRole implements guild.Directory.
func (c *RESTClient) DeleteRole(ctx context.Context, guildID, roleID string) error {
	return c.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/roles/"+roleID, nil, nil)
}

// SetRolePositions implements guild.Directory.
func (c *RESTClient) SetRolePositions(ctx context.Context, guildID string, positions []guild.RolePosition) error {
	payload := make([]map[string]any, 0, len(positions))
	for _, p := range positions {
		payload = append(payload, map[string]any{"id": p.RoleID, "position": p.Position})
	}
	return c.do(ctx, http.MethodPatch, "/guilds/"+guildID+"/roles", payload, nil)
}

// SetOverwrite implements guild.Directory.
func (c *RESTClient) SetOverwrite(ctx context.Context, guildID, channelID, roleID string, ow guild.Overwrite) error {
	payload := map[string]any{
		"type":  0, // role principal
		"allow": ow.Allow.String(),
		"deny":  ow.Deny.String(),
	}
	return c.do(ctx, http.MethodPut, "/guilds/"+guildID+"/channels/"+channelID+"/permissions/"+roleID, payload, nil)
}

// DeleteOverwrite implements guild.Directory.
func (c *RESTClient) DeleteOverwrite(ctx context.Context, guildID, channelID, roleID string) error {
	return c.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/channels/"+channelID+"/permissions/"+roleID, nil, nil)
}
