package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

// FixtureSource implements guild.Directory over fixture files, one guild per
// file. Reads serve deep copies of the in-memory state; mutations apply to
// that state so a demo panel round-trips, but nothing is written back to
// disk. Edits to the files themselves are picked up live.
type FixtureSource struct {
	dir     string
	watcher *fsnotify.Watcher
	log     *logrus.Entry

	mu     sync.RWMutex
	guilds map[string]*guild.Snapshot

	done chan struct{}
}

// fixtureFile is the on-disk guild document. Kind and principal type use the
// domain's string variants directly; bitfields are decimal strings.
type fixtureFile struct {
	Guild struct {
		ID   string `json:"id" yaml:"id"`
		Name string `json:"name" yaml:"name"`
	} `json:"guild" yaml:"guild"`
	Roles []struct {
		ID          string `json:"id" yaml:"id"`
		Name        string `json:"name" yaml:"name"`
		Color       *int   `json:"color" yaml:"color"`
		Permissions string `json:"permissions" yaml:"permissions"`
		Position    int    `json:"position" yaml:"position"`
	} `json:"roles" yaml:"roles"`
	Channels []struct {
		ID       string `json:"id" yaml:"id"`
		Name     string `json:"name" yaml:"name"`
		Kind     string `json:"kind" yaml:"kind"`
		ParentID string `json:"parent_id" yaml:"parent_id"`
		Position int    `json:"position" yaml:"position"`
	} `json:"channels" yaml:"channels"`
	Overwrites []struct {
		ChannelID     string `json:"channel_id" yaml:"channel_id"`
		PrincipalType string `json:"principal_type" yaml:"principal_type"`
		PrincipalID   string `json:"principal_id" yaml:"principal_id"`
		Allow         string `json:"allow" yaml:"allow"`
		Deny          string `json:"deny" yaml:"deny"`
	} `json:"overwrites" yaml:"overwrites"`
}

// NewFixtureSource loads every fixture in dir and starts watching it for
// changes. Close releases the watcher.
func NewFixtureSource(dir string) (*FixtureSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fixture watcher: %w", err)
	}

	s := &FixtureSource{
		dir:     dir,
		watcher: watcher,
		log:     logrus.WithField("component", "directory.fixtures"),
		guilds:  make(map[string]*guild.Snapshot),
		done:    make(chan struct{}),
	}

	if err := s.loadAll(); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch fixture dir: %w", err)
	}
	go s.watch()
	return s, nil
}

// Close stops the file watcher.
func (s *FixtureSource) Close() error {
	close(s.done)
	return s.watcher.Close()
}

func isFixture(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}

func (s *FixtureSource) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read fixture dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isFixture(entry.Name()) {
			continue
		}
		if err := s.loadFile(filepath.Join(s.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *FixtureSource) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", path, err)
	}

	var doc fixtureFile
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if doc.Guild.ID == "" {
		return fmt.Errorf("fixture %s: guild.id is required", path)
	}

	snap := &guild.Snapshot{
		Guild: guild.Guild{ID: doc.Guild.ID, Name: doc.Guild.Name},
	}
	for _, r := range doc.Roles {
		perms, perr := permissions.Parse(r.Permissions)
		if perr != nil && r.Permissions != "" {
			return fmt.Errorf("fixture %s: role %s: %w", path, r.ID, perr)
		}
		snap.Roles = append(snap.Roles, guild.Role{
			ID: r.ID, Name: r.Name, Color: r.Color, Permissions: perms, Position: r.Position,
		})
	}
	for _, c := range doc.Channels {
		snap.Channels = append(snap.Channels, guild.Channel{
			ID: c.ID, Name: c.Name, Kind: guild.ChannelKind(c.Kind), ParentID: c.ParentID, Position: c.Position,
		})
	}
	for _, ow := range doc.Overwrites {
		allow, _ := permissions.Parse(ow.Allow)
		deny, _ := permissions.Parse(ow.Deny)
		snap.Overwrites = append(snap.Overwrites, guild.Overwrite{
			ChannelID:     ow.ChannelID,
			PrincipalType: guild.PrincipalType(ow.PrincipalType),
			PrincipalID:   ow.PrincipalID,
			Allow:         allow,
			Deny:          deny,
		})
	}

	s.mu.Lock()
	s.guilds[snap.Guild.ID] = snap
	s.mu.Unlock()
	return nil
}

// watch applies fixture file edits to the in-memory state. A failed reload
// keeps the previous state; partial writes never become visible because the
// swap happens under the lock after a full decode.
func (s *FixtureSource) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !isFixture(event.Name) {
				continue
			}
			if err := s.loadFile(event.Name); err != nil {
				s.log.WithError(err).Warn("fixture reload failed, keeping previous state")
			} else {
				s.log.WithField("file", event.Name).Info("fixture reloaded")
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("fixture watcher error")
		}
	}
}

func copySnapshot(snap *guild.Snapshot) *guild.Snapshot {
	out := &guild.Snapshot{Guild: snap.Guild}
	out.Roles = append([]guild.Role(nil), snap.Roles...)
	for i, r := range out.Roles {
		if r.Color != nil {
			c := *r.Color
			out.Roles[i].Color = &c
		}
	}
	out.Channels = append([]guild.Channel(nil), snap.Channels...)
	out.Overwrites = append([]guild.Overwrite(nil), snap.Overwrites...)
	return out
}

// ListGuilds implements guild.Source. Output is ordered by guild ID so the
// listing is stable across calls.
func (s *FixtureSource) ListGuilds(ctx context.Context) ([]guild.Guild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]guild.Guild, 0, len(s.guilds))
	for _, snap := range s.guilds {
		out = append(out, snap.Guild)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Snapshot implements guild.Source.
func (s *FixtureSource) Snapshot(ctx context.Context, guildID string) (*guild.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.guilds[guildID]
	if !ok {
		return nil, guild.ErrNotFound
	}
	return copySnapshot(snap), nil
}

func (s *FixtureSource) snapshotLocked(guildID string) (*guild.Snapshot, error) {
	snap, ok := s.guilds[guildID]
	if !ok {
		return nil, guild.ErrNotFound
	}
	return snap, nil
}

// GetRole implements guild.Directory.
func (s *FixtureSource) GetRole(ctx context.Context, guildID, roleID string) (*guild.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range snap.Roles {
		if r.ID == roleID {
			role := r
			return &role, nil
		}
	}
	return nil, guild.ErrNotFound
}

// GetChannel implements guild.Directory.
func (s *FixtureSource) GetChannel(ctx context.Context, guildID, channelID string) (*guild.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return nil, err
	}
	for _, c := range snap.Channels {
		if c.ID == channelID {
			ch := c
			return &ch, nil
		}
	}
	return nil, guild.ErrNotFound
}

// CreateRole implements guild.Directory. New roles enter at the bottom of the
// hierarchy, matching upstream behavior.
func (s *FixtureSource) CreateRole(ctx context.Context, guildID string, params guild.RoleParams) (*guild.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return nil, err
	}

	role := guild.Role{ID: uuid.NewString(), Name: "new role", Position: 1}
	if params.Name != nil {
		role.Name = *params.Name
	}
	if params.Color != nil {
		c := *params.Color
		role.Color = &c
	}
	if params.Permissions != nil {
		role.Permissions = *params.Permissions
	}
	snap.Roles = append(snap.Roles, role)
	return &role, nil
}

// EditRole implements guild.Directory.
func (s *FixtureSource) EditRole(ctx context.Context, guildID, roleID string, params guild.RoleParams) (*guild.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return nil, err
	}
	for i := range snap.Roles {
		if snap.Roles[i].ID != roleID {
			continue
		}
		if params.Name != nil {
			snap.Roles[i].Name = *params.Name
		}
		if params.Color != nil {
			c := *params.Color
			snap.Roles[i].Color = &c
		}
		if params.Permissions != nil {
			snap.Roles[i].Permissions = *params.Permissions
		}
		role := snap.Roles[i]
		return &role, nil
	}
	return nil, guild.ErrNotFound
}

// DeleteRole implements guild.Directory.
func (s *FixtureSource) DeleteRole(ctx context.Context, guildID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return err
	}
	for i := range snap.Roles {
		if snap.Roles[i].ID == roleID {
			snap.Roles = append(snap.Roles[:i], snap.Roles[i+1:]...)
			return nil
		}
	}
	return guild.ErrNotFound
}

// SetRolePositions implements guild.Directory. Unknown role IDs are rejected
// whole: partial application would leave the fixture in a state the upstream
// service could never produce.
func (s *FixtureSource) SetRolePositions(ctx context.Context, guildID string, positions []guild.RolePosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(snap.Roles))
	for i, r := range snap.Roles {
		index[r.ID] = i
	}
	for _, p := range positions {
		if _, ok := index[p.RoleID]; !ok {
			return fmt.Errorf("%w: unknown role %s", guild.ErrRejected, p.RoleID)
		}
	}
	for _, p := range positions {
		snap.Roles[index[p.RoleID]].Position = p.Position
	}
	return nil
}

// SetOverwrite implements guild.Directory.
func (s *FixtureSource) SetOverwrite(ctx context.Context, guildID, channelID, roleID string, ow guild.Overwrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return err
	}
	if !channelExists(snap, channelID) {
		return guild.ErrNotFound
	}

	record := guild.Overwrite{
		ChannelID:     channelID,
		PrincipalType: guild.PrincipalRole,
		PrincipalID:   roleID,
		Allow:         ow.Allow,
		Deny:          ow.Deny,
	}
	for i := range snap.Overwrites {
		existing := snap.Overwrites[i]
		if existing.ChannelID == channelID && existing.PrincipalType == guild.PrincipalRole && existing.PrincipalID == roleID {
			snap.Overwrites[i] = record
			return nil
		}
	}
	snap.Overwrites = append(snap.Overwrites, record)
	return nil
}

// DeleteOverwrite implements guild.Directory.
func (s *FixtureSource) DeleteOverwrite(ctx context.Context, guildID, channelID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshotLocked(guildID)
	if err != nil {
		return err
	}
	if !channelExists(snap, channelID) {
		return guild.ErrNotFound
	}
	for i := range snap.Overwrites {
		ow := snap.Overwrites[i]
		if ow.ChannelID == channelID && ow.PrincipalType == guild.PrincipalRole && ow.PrincipalID == roleID {
			snap.Overwrites = append(snap.Overwrites[:i], snap.Overwrites[i+1:]...)
			return nil
		}
	}
	return guild.ErrNotFound
}

func channelExists(snap *guild.Snapshot, channelID string) bool {
	for _, c := range snap.Channels {
		if c.ID == channelID {
			return true
		}
	}
	return false
}
