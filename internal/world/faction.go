package world

import (
	"sort"

	"github.com/google/uuid"

	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/errors"
)

// Faction is a player group with its own broadcast room (its id).
type Faction struct {
	ID       string
	Name     string
	Tag      string
	LeaderID string // user id
	Online   map[ecs.EntityID]struct{}
}

// OnlineCount returns the number of members currently in the world.
func (f *Faction) OnlineCount() int { return len(f.Online) }

// FactionManager manages all factions in memory.
// Single-goroutine access only (game loop).
type FactionManager struct {
	byID  map[string]*Faction
	byKey map[string]string // folded name or tag → id

	created   []*Faction // not yet saved
	disbanded []string   // ids not yet deleted from storage
}

func NewFactionManager() *FactionManager {
	return &FactionManager{
		byID:  make(map[string]*Faction),
		byKey: make(map[string]string),
	}
}

// TakeChanges returns and forgets factions founded or disbanded since the
// last call, for the persistence system.
func (m *FactionManager) TakeChanges() (created []*Faction, disbanded []string) {
	created, disbanded = m.created, m.disbanded
	m.created, m.disbanded = nil, nil
	return created, disbanded
}

// Get returns a faction by id, or nil.
func (m *FactionManager) Get(id string) *Faction {
	return m.byID[id]
}

// Lookup finds a faction by name or tag, ignoring case.
func (m *FactionManager) Lookup(nameOrTag string) *Faction {
	return m.byID[m.byKey[Fold(nameOrTag)]]
}

func (m *FactionManager) Count() int { return len(m.byID) }

// All returns factions ordered by name.
func (m *FactionManager) All() []*Faction {
	out := make([]*Faction, 0, len(m.byID))
	for _, f := range m.byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers a faction loaded from storage or freshly created.
func (m *FactionManager) Add(f *Faction) error {
	if f.ID == "" {
		return errors.Validation("faction id required")
	}
	if m.byKey[Fold(f.Name)] != "" || m.byKey[Fold(f.Tag)] != "" {
		return errors.Conflictf("A faction named %s or tagged [%s] already exists.", f.Name, f.Tag)
	}
	if f.Online == nil {
		f.Online = make(map[ecs.EntityID]struct{})
	}
	m.byID[f.ID] = f
	m.byKey[Fold(f.Name)] = f.ID
	m.byKey[Fold(f.Tag)] = f.ID
	return nil
}

// Create founds a faction led by leader, who joins it immediately.
func (m *FactionManager) Create(name, tag string, leader *Character) (*Faction, error) {
	if leader.FactionID != "" && m.Get(leader.FactionID) != nil {
		return nil, errors.Validation("Leave your current faction first.")
	}
	if name == "" || tag == "" || len(tag) > 5 {
		return nil, errors.Validation("Usage: /faction create <tag> <name> (tag up to 5 letters)")
	}
	f := &Faction{ID: uuid.NewString(), Name: name, Tag: tag, LeaderID: leader.UserID}
	if err := m.Add(f); err != nil {
		return nil, err
	}
	m.created = append(m.created, f)
	m.Join(f, leader)
	return f, nil
}

// Join makes c a member of f and marks it online.
func (m *FactionManager) Join(f *Faction, c *Character) {
	c.FactionID = f.ID
	c.Dirty = true
	f.Online[c.ID] = struct{}{}
}

// Leave removes c from its faction. A departing leader disbands the
// faction; the returned slice lists the online members who lost it.
func (m *FactionManager) Leave(c *Character, resolve func(ecs.EntityID) *Character) (f *Faction, disbanded []*Character) {
	f = m.byID[c.FactionID]
	c.FactionID = ""
	c.Dirty = true
	if f == nil {
		return nil, nil
	}
	delete(f.Online, c.ID)
	if f.LeaderID != c.UserID {
		return f, nil
	}
	for id := range f.Online {
		if member := resolve(id); member != nil {
			member.FactionID = ""
			member.Dirty = true
			disbanded = append(disbanded, member)
		}
	}
	m.remove(f)
	m.disbanded = append(m.disbanded, f.ID)
	return f, disbanded
}

func (m *FactionManager) remove(f *Faction) {
	delete(m.byKey, Fold(f.Name))
	delete(m.byKey, Fold(f.Tag))
	delete(m.byID, f.ID)
}

// markOnline and markOffline track membership presence; a dangling
// FactionID (faction gone) is cleared.
func (m *FactionManager) markOnline(c *Character) {
	if c.FactionID == "" {
		return
	}
	f := m.byID[c.FactionID]
	if f == nil {
		c.FactionID = ""
		return
	}
	f.Online[c.ID] = struct{}{}
}

func (m *FactionManager) markOffline(c *Character) {
	if f := m.byID[c.FactionID]; f != nil {
		delete(f.Online, c.ID)
	}
}
