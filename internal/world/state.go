package world

import (
	"sort"

	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/errors"
)

// Occupants is ListAt split by kind.
type Occupants struct {
	Characters []*Character // players
	NPCs       []*Character
	Items      []*Item
	Money      int
}

// State is the single authoritative table of live characters and NPCs.
// Every location change goes through State so the grid and the entities'
// Location fields never disagree.
// Single-goroutine access only (game loop).
type State struct {
	pool     *ecs.EntityPool
	chars    map[ecs.EntityID]*Character
	byUser   map[string]ecs.EntityID
	byName   map[string]ecs.EntityID // folded player name
	grid     *Grid
	maps     MapBounds
	factions *FactionManager
}

func NewState(maps MapBounds) *State {
	return &State{
		pool:     ecs.NewEntityPool(),
		chars:    make(map[ecs.EntityID]*Character),
		byUser:   make(map[string]ecs.EntityID),
		byName:   make(map[string]ecs.EntityID),
		grid:     NewGrid(maps),
		maps:     maps,
		factions: NewFactionManager(),
	}
}

func (s *State) Grid() *Grid               { return s.grid }
func (s *State) Maps() MapBounds           { return s.maps }
func (s *State) Factions() *FactionManager { return s.factions }

// Get resolves a weak reference. Stale or zero ids return nil.
func (s *State) Get(id ecs.EntityID) *Character {
	if !s.pool.Alive(id) {
		return nil
	}
	return s.chars[id]
}

// ByUser returns the live character of a user, or nil.
func (s *State) ByUser(userID string) *Character {
	return s.Get(s.byUser[userID])
}

// ByName returns the live player with this exact name (case-insensitive).
func (s *State) ByName(name string) *Character {
	return s.Get(s.byName[Fold(name)])
}

// Upsert adds c to the world, or re-syncs its grid position if it is
// already there. New entities get an id and are indexed at c.Location.
func (s *State) Upsert(c *Character) error {
	if existing := s.Get(c.ID); existing != nil {
		if existing != c {
			return errors.Conflictf("entity %s belongs to %s", c.ID, existing.Name)
		}
		at, _ := s.grid.Where(c.ID)
		if at == c.Location {
			return nil
		}
		return s.grid.Teleport(c.ID, at, c.Location)
	}
	if c.UserID != "" {
		if other := s.ByUser(c.UserID); other != nil {
			return errors.Conflictf("user %s is already in the world as %s", c.UserID, other.Name)
		}
	}
	id := s.pool.Create()
	if err := s.grid.Insert(id, c.Location); err != nil {
		s.pool.Destroy(id)
		return err
	}
	c.ID = id
	s.chars[id] = c
	if c.UserID != "" {
		s.byUser[c.UserID] = id
		s.byName[Fold(c.Name)] = id
	}
	s.factions.markOnline(c)
	return nil
}

// Remove takes an entity out of the world: both targeting directions are
// released, it leaves the grid and its id is invalidated. Unknown or
// already removed ids are a no-op.
func (s *State) Remove(id ecs.EntityID) bool {
	c := s.Get(id)
	if c == nil {
		return false
	}
	s.ReleaseAll(c)
	s.factions.markOffline(c)
	s.grid.Remove(id, c.Location)
	delete(s.chars, id)
	if c.UserID != "" && s.byUser[c.UserID] == id {
		delete(s.byUser, c.UserID)
		delete(s.byName, Fold(c.Name))
	}
	s.pool.Destroy(id)
	return true
}

// Move walks c one step in dir. Returns the cell it left.
func (s *State) Move(c *Character, dir Direction) (Location, error) {
	from := c.Location
	to := from.Step(dir)
	if !s.grid.InBounds(to) {
		return from, errors.Validation("You can't go that way.")
	}
	if err := s.grid.Move(c.ID, from, to); err != nil {
		return from, err
	}
	c.Location = to
	c.Dirty = true
	return from, nil
}

// Relocate teleports c to loc (respawn). Returns the cell it left.
func (s *State) Relocate(c *Character, loc Location) (Location, error) {
	from := c.Location
	if from == loc {
		return from, nil
	}
	if err := s.grid.Teleport(c.ID, from, loc); err != nil {
		return from, err
	}
	c.Location = loc
	c.Dirty = true
	return from, nil
}

// SpawnPoint returns the respawn cell of mapID. Unknown maps fall back to
// the origin of the map.
func (s *State) SpawnPoint(mapID string) Location {
	x, y, ok := s.maps.SpawnPoint(mapID)
	if !ok {
		return Location{Map: mapID}
	}
	return Location{Map: mapID, X: x, Y: y}
}

// ListAt returns everything in one cell, players and NPCs ordered by id.
func (s *State) ListAt(loc Location) Occupants {
	view := s.grid.ListAt(loc)
	out := Occupants{Items: view.Items, Money: view.Money}
	for _, id := range view.IDs {
		c := s.chars[id]
		if c == nil {
			continue
		}
		if c.IsNPC() {
			out.NPCs = append(out.NPCs, c)
		} else {
			out.Characters = append(out.Characters, c)
		}
	}
	return out
}

// FindHere finds a character in c's cell whose name starts with fragment,
// players first. c itself is skipped.
func (s *State) FindHere(c *Character, fragment string) *Character {
	occ := s.ListAt(c.Location)
	for _, group := range [][]*Character{occ.Characters, occ.NPCs} {
		for _, other := range group {
			if other.ID != c.ID && HasFoldPrefix(other.Name, fragment) {
				return other
			}
		}
	}
	return nil
}

// Players returns every live player ordered by id.
func (s *State) Players() []*Character {
	return s.collect(func(c *Character) bool { return !c.IsNPC() })
}

// NPCs returns every live NPC ordered by id.
func (s *State) NPCs() []*Character {
	return s.collect((*Character).IsNPC)
}

func (s *State) collect(keep func(*Character) bool) []*Character {
	out := make([]*Character, 0, len(s.chars))
	for _, c := range s.chars {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) PlayerCount() int { return len(s.byUser) }

func (s *State) Len() int { return len(s.chars) }
