package world

import (
	"sort"

	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/errors"
)

// MapBounds is the map-definition collaborator. data.MapTable satisfies it.
type MapBounds interface {
	InBounds(mapID string, x, y int) bool
	SpawnPoint(mapID string) (x, y int, ok bool)
}

// cell holds what occupies one grid coordinate. Empty cells are pruned.
type cell struct {
	occupants map[ecs.EntityID]struct{}
	items     []*Item
	money     int
}

func (c *cell) empty() bool {
	return len(c.occupants) == 0 && len(c.items) == 0 && c.money == 0
}

// CellView is a read-only snapshot of one cell. IDs are sorted.
type CellView struct {
	IDs   []ecs.EntityID
	Items []*Item
	Money int
}

// Grid is the spatial index: (map, x, y) → occupants and ground loot.
// It also remembers where each entity was placed so that a remove or move
// naming the wrong cell is reported instead of silently corrupting the index.
// Single-goroutine access only (game loop).
type Grid struct {
	bounds MapBounds
	cells  map[Location]*cell
	where  map[ecs.EntityID]Location
}

func NewGrid(bounds MapBounds) *Grid {
	return &Grid{
		bounds: bounds,
		cells:  make(map[Location]*cell),
		where:  make(map[ecs.EntityID]Location),
	}
}

// InBounds asks the map collaborator whether loc exists.
func (g *Grid) InBounds(loc Location) bool {
	return g.bounds.InBounds(loc.Map, loc.X, loc.Y)
}

func (g *Grid) cellAt(loc Location) *cell {
	c := g.cells[loc]
	if c == nil {
		c = &cell{occupants: make(map[ecs.EntityID]struct{})}
		g.cells[loc] = c
	}
	return c
}

func (g *Grid) prune(loc Location) {
	if c := g.cells[loc]; c != nil && c.empty() {
		delete(g.cells, loc)
	}
}

// Insert places id at loc.
func (g *Grid) Insert(id ecs.EntityID, loc Location) error {
	if !g.InBounds(loc) {
		return errors.Validationf("%s is outside the map.", loc)
	}
	if at, ok := g.where[id]; ok {
		return errors.Conflictf("entity %s already placed at %s", id, at)
	}
	g.cellAt(loc).occupants[id] = struct{}{}
	g.where[id] = loc
	return nil
}

// Remove takes id out of loc. Returns false if id was not there.
func (g *Grid) Remove(id ecs.EntityID, loc Location) bool {
	if at, ok := g.where[id]; !ok || at != loc {
		return false
	}
	delete(g.cells[loc].occupants, id)
	delete(g.where, id)
	g.prune(loc)
	return true
}

// Move walks id one step from from to to.
func (g *Grid) Move(id ecs.EntityID, from, to Location) error {
	if err := ValidateStep(from, to); err != nil {
		return err
	}
	return g.Teleport(id, from, to)
}

// Teleport relocates id without the one-step rule (respawn, recall).
// Both cells change in one call; the loop never observes a half move.
func (g *Grid) Teleport(id ecs.EntityID, from, to Location) error {
	if !g.InBounds(to) {
		return errors.Validation("You can't go that way.")
	}
	if at, ok := g.where[id]; !ok || at != from {
		return errors.Conflictf("entity %s is not at %s", id, from)
	}
	delete(g.cells[from].occupants, id)
	g.prune(from)
	g.cellAt(to).occupants[id] = struct{}{}
	g.where[id] = to
	return nil
}

// Where returns the cell id is indexed at.
func (g *Grid) Where(id ecs.EntityID) (Location, bool) {
	loc, ok := g.where[id]
	return loc, ok
}

// ListAt snapshots a cell.
func (g *Grid) ListAt(loc Location) CellView {
	c := g.cells[loc]
	if c == nil {
		return CellView{}
	}
	ids := make([]ecs.EntityID, 0, len(c.occupants))
	for id := range c.occupants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return CellView{IDs: ids, Items: append([]*Item(nil), c.items...), Money: c.money}
}

// Entities is the number of placed entities.
func (g *Grid) Entities() int { return len(g.where) }

// Cells is the number of non-empty cells.
func (g *Grid) Cells() int { return len(g.cells) }
