package world

import "github.com/l1jgo/gridworld/internal/errors"

// Ground loot lives in the grid cell it was dropped on. It is not
// persisted; a restart clears the ground.

// DropItems leaves items on the ground at loc. Stackables merge with a
// matching ground stack.
func (g *Grid) DropItems(loc Location, items ...*Item) {
	c := g.cellAt(loc)
	for _, it := range items {
		it.EquippedSlot = SlotNone
		if it.Stats.Stackable {
			if pile := findStack(c.items, it.TemplateID); pile != nil {
				pile.Stats.Durability += it.Stats.Durability
				continue
			}
		}
		c.items = append(c.items, it)
	}
	g.prune(loc)
}

// DropMoney adds n coins to the pile at loc.
func (g *Grid) DropMoney(loc Location, n int) {
	if n <= 0 {
		return
	}
	g.cellAt(loc).money += n
}

// TakeMoney empties the coin pile at loc and returns its size.
func (g *Grid) TakeMoney(loc Location) int {
	c := g.cells[loc]
	if c == nil {
		return 0
	}
	n := c.money
	c.money = 0
	g.prune(loc)
	return n
}

// TakeItem removes the first ground item whose name starts with fragment.
// For stacks, amount units are split off (0 means the whole stack). The
// returned instance always carries a fresh fingerprint.
func (g *Grid) TakeItem(loc Location, fragment string, amount int) (*Item, error) {
	c := g.cells[loc]
	idx := -1
	if c != nil {
		for i, it := range c.items {
			if HasFoldPrefix(it.Name, fragment) || HasFoldPrefix(it.TemplateID, fragment) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, errors.NotFoundf("There is no %s here.", fragment)
	}
	it := c.items[idx]
	if it.Stats.Stackable && amount > 0 && amount < it.Stats.Durability {
		return it.Split(amount), nil
	}
	if it.Stats.Stackable && amount > it.Stats.Durability {
		return nil, errors.Validationf("There are only %d %s here.", it.Stats.Durability, it.Name)
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	g.prune(loc)
	it.Fingerprint = NewFingerprint()
	return it, nil
}

func findStack(items []*Item, templateID string) *Item {
	for _, it := range items {
		if it.Stats.Stackable && it.TemplateID == templateID {
			return it
		}
	}
	return nil
}
