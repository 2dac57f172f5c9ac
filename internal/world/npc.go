package world

import (
	"slices"

	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/data"
)

// Control decides who drives a character.
type Control interface {
	controlled()
}

// Human is driven by commands arriving on a connection.
type Human struct {
	SessionID uint64
}

func (*Human) controlled() {}

// Autonomous is driven by tick timers. Timers hold the tick at which the
// behaviour next runs.
type Autonomous struct {
	TemplateID   string
	Home         Location
	Aggressive   bool
	Wanders      bool
	NextMove     uint64
	NextAttack   uint64
	NextResupply uint64
	Hostiles     []ecs.EntityID // weak; pruned when stale
}

func (*Autonomous) controlled() {}

// AddHostile remembers an attacker. Duplicates are ignored.
func (a *Autonomous) AddHostile(id ecs.EntityID) {
	if id.IsZero() || slices.Contains(a.Hostiles, id) {
		return
	}
	a.Hostiles = append(a.Hostiles, id)
}

func (a *Autonomous) RemoveHostile(id ecs.EntityID) {
	a.Hostiles = slices.DeleteFunc(a.Hostiles, func(h ecs.EntityID) bool { return h == id })
}

// NewNPC builds an autonomous character from a template and gives it its
// stock. The caller upserts it into the State.
func NewNPC(tmpl *data.NpcTemplate, items *data.ItemTable, loc Location) *Character {
	c := NewCharacter("", tmpl.Name, loc, Stats{
		Health:    tmpl.Health,
		HealthMax: tmpl.Health,
		Money:     tmpl.Money,
		Accuracy:  tmpl.Accuracy,
	})
	c.Control = &Autonomous{
		TemplateID: tmpl.ID,
		Home:       loc,
		Aggressive: tmpl.Aggressive,
		Wanders:    tmpl.Wanders,
	}
	Resupply(c, tmpl, items)
	return c
}

// Resupply tops an NPC back up to its template: full health, template
// money, and every stock line restored and equipped where flagged.
func Resupply(c *Character, tmpl *data.NpcTemplate, items *data.ItemTable) {
	c.Stats.Health = c.Stats.HealthMax
	c.Stats.Money = max(c.Stats.Money, tmpl.Money)
	for _, line := range tmpl.Stock {
		info := items.Get(line.ItemID)
		if info == nil || line.Amount <= 0 {
			continue
		}
		have := 0
		for _, it := range c.Inventory {
			if it.TemplateID == info.ID {
				have += it.Count()
			}
		}
		if missing := line.Amount - have; missing > 0 {
			_, _ = GiveItem(c, info, missing)
		}
		if !line.Equip {
			continue
		}
		slot, ok := SlotFor(info.Subtype)
		if !ok || c.Equipped[slot] != nil {
			continue
		}
		for i, it := range c.Inventory {
			if it.TemplateID == info.ID {
				_, _ = Equip(c, i)
				break
			}
		}
	}
}
