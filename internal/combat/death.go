package combat

import (
	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/core/event"
	"github.com/l1jgo/gridworld/internal/world"
)

// Death describes one death, for broadcasting.
type Death struct {
	Victim   *world.Character
	Killer   *world.Character // nil when not killed by a character
	Previous world.Location   // cell of death, where the loot lies
	Respawn  world.Location
	Loot     []*world.Item // the victim's former inventory
	Drops    []*world.Item // extra drop-table items (NPCs only)
	Money    int
	Exp      int // awarded to Killer
}

// ==================== 死亡處理 ====================

// Kill 處理死亡：雙向釋放瞄準、背包與金錢掉落在死亡格、
// 生命回滿、金錢歸零、移回重生點。回傳死亡前位置供旁觀者廣播。
func (r *Resolver) Kill(victim, killer *world.Character) Death {
	d := Death{Victim: victim, Killer: killer, Previous: victim.Location}

	r.world.ReleaseAll(victim)
	d.Loot, d.Money = world.StripForLoot(victim)

	npc := victim.Autonomous()
	if npc != nil {
		d.Drops = r.rollDrops(npc.TemplateID)
	}

	grid := r.world.Grid()
	grid.DropItems(d.Previous, d.Loot...)
	grid.DropItems(d.Previous, d.Drops...)
	grid.DropMoney(d.Previous, d.Money)

	victim.Stats.Health = victim.Stats.HealthMax
	victim.Dirty = true

	if npc != nil {
		d.Respawn = npc.Home
		npc.Hostiles = npc.Hostiles[:0]
		npc.NextResupply = 0 // 下一個 tick 補給
	} else {
		d.Respawn = r.world.SpawnPoint(victim.Location.Map)
	}
	if _, err := r.world.Relocate(victim, d.Respawn); err != nil {
		// 重生點不在地圖內時留在原地
		d.Respawn = victim.Location
	}

	if killer != nil && killer != victim {
		d.Exp = r.formulas.KillExp(victim.Stats.HealthMax)
		killer.Stats.Exp += d.Exp
		killer.Dirty = true
	}

	var killerID ecs.EntityID
	if killer != nil {
		killerID = killer.ID
	}
	event.Emit(r.bus, event.CharacterDied{
		Victim:  victim.ID,
		Killer:  killerID,
		MapID:   d.Previous.Map,
		LootLen: len(d.Loot),
	})
	return d
}

func (r *Resolver) rollDrops(npcID string) []*world.Item {
	if r.items == nil {
		return nil
	}
	var out []*world.Item
	for _, entry := range r.drops.Get(npcID) {
		if !world.Chance(r.roller, entry.Chance) {
			continue
		}
		info := r.items.Get(entry.ItemID)
		if info == nil {
			continue
		}
		n := world.RollRange(r.roller, entry.Min, entry.Max)
		if info.Stackable {
			out = append(out, world.NewItem(info, n))
			continue
		}
		for range n {
			out = append(out, world.NewItem(info, 0))
		}
	}
	return out
}
