// Package combat 負責命中判定、傷害計算、死亡與掉落。
// 所有函式只在遊戲迴圈 goroutine 上呼叫。
package combat

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/l1jgo/gridworld/internal/core/event"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/world"
)

// Formulas 提供可由 Lua 覆寫的戰鬥公式。scripting.Engine 實作此介面。
type Formulas interface {
	// HitChance returns the hit percentage for an attacker accuracy.
	HitChance(accuracy int) int
	// KillExp returns the exp awarded for killing a victim.
	KillExp(victimHealthMax int) int
}

// DefaultFormulas 是 Lua 腳本不可用時的內建公式。
type DefaultFormulas struct{}

func (DefaultFormulas) HitChance(accuracy int) int {
	return min(95, max(5, 50+accuracy*5))
}

func (DefaultFormulas) KillExp(victimHealthMax int) int {
	return max(1, victimHealthMax/2)
}

// Config wires a Resolver.
type Config struct {
	Roller   dice.Roller
	Formulas Formulas
	Items    *data.ItemTable
	Drops    *data.DropTable
	Bus      *event.Bus
	FistMin  int
	FistMax  int
}

// Resolver 執行攻擊流程。World 是唯一被修改的狀態。
type Resolver struct {
	world    *world.State
	roller   dice.Roller
	formulas Formulas
	items    *data.ItemTable
	drops    *data.DropTable
	bus      *event.Bus
	fistMin  int
	fistMax  int
}

func NewResolver(ws *world.State, cfg Config) *Resolver {
	r := &Resolver{
		world:    ws,
		roller:   cfg.Roller,
		formulas: cfg.Formulas,
		items:    cfg.Items,
		drops:    cfg.Drops,
		bus:      cfg.Bus,
		fistMin:  cfg.FistMin,
		fistMax:  max(cfg.FistMin, cfg.FistMax),
	}
	if r.roller == nil {
		r.roller = dice.DefaultRoller
	}
	if r.formulas == nil {
		r.formulas = DefaultFormulas{}
	}
	return r
}

// Roller exposes the shared random source (flee drops, NPC wandering).
func (r *Resolver) Roller() dice.Roller { return r.roller }

// AttackHit 依命中值擲 d100。
func (r *Resolver) AttackHit(c *world.Character) bool {
	chance := r.formulas.HitChance(c.Stats.Accuracy)
	return world.Chance(r.roller, chance)
}
