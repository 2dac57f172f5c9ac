package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/combat"
	"github.com/l1jgo/gridworld/internal/config"
	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/handler"
	"github.com/l1jgo/gridworld/internal/scripting"
	"github.com/l1jgo/gridworld/internal/world"
)

// wanderRadius 是 NPC 離家的最大曼哈頓距離，超過時往回走。
const wanderRadius = 3

// Decider lets scripts choose an NPC's next step. *scripting.Engine
// satisfies it.
type Decider interface {
	DecideNpc(ctx scripting.AIContext) (scripting.AIDecision, bool)
}

// NpcAISystem runs the autonomous timers of every NPC: resupply, attack
// and wander, each gated on its own tick timer. Phase 2 (Update).
type NpcAISystem struct {
	world  *world.State
	combat *combat.Resolver
	npcs   *data.NpcTable
	items  *data.ItemTable
	ai     Decider // optional
	router *Router
	game   config.GameConfig
	now    func() uint64
	log    *zap.Logger
}

func NewNpcAISystem(deps *handler.Deps, npcs *data.NpcTable, ai Decider, router *Router) *NpcAISystem {
	return &NpcAISystem{
		world:  deps.World,
		combat: deps.Combat,
		npcs:   npcs,
		items:  deps.Items,
		ai:     ai,
		router: router,
		game:   deps.Config.Game,
		now:    deps.Now,
		log:    deps.Log,
	}
}

func (s *NpcAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NpcAISystem) Update(_ time.Duration) {
	now := s.now()
	for _, npc := range s.world.NPCs() {
		if npc.Alive() {
			s.tick(npc, now)
		}
	}
}

func (s *NpcAISystem) tick(npc *world.Character, now uint64) {
	auto := npc.Autonomous()
	s.pruneHostiles(npc, auto)

	if now >= auto.NextResupply {
		auto.NextResupply = now + s.game.NpcResupplyTicks
		if !npc.Gridlocked() {
			if tmpl := s.npcs.Get(auto.TemplateID); tmpl != nil {
				world.Resupply(npc, tmpl, s.items)
			}
		}
	}

	target := s.pickTarget(npc, auto)
	decision := s.decide(npc, auto, target)

	switch decision.Action {
	case "attack":
		if target != nil && now >= auto.NextAttack {
			auto.NextAttack = now + s.game.NpcAttackTicks
			s.attack(npc, target)
		}
	case "move":
		if now >= auto.NextMove && !npc.Gridlocked() {
			auto.NextMove = now + s.game.NpcMoveTicks
			s.wander(npc, auto, decision.Dir)
		}
	}
}

// pruneHostiles 移除已離線、死亡或不在同一格的仇恨對象。
func (s *NpcAISystem) pruneHostiles(npc *world.Character, auto *world.Autonomous) {
	kept := auto.Hostiles[:0]
	for _, id := range auto.Hostiles {
		h := s.world.Get(id)
		if h != nil && h.Alive() && h.Location == npc.Location {
			kept = append(kept, id)
		}
	}
	auto.Hostiles = kept
}

// pickTarget 優先反擊仇恨對象；主動型 NPC 會攻擊同格玩家。
func (s *NpcAISystem) pickTarget(npc *world.Character, auto *world.Autonomous) *world.Character {
	if len(auto.Hostiles) > 0 {
		return s.world.Get(auto.Hostiles[0])
	}
	if !auto.Aggressive {
		return nil
	}
	for _, p := range s.world.ListAt(npc.Location).Characters {
		if p.Alive() {
			return p
		}
	}
	return nil
}

func (s *NpcAISystem) decide(npc *world.Character, auto *world.Autonomous, target *world.Character) scripting.AIDecision {
	if s.ai != nil {
		occ := s.world.ListAt(npc.Location)
		d, ok := s.ai.DecideNpc(scripting.AIContext{
			Health:       npc.Stats.Health,
			HealthMax:    npc.Stats.HealthMax,
			Hostiles:     len(auto.Hostiles),
			Players:      len(occ.Characters),
			Aggressive:   auto.Aggressive,
			Wanders:      auto.Wanders,
			DistHome:     distance(npc.Location, auto.Home),
			ShouldPatrol: auto.Wanders && target == nil,
		})
		if ok {
			if d.Action == "attack" && target == nil {
				d.Action = "idle"
			}
			return d
		}
	}
	switch {
	case target != nil:
		return scripting.AIDecision{Action: "attack"}
	case auto.Wanders:
		return scripting.AIDecision{Action: "move"}
	}
	return scripting.AIDecision{Action: "idle"}
}

// ==================== 攻擊 ====================

func (s *NpcAISystem) attack(npc, target *world.Character) {
	if npc.Target != target.ID {
		s.world.SetTarget(npc, target)
	}
	kind := attackKind(npc)
	res, err := s.combat.Attack(npc, kind)
	if err != nil && kind != combat.Punch && npc.Target == target.ID {
		// 沒有彈藥或武器損毀時改用拳頭
		res, err = s.combat.Attack(npc, combat.Punch)
	}
	if err != nil {
		s.log.Debug("NPC 攻擊失敗", zap.String("npc", npc.Name), zap.String("target", target.Name), zap.Error(err))
		return
	}
	s.router.Deliver(nil, handler.AttackEvents(res))
}

func attackKind(npc *world.Character) combat.Kind {
	switch {
	case npc.Equipped[world.SlotMelee] != nil:
		return combat.Strike
	case npc.Equipped[world.SlotRanged] != nil && npc.Equipped[world.SlotAmmo] != nil:
		return combat.Shoot
	}
	return combat.Punch
}

// ==================== 移動 ====================

func (s *NpcAISystem) wander(npc *world.Character, auto *world.Autonomous, dir string) {
	d, ok := s.chooseStep(npc, auto, dir)
	if !ok {
		return
	}
	from, err := s.world.Move(npc, d)
	if err != nil {
		return
	}
	s.router.Deliver(nil, handler.MoveEvents(npc, from, "walk"))
}

// chooseStep 使用腳本指定方向；否則離家太遠時往家走，不然隨機選一個可走方向。
func (s *NpcAISystem) chooseStep(npc *world.Character, auto *world.Autonomous, dir string) (world.Direction, bool) {
	if dir != "" {
		d, ok := world.ParseDirection(dir)
		return d, ok && s.world.Grid().InBounds(npc.Location.Step(d))
	}
	if distance(npc.Location, auto.Home) > wanderRadius {
		best, bestDist := world.North, distance(npc.Location, auto.Home)
		for _, d := range world.Directions {
			if dist := distance(npc.Location.Step(d), auto.Home); dist < bestDist {
				best, bestDist = d, dist
			}
		}
		return best, true
	}
	var open []world.Direction
	for _, d := range world.Directions {
		to := npc.Location.Step(d)
		if s.world.Grid().InBounds(to) && distance(to, auto.Home) <= wanderRadius {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return 0, false
	}
	return open[world.Pick(s.combat.Roller(), len(open))], true
}

// distance is the Manhattan distance; cells on other maps are far away.
func distance(a, b world.Location) int {
	if a.Map != b.Map {
		return 1 << 16
	}
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
