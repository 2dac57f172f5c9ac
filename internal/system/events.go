package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/core/event"
	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/world"
)

// EventsSystem delivers the domain events queued during the previous
// phases. Phase 1 (Events).
type EventsSystem struct {
	bus   *event.Bus
	world *world.State
	log   *zap.Logger
}

func NewEventsSystem(bus *event.Bus, ws *world.State, log *zap.Logger) *EventsSystem {
	s := &EventsSystem{bus: bus, world: ws, log: log}
	event.Subscribe(bus, s.onAttacked)
	event.Subscribe(bus, s.onDied)
	event.Subscribe(bus, s.onEntered)
	event.Subscribe(bus, s.onLeft)
	return s
}

func (s *EventsSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventsSystem) Update(_ time.Duration) {
	s.bus.Flush()
}

// onAttacked 讓被攻擊的 NPC 記住攻擊者，AI 之後會反擊。
func (s *EventsSystem) onAttacked(ev event.CharacterAttacked) {
	victim := s.world.Get(ev.Victim)
	if victim == nil {
		return
	}
	if npc := victim.Autonomous(); npc != nil && victim.Alive() {
		npc.AddHostile(ev.Attacker)
	}
}

func (s *EventsSystem) onDied(ev event.CharacterDied) {
	if killer := s.world.Get(ev.Killer); killer != nil {
		if npc := killer.Autonomous(); npc != nil {
			npc.RemoveHostile(ev.Victim)
		}
	}
	s.log.Debug("角色死亡",
		zap.Stringer("victim", ev.Victim),
		zap.Stringer("killer", ev.Killer),
		zap.String("map", ev.MapID),
		zap.Int("loot", ev.LootLen),
	)
}

func (s *EventsSystem) onEntered(ev event.PlayerEntered) {
	s.log.Debug("玩家上線事件", zap.String("user", ev.UserID), zap.Stringer("entity", ev.EntityID))
}

// onLeft 清除所有 NPC 對離線玩家的仇恨。
func (s *EventsSystem) onLeft(ev event.PlayerLeft) {
	for _, npc := range s.world.NPCs() {
		npc.Autonomous().RemoveHostile(ev.EntityID)
	}
}
