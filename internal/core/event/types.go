package event

import "github.com/l1jgo/gridworld/internal/core/ecs"

// CharacterAttacked fires after a resolved attack, hit or miss.
type CharacterAttacked struct {
	Attacker ecs.EntityID
	Victim   ecs.EntityID
	Hit      bool
	Damage   int
}

// CharacterDied fires once per death, after loot was dropped and the
// victim was moved to its respawn cell.
type CharacterDied struct {
	Victim  ecs.EntityID
	Killer  ecs.EntityID
	MapID   string
	LootLen int
}

// PlayerEntered / PlayerLeft bracket a session's life in the world.
type PlayerEntered struct {
	EntityID ecs.EntityID
	UserID   string
}

type PlayerLeft struct {
	EntityID ecs.EntityID
	UserID   string
}
