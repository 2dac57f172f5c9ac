package world

import "github.com/l1jgo/gridworld/internal/core/ecs"

// Stats are the numeric attributes of a character.
type Stats struct {
	Health    int `json:"health"`
	HealthMax int `json:"health_max"`
	Money     int `json:"money"`
	Bank      int `json:"bank"`
	Exp       int `json:"exp"`
	EnhPoints int `json:"enh_points"`
	Accuracy  int `json:"accuracy"`
}

// Character is a player or an NPC. Which one is decided by Control.
// Accessed only from the game loop goroutine.
type Character struct {
	ID       ecs.EntityID
	UserID   string // empty for NPCs
	Name     string
	Location Location
	Stats    Stats

	// Inventory holds every carried item, equipped ones included.
	// Equipped indexes the same instances by slot.
	Inventory []*Item
	Equipped  map[Slot]*Item

	// Target and TargetedBy are weak references; resolve through State.Get.
	Target     ecs.EntityID
	TargetedBy map[ecs.EntityID]struct{}

	// Cooldowns maps an action name to the tick at which it is usable again.
	Cooldowns map[string]uint64

	FactionID string // weak; "" when unaffiliated
	Control   Control

	Dirty bool // changed since last save
}

// NewCharacter builds a human-controlled character.
func NewCharacter(userID, name string, loc Location, stats Stats) *Character {
	return &Character{
		UserID:     userID,
		Name:       name,
		Location:   loc,
		Stats:      stats,
		Inventory:  make([]*Item, 0, 16),
		Equipped:   make(map[Slot]*Item, len(Slots)),
		TargetedBy: make(map[ecs.EntityID]struct{}),
		Cooldowns:  make(map[string]uint64),
		Control:    &Human{},
	}
}

// IsNPC reports whether the character is driven by timers rather than a
// connection.
func (c *Character) IsNPC() bool {
	_, ok := c.Control.(*Autonomous)
	return ok
}

// Autonomous returns the NPC control block, or nil for players.
func (c *Character) Autonomous() *Autonomous {
	a, _ := c.Control.(*Autonomous)
	return a
}

func (c *Character) Alive() bool { return c.Stats.Health > 0 }

// Gridlocked reports whether the character is in a targeting relation in
// either direction.
func (c *Character) Gridlocked() bool {
	return !c.Target.IsZero() || len(c.TargetedBy) > 0
}

// IsTargetedBy reports whether attacker is in the TargetedBy set.
func (c *Character) IsTargetedBy(attacker ecs.EntityID) bool {
	_, ok := c.TargetedBy[attacker]
	return ok
}

// CooldownRemaining returns the ticks left on action at tick now.
func (c *Character) CooldownRemaining(action string, now uint64) uint64 {
	until, ok := c.Cooldowns[action]
	if !ok || until <= now {
		return 0
	}
	return until - now
}

// StartCooldown makes action unusable for ticks ticks from now.
func (c *Character) StartCooldown(action string, now, ticks uint64) {
	if ticks == 0 {
		return
	}
	c.Cooldowns[action] = now + ticks
}

// Heal adds n health, capped at HealthMax. Returns the amount restored.
func (c *Character) Heal(n int) int {
	before := c.Stats.Health
	c.Stats.Health = min(c.Stats.HealthMax, c.Stats.Health+n)
	if c.Stats.Health != before {
		c.Dirty = true
	}
	return c.Stats.Health - before
}
