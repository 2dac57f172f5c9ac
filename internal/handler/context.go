package handler

import (
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/combat"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/world"
)

// Deps holds shared dependencies injected into all command handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Combat *combat.Resolver
	Items  *data.ItemTable
	Now    func() uint64 // current tick
}

// RegisterAll registers all command handlers into the registry.
func RegisterAll(reg *Registry, game config.GameConfig) {
	// Targeting
	reg.Register("aim", HandleAim)
	reg.Register("release", HandleRelease)

	// Combat: the three attacks share one cooldown
	reg.RegisterGated("punch", "attack", game.AttackCooldownTicks, HandlePunch)
	reg.RegisterGated("strike", "attack", game.AttackCooldownTicks, HandleStrike)
	reg.RegisterGated("shoot", "attack", game.AttackCooldownTicks, HandleShoot)
	reg.RegisterGated("flee", "flee", game.FleeCooldownTicks, HandleFlee)

	// Items
	reg.Register("give", HandleGive)
	reg.Register("pickup", HandlePickup, "get")
	reg.Register("drop", HandleDrop)
	reg.Register("equip", HandleEquip)
	reg.Register("unequip", HandleUnequip)
	reg.Register("inventory", HandleInventory, "i")
	reg.Register("use", HandleUse)

	// Movement
	reg.Register("move", HandleMove, "go")
	reg.Register("look", HandleLook, "l")

	// Chat
	reg.Register("say", HandleSay, "s")
	reg.Register("global", HandleGlobal, "g")
	reg.Register("whisper", HandleWhisper, "w")
	reg.Register("faction", HandleFaction, "f")
}
