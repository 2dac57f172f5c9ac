package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/combat"
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// HandleAim processes /aim <name>: lock onto someone in the same cell.
func HandleAim(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Aim at whom? Usage: /aim <name>")
	}
	if !actor.Alive() {
		return nil, errors.Conflict("You are dead.")
	}
	who := strings.Join(args, " ")
	target := d.World.FindHere(actor, who)
	if target == nil {
		return nil, errors.NotFoundf("There is no %s here.", who)
	}
	if !target.Alive() {
		return nil, errors.Conflictf("%s is already dead.", target.Name)
	}
	if actor.Target == target.ID && world.CanAttack(actor, target) {
		return []packet.Envelope{packet.Text("You are already aiming at " + target.Name + ".")}, nil
	}

	d.World.SetTarget(actor, target)

	out := []packet.Envelope{packet.Text("You take aim at " + target.Name + ".")}
	out = tellf(out, target, "%s takes aim at you!", actor.Name)
	out = roomf(out, actor.Location, []*world.Character{actor, target}, "%s takes aim at %s.", actor.Name, target.Name)
	return out, nil
}

// HandleRelease processes /release: lower your weapon.
func HandleRelease(actor *world.Character, _ []string, d *Deps) ([]packet.Envelope, error) {
	if actor.Target.IsZero() {
		return nil, errors.Validation("You aren't aiming at anyone.")
	}
	prior := d.World.ReleaseTarget(actor)
	if prior == nil {
		return []packet.Envelope{packet.Text("You lower your weapon.")}, nil
	}
	out := []packet.Envelope{packet.Text("You stop aiming at " + prior.Name + ".")}
	out = tellf(out, prior, "%s stops aiming at you.", actor.Name)
	return out, nil
}

func HandlePunch(actor *world.Character, _ []string, d *Deps) ([]packet.Envelope, error) {
	return attack(actor, combat.Punch, d)
}

func HandleStrike(actor *world.Character, _ []string, d *Deps) ([]packet.Envelope, error) {
	return attack(actor, combat.Strike, d)
}

func HandleShoot(actor *world.Character, _ []string, d *Deps) ([]packet.Envelope, error) {
	return attack(actor, combat.Shoot, d)
}

func attack(actor *world.Character, kind combat.Kind, d *Deps) ([]packet.Envelope, error) {
	res, err := d.Combat.Attack(actor, kind)
	if err != nil {
		return nil, err
	}
	if res.Death != nil {
		logDeath(d.Log, res.Death)
	}
	return AttackEvents(res), nil
}

// AttackEvents renders a resolved attack for the cell, plus the death
// sequence when the victim died. Shared with the NPC AI.
func AttackEvents(res *combat.Result) []packet.Envelope {
	p := packet.CombatPayload{
		Attacker:      res.Attacker.Name,
		Victim:        res.Victim.Name,
		Action:        res.Kind.String(),
		Hit:           res.Hit,
		DamageBlocked: res.Outcome.DamageBlocked,
		DamageDealt:   res.Outcome.DamageDealt,
		HealthLeft:    res.Outcome.HealthLeft,
		ArmorRuined:   res.Outcome.ArmorRuined,
		Ammo:          res.Shot.AmmoName,
		AmmoLeft:      res.Shot.AmmoLeft,
	}
	room := res.Attacker.Location.RoomKey()
	if res.Death == nil {
		out := []packet.Envelope{packet.ToRoom(room, packet.TypeCombat, p)}
		if res.Hit {
			out = statsTo(out, res.Victim)
		}
		return out
	}
	// 死者已移到重生點，另外單獨通知
	out := []packet.Envelope{packet.ToRoom(room, packet.TypeCombat, p, userIDs(res.Victim)...)}
	if env, ok := toPlayer(res.Victim, packet.TypeCombat, p); ok {
		out = append(out, env)
	}
	return append(out, DeathEvents(res.Death)...)
}

// ==================== 死亡處理 ====================

// DeathEvents 通知死亡格的旁觀者、死者本人（已移到重生點）與重生點的玩家。
func DeathEvents(death *combat.Death) []packet.Envelope {
	v := death.Victim
	p := packet.DeathPayload{
		Victim:  v.Name,
		Cell:    death.Previous.RoomKey(),
		Respawn: death.Respawn.RoomKey(),
		Loot:    len(death.Loot) + len(death.Drops),
		Money:   death.Money,
		Exp:     death.Exp,
	}
	if death.Killer != nil {
		p.Killer = death.Killer.Name
	}

	out := []packet.Envelope{packet.ToRoom(death.Previous.RoomKey(), packet.TypeDeath, p, userIDs(v)...)}
	if env, ok := toPlayer(v, packet.TypeDeath, p); ok {
		out = append(out, env)
	}
	if death.Respawn != death.Previous {
		out = append(out, packet.ToRoom(death.Respawn.RoomKey(), packet.TypeArrive, packet.MovePayload{
			Name: v.Name,
			From: death.Previous.RoomKey(),
			To:   death.Respawn.RoomKey(),
			How:  "respawn",
		}, userIDs(v)...))
	}
	out = statsTo(out, v)
	if death.Killer != nil && death.Exp > 0 {
		out = tellf(out, death.Killer, "You gain %d experience.", death.Exp)
		out = statsTo(out, death.Killer)
	}
	return out
}

func logDeath(log *zap.Logger, death *combat.Death) {
	killer := "none"
	if death.Killer != nil {
		killer = death.Killer.Name
	}
	log.Info("角色死亡",
		zap.String("victim", death.Victim.Name),
		zap.String("killer", killer),
		zap.String("cell", death.Previous.RoomKey()),
		zap.Int("loot", len(death.Loot)),
	)
}
