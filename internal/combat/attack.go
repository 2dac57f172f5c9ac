package combat

import (
	"github.com/l1jgo/gridworld/internal/core/event"
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/world"
)

// Kind selects how an attack rolls its damage.
type Kind int

const (
	Punch  Kind = iota // bare hands
	Strike             // equipped melee weapon
	Shoot              // equipped ranged weapon plus ammo
)

func (k Kind) String() string {
	switch k {
	case Punch:
		return "punch"
	case Strike:
		return "strike"
	case Shoot:
		return "shoot"
	}
	return "attack"
}

// Result describes one resolved attack.
type Result struct {
	Attacker *world.Character
	Victim   *world.Character
	Kind     Kind
	Hit      bool
	Raw      int
	Outcome  Outcome
	Shot     Shot
	Death    *Death // set when the victim died
}

// ResolveTarget 取得攻擊者目前瞄準的對象，並做雙向檢查。
// 關係已失效時會順手釋放，避免殘留的單向參照。
func (r *Resolver) ResolveTarget(attacker *world.Character) (*world.Character, error) {
	if attacker.Target.IsZero() {
		return nil, errors.Validation("You aren't aiming at anyone. Use /aim <name>.")
	}
	victim := r.world.Get(attacker.Target)
	if victim == nil {
		r.world.ReleaseTarget(attacker)
		return nil, errors.NotFound("Your target is gone.")
	}
	if !world.CanAttack(attacker, victim) {
		r.world.ReleaseTarget(attacker)
		return nil, errors.Conflict("Your target has changed. Aim again.")
	}
	if victim.Location != attacker.Location {
		r.world.ReleaseTarget(attacker)
		return nil, errors.Conflictf("%s is no longer here.", victim.Name)
	}
	if !victim.Alive() {
		r.world.ReleaseTarget(attacker)
		return nil, errors.Conflictf("%s is already dead.", victim.Name)
	}
	return victim, nil
}

// Attack 執行一次完整攻擊：驗證目標、擲傷害（遠程先消耗彈藥）、
// 命中判定、套用傷害，生命歸零時處理死亡。
func (r *Resolver) Attack(attacker *world.Character, kind Kind) (*Result, error) {
	if !attacker.Alive() {
		return nil, errors.Conflict("You are dead.")
	}
	victim, err := r.ResolveTarget(attacker)
	if err != nil {
		return nil, err
	}

	res := &Result{Attacker: attacker, Victim: victim, Kind: kind}
	switch kind {
	case Strike:
		res.Shot, err = r.WeaponDamage(attacker, world.SlotMelee)
	case Shoot:
		res.Shot, err = r.WeaponDamage(attacker, world.SlotRanged)
	default:
		res.Shot = Shot{Damage: r.FistDamage()}
	}
	if err != nil {
		return nil, err
	}
	res.Raw = res.Shot.Damage

	// 被攻擊的 NPC 記住攻擊者，之後反擊
	if a := victim.Autonomous(); a != nil {
		a.AddHostile(attacker.ID)
	}

	res.Hit = r.AttackHit(attacker)
	if res.Hit {
		res.Outcome = r.DealDamage(victim, res.Raw, false)
		if res.Outcome.HealthLeft == 0 {
			d := r.Kill(victim, attacker)
			res.Death = &d
		}
	}
	event.Emit(r.bus, event.CharacterAttacked{
		Attacker: attacker.ID,
		Victim:   victim.ID,
		Hit:      res.Hit,
		Damage:   res.Outcome.DamageDealt,
	})
	return res, nil
}
