package combat

import (
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/world"
)

// Outcome is the result of applying damage to a character.
type Outcome struct {
	DamageBlocked  int  `json:"damage_blocked"`
	DamageDealt    int  `json:"damage_dealt"`
	HealthLeft     int  `json:"health_left"`
	DurabilityLeft int  `json:"durability_left"`
	ArmorRuined    bool `json:"armor_ruined"`
}

// DealDamage 對目標套用傷害。
//
// 護甲耐久扣除的是原始傷害而不是被格擋的量，護甲因此磨損得比它擋下的
// 傷害快。這是既有行為，保留不改。
func (r *Resolver) DealDamage(target *world.Character, raw int, ignoreArmor bool) Outcome {
	raw = max(0, raw)
	armor, durability := 0, 0
	piece := target.Equipped[world.SlotArmor]
	if piece != nil && !ignoreArmor {
		armor = piece.Stats.DamageReduction
		durability = piece.Stats.Durability
	}

	out := Outcome{}
	out.DamageBlocked = min(raw, armor, durability)
	// 超出剩餘生命的部分不計入
	out.DamageDealt = min(max(0, raw-out.DamageBlocked), max(0, target.Stats.Health))
	out.HealthLeft = max(0, target.Stats.Health-out.DamageDealt)
	out.DurabilityLeft = max(0, durability-raw)

	target.Stats.Health = out.HealthLeft
	target.Dirty = true
	if piece != nil && !ignoreArmor {
		piece.Stats.Durability = out.DurabilityLeft
		if out.DurabilityLeft == 0 {
			world.RemoveItem(target, piece)
			out.ArmorRuined = true
		}
	}
	return out
}

// FistDamage 空手傷害。
func (r *Resolver) FistDamage() int {
	return world.RollRange(r.roller, r.fistMin, r.fistMax)
}

// Shot is what firing a ranged weapon consumed.
type Shot struct {
	Damage   int
	AmmoName string
	AmmoLeft int
}

// WeaponDamage 以裝備中的武器擲傷害。遠程武器另加彈藥加成並消耗 1 發；
// 彈藥歸零即銷毀，沒有彈藥時攻擊失敗。
func (r *Resolver) WeaponDamage(c *world.Character, slot world.Slot) (Shot, error) {
	weapon := c.Equipped[slot]
	if weapon == nil {
		return Shot{}, errors.Validationf("You have no %s weapon equipped.", slot)
	}
	dmg := world.RollRange(r.roller, weapon.Stats.DamageMin, weapon.Stats.DamageMax)
	if slot != world.SlotRanged {
		return Shot{Damage: dmg}, nil
	}

	ammo := c.Equipped[world.SlotAmmo]
	if ammo == nil || ammo.Stats.Durability <= 0 {
		return Shot{}, errors.NotFound("no ammunition")
	}
	shot := Shot{Damage: dmg + ammo.Stats.DamageBonus, AmmoName: ammo.Name}
	ammo.Stats.Durability--
	if ammo.Stats.Durability <= 0 {
		world.RemoveItem(c, ammo)
	}
	shot.AmmoLeft = max(0, ammo.Stats.Durability)
	c.Dirty = true
	return shot, nil
}
