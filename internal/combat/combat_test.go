package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/gridworld/internal/core/event"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/world"
)

// seqRoller returns faces in order, repeating the last one.
type seqRoller struct {
	faces []int
	i     int
}

func (r *seqRoller) Roll(size int) (int, error) {
	f := r.faces[min(r.i, len(r.faces)-1)]
	r.i++
	return min(max(f, 1), size), nil
}

func (r *seqRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = r.Roll(size)
	}
	return out, nil
}

// fixedFormulas makes every roll with face <= hit a hit.
type fixedFormulas struct{ hit, exp int }

func (f fixedFormulas) HitChance(int) int { return f.hit }
func (f fixedFormulas) KillExp(int) int   { return f.exp }

var items = data.NewItemTable(
	data.ItemInfo{ID: "apple", Name: "Apple", Subtype: data.SubtypeConsumable, Stackable: true},
	data.ItemInfo{ID: "sword", Name: "Sword", Subtype: data.SubtypeMelee, DamageMin: 2, DamageMax: 6, Durability: 40},
	data.ItemInfo{ID: "bow", Name: "Bow", Subtype: data.SubtypeRanged, DamageMin: 3, DamageMax: 3, Durability: 30},
	data.ItemInfo{ID: "arrow", Name: "Arrow", Subtype: data.SubtypeAmmo, Stackable: true, DamageBonus: 2},
	data.ItemInfo{ID: "mail", Name: "Chain Mail", Subtype: data.SubtypeBody, DamageReduction: 5, Durability: 10},
	data.ItemInfo{ID: "tooth", Name: "Rat Tooth", Stackable: true},
)

var maps = data.NewMapTable(
	data.MapInfo{ID: "m", Width: 5, Height: 5, SpawnX: 0, SpawnY: 0},
)

type fixture struct {
	ws     *world.State
	r      *Resolver
	roller *seqRoller
	bus    *event.Bus
	a, b   *world.Character
}

func newFixture(t *testing.T, faces ...int) *fixture {
	t.Helper()
	if len(faces) == 0 {
		faces = []int{1}
	}
	f := &fixture{ws: world.NewState(maps), roller: &seqRoller{faces: faces}, bus: event.NewBus()}
	f.r = NewResolver(f.ws, Config{
		Roller:   f.roller,
		Formulas: fixedFormulas{hit: 50, exp: 7},
		Items:    items,
		Drops:    data.NewDropTable(map[string][]data.DropItem{"rat": {{ItemID: "tooth", Min: 2, Max: 2, Chance: 100}}}),
		Bus:      f.bus,
		FistMin:  1,
		FistMax:  3,
	})
	f.a = world.NewCharacter("u1", "Alice", world.Location{Map: "m", X: 2, Y: 2}, world.Stats{Health: 30, HealthMax: 30, Money: 4})
	f.b = world.NewCharacter("u2", "Bob", world.Location{Map: "m", X: 2, Y: 2}, world.Stats{Health: 20, HealthMax: 20, Money: 9})
	require.NoError(t, f.ws.Upsert(f.a))
	require.NoError(t, f.ws.Upsert(f.b))
	return f
}

func give(t *testing.T, c *world.Character, id string, n int, equip bool) *world.Item {
	t.Helper()
	got, err := world.GiveItem(c, items.Get(id), n)
	require.NoError(t, err)
	if equip {
		for i, it := range c.Inventory {
			if it == got[0] {
				_, err := world.Equip(c, i)
				require.NoError(t, err)
			}
		}
	}
	return got[0]
}

func TestDealDamageArmorScenario(t *testing.T) {
	f := newFixture(t)
	give(t, f.b, "mail", 1, true)

	out := f.r.DealDamage(f.b, 8, false)
	assert.Equal(t, Outcome{DamageBlocked: 5, DamageDealt: 3, HealthLeft: 17, DurabilityLeft: 2}, out)
	assert.Equal(t, 17, f.b.Stats.Health)
	assert.Equal(t, 2, f.b.Equipped[world.SlotArmor].Stats.Durability)
}

func TestDealDamageIgnoreArmor(t *testing.T) {
	for _, d := range []int{0, 1, 7, 20, 50} {
		f := newFixture(t)
		give(t, f.b, "mail", 1, true)
		health := f.b.Stats.Health

		out := f.r.DealDamage(f.b, d, true)
		assert.Zero(t, out.DamageBlocked, "d=%d", d)
		assert.Equal(t, min(d, health), out.DamageDealt, "d=%d", d)
		assert.Equal(t, 10, f.b.Equipped[world.SlotArmor].Stats.Durability, "ignored armor does not wear")
	}
}

func TestDealDamageRuinsArmor(t *testing.T) {
	f := newFixture(t)
	mail := give(t, f.b, "mail", 1, true)

	out := f.r.DealDamage(f.b, 12, false)
	assert.Equal(t, 5, out.DamageBlocked)
	assert.Equal(t, 7, out.DamageDealt)
	assert.Zero(t, out.DurabilityLeft)
	assert.True(t, out.ArmorRuined)
	assert.Nil(t, f.b.Equipped[world.SlotArmor])
	assert.NotContains(t, f.b.Inventory, mail)
}

func TestDealDamageWithoutArmor(t *testing.T) {
	f := newFixture(t)
	out := f.r.DealDamage(f.b, 4, false)
	assert.Equal(t, Outcome{DamageDealt: 4, HealthLeft: 16}, out)
}

func TestWeaponDamageRange(t *testing.T) {
	f := newFixture(t, 5)
	give(t, f.a, "sword", 1, true)

	shot, err := f.r.WeaponDamage(f.a, world.SlotMelee)
	require.NoError(t, err)
	assert.Equal(t, 6, shot.Damage, "face 5 of d5 over [2,6]")

	_, err = f.r.WeaponDamage(f.a, world.SlotRanged)
	assert.True(t, errors.IsValidation(err))
}

func TestShootConsumesAmmo(t *testing.T) {
	f := newFixture(t)
	give(t, f.a, "bow", 1, true)

	_, err := f.r.WeaponDamage(f.a, world.SlotRanged)
	require.Error(t, err)
	assert.Equal(t, "no ammunition", errors.Message(err))

	give(t, f.a, "arrow", 2, true)
	shot, err := f.r.WeaponDamage(f.a, world.SlotRanged)
	require.NoError(t, err)
	assert.Equal(t, 5, shot.Damage, "3 plus ammo bonus 2")
	assert.Equal(t, 1, shot.AmmoLeft)

	_, err = f.r.WeaponDamage(f.a, world.SlotRanged)
	require.NoError(t, err)
	assert.Nil(t, f.a.Equipped[world.SlotAmmo], "empty ammo is destroyed")
	assert.Len(t, f.a.Inventory, 1)

	_, err = f.r.WeaponDamage(f.a, world.SlotRanged)
	assert.Equal(t, "no ammunition", errors.Message(err))
}

func TestAttackRequiresMutualTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.r.Attack(f.a, Punch)
	assert.True(t, errors.IsValidation(err))

	f.ws.SetTarget(f.a, f.b)
	delete(f.b.TargetedBy, f.a.ID)
	_, err = f.r.Attack(f.a, Punch)
	assert.True(t, errors.IsConflict(err))
	assert.True(t, f.a.Target.IsZero(), "broken relation is released")
}

func TestAttackTargetLeftCell(t *testing.T) {
	f := newFixture(t)
	f.ws.SetTarget(f.a, f.b)
	f.ws.ReleaseAll(f.b) // b fled
	f.ws.SetTarget(f.a, f.b)
	_, err := f.ws.Move(f.b, world.North)
	require.NoError(t, err)

	_, err = f.r.Attack(f.a, Punch)
	assert.True(t, errors.IsConflict(err))
}

func TestAttackHitAndMiss(t *testing.T) {
	// fist roll 2 (face 2 of d3) then d100 face 40 <= 50 hits
	f := newFixture(t, 2, 40)
	f.ws.SetTarget(f.a, f.b)

	res, err := f.r.Attack(f.a, Punch)
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 2, res.Outcome.DamageDealt)
	assert.Equal(t, 18, f.b.Stats.Health)
	assert.Nil(t, res.Death)

	// fist 1, d100 face 90 misses
	f.roller.faces, f.roller.i = []int{1, 90}, 0
	res, err = f.r.Attack(f.a, Punch)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 18, f.b.Stats.Health)

	f.bus.Flush()
}

func TestAttackKills(t *testing.T) {
	f := newFixture(t, 3, 1)
	f.b.Stats.Health = 2
	give(t, f.b, "sword", 2, true)
	give(t, f.b, "apple", 3, false)
	f.ws.SetTarget(f.a, f.b)
	f.ws.SetTarget(f.b, f.a)

	var died []event.CharacterDied
	event.Subscribe(f.bus, func(ev event.CharacterDied) { died = append(died, ev) })

	res, err := f.r.Attack(f.a, Punch)
	require.NoError(t, err)
	require.NotNil(t, res.Death)
	assert.Equal(t, 7, f.a.Stats.Exp)

	f.bus.Flush()
	require.Len(t, died, 1)
	assert.Equal(t, f.b.ID, died[0].Victim)
	assert.Equal(t, f.a.ID, died[0].Killer)
	assert.Equal(t, 3, died[0].LootLen)
}

func TestKillResetsAndDropsLoot(t *testing.T) {
	f := newFixture(t)
	give(t, f.b, "sword", 1, true)
	give(t, f.b, "apple", 3, false)
	give(t, f.b, "mail", 1, true)
	before := len(f.b.Inventory)
	f.ws.SetTarget(f.a, f.b)
	f.ws.SetTarget(f.b, f.a)
	f.b.Stats.Health = 0
	deathCell := f.b.Location

	d := f.r.Kill(f.b, f.a)

	assert.Empty(t, f.b.Inventory)
	assert.Empty(t, f.b.Equipped)
	assert.Zero(t, f.b.Stats.Money)
	assert.Equal(t, f.b.Stats.HealthMax, f.b.Stats.Health)
	assert.Len(t, d.Loot, before)
	assert.Equal(t, 9, d.Money)
	assert.Equal(t, deathCell, d.Previous)
	assert.Equal(t, world.Location{Map: "m"}, f.b.Location)
	assert.Equal(t, f.b.Location, d.Respawn)

	assert.False(t, f.a.Gridlocked())
	assert.False(t, f.b.Gridlocked())

	ground := f.ws.ListAt(deathCell)
	assert.Len(t, ground.Items, before)
	assert.Equal(t, 9, ground.Money)
	assert.Equal(t, []*world.Character{f.a}, ground.Characters)
}

func TestKillNpcRollsDropsAndGoesHome(t *testing.T) {
	f := newFixture(t)
	home := world.Location{Map: "m", X: 4, Y: 4}
	rat := world.NewNPC(&data.NpcTemplate{ID: "rat", Name: "Rat", Health: 5}, items, home)
	require.NoError(t, f.ws.Upsert(rat))
	_, err := f.ws.Relocate(rat, f.a.Location)
	require.NoError(t, err)
	rat.Autonomous().AddHostile(f.a.ID)

	d := f.r.Kill(rat, f.a)
	require.Len(t, d.Drops, 1)
	assert.Equal(t, 2, d.Drops[0].Stats.Durability)
	assert.Equal(t, home, rat.Location)
	assert.Empty(t, rat.Autonomous().Hostiles)
	assert.Len(t, f.ws.ListAt(f.a.Location).Items, 1)
}

func TestDefaultFormulasClamp(t *testing.T) {
	var df DefaultFormulas
	assert.Equal(t, 5, df.HitChance(-100))
	assert.Equal(t, 95, df.HitChance(100))
	assert.Equal(t, 60, df.HitChance(2))
	assert.Equal(t, 1, df.KillExp(1))
	assert.Equal(t, 10, df.KillExp(20))
}
