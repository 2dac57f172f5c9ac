package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/l1jgo/gridworld/internal/data"
)

// fixedRoller always rolls the same face, clamped to the die size.
type fixedRoller struct{ face int }

func (r fixedRoller) Roll(size int) (int, error) {
	return min(max(r.face, 1), size), nil
}

func (r fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = r.Roll(size)
	}
	return out, nil
}

var testItems = data.NewItemTable(
	data.ItemInfo{ID: "apple", Name: "Apple", Subtype: data.SubtypeConsumable, Stackable: true, UseEffect: "heal:5"},
	data.ItemInfo{ID: "sword", Name: "Sword", Subtype: data.SubtypeMelee, DamageMin: 2, DamageMax: 6, Durability: 40},
	data.ItemInfo{ID: "bow", Name: "Bow", Subtype: data.SubtypeRanged, DamageMin: 1, DamageMax: 4, Durability: 30},
	data.ItemInfo{ID: "arrow", Name: "Arrow", Subtype: data.SubtypeAmmo, Stackable: true, DamageBonus: 2},
	data.ItemInfo{ID: "mail", Name: "Chain Mail", Subtype: data.SubtypeBody, DamageReduction: 5, Durability: 10},
	data.ItemInfo{ID: "leather", Name: "Leather Armor", Subtype: data.SubtypeBody, DamageReduction: 2, Durability: 8},
	data.ItemInfo{ID: "rock", Name: "Rock"},
)

var testMaps = data.NewMapTable(
	data.MapInfo{ID: "m", Width: 5, Height: 5, SpawnX: 0, SpawnY: 0},
	data.MapInfo{ID: "town", Width: 3, Height: 3, SpawnX: 1, SpawnY: 1},
)

func item(t *testing.T, id string) *data.ItemInfo {
	t.Helper()
	info := testItems.Get(id)
	require.NotNil(t, info, id)
	return info
}

func newTestState() *State {
	return NewState(testMaps)
}

func spawn(t *testing.T, s *State, user, name string, loc Location) *Character {
	t.Helper()
	c := NewCharacter(user, name, loc, Stats{Health: 20, HealthMax: 20, Money: 7, Accuracy: 3})
	require.NoError(t, s.Upsert(c))
	return c
}
