package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/world"
)

func testItems() *data.ItemTable {
	return data.NewItemTable(
		data.ItemInfo{ID: "apple", Name: "Apple", Subtype: data.SubtypeConsumable, Stackable: true, Durability: 1},
		data.ItemInfo{ID: "sword", Name: "Sword", Subtype: data.SubtypeMelee, Durability: 20, DamageMin: 2, DamageMax: 5},
		data.ItemInfo{ID: "mail", Name: "Chain Mail", Subtype: data.SubtypeBody, Durability: 30, DamageReduction: 2},
	)
}

func TestRecordRoundTripKeepsInstanceState(t *testing.T) {
	items := testItems()
	c := world.NewCharacter("u1", "Alice", world.Location{Map: "m", X: 1, Y: 2}, world.Stats{Health: 7, HealthMax: 30, Money: 12, Accuracy: 3})
	c.FactionID = "f1"
	_, err := world.GiveItem(c, items.Get("apple"), 4)
	require.NoError(t, err)
	_, err = world.GiveItem(c, items.Get("sword"), 1)
	require.NoError(t, err)
	_, err = world.Equip(c, 1)
	require.NoError(t, err)
	c.Equipped[world.SlotMelee].Stats.Durability = 11

	rec := FromCharacter(c)
	require.Len(t, rec.Inventory, 2)
	assert.Equal(t, "melee", rec.Inventory[1].EquippedSlot)

	back := Materialize(rec, items, zap.NewNop())
	assert.Equal(t, "Alice", back.Name)
	assert.Equal(t, c.Location, back.Location)
	assert.Equal(t, c.Stats, back.Stats)
	assert.Equal(t, "f1", back.FactionID)
	require.Len(t, back.Inventory, 2)
	assert.Equal(t, 4, back.Inventory[0].Count())
	assert.Equal(t, c.Inventory[0].Fingerprint, back.Inventory[0].Fingerprint)

	sword := back.Equipped[world.SlotMelee]
	require.NotNil(t, sword)
	assert.Same(t, back.Inventory[1], sword)
	assert.Equal(t, 11, sword.Stats.Durability)
}

func TestSnapshotIsDetached(t *testing.T) {
	c := world.NewCharacter("u1", "Alice", world.Location{Map: "m"}, world.Stats{Health: 5, HealthMax: 5})
	_, err := world.GiveItem(c, testItems().Get("sword"), 1)
	require.NoError(t, err)

	rec := FromCharacter(c)
	c.Inventory[0].Stats.Durability = 1
	c.Stats.Money = 99
	assert.Equal(t, 20, rec.Inventory[0].Modifiers.Durability)
	assert.Zero(t, rec.Stats.Money)
}

func TestMaterializeRepairsBadRecords(t *testing.T) {
	rec := &Record{
		UserID:   "u1",
		Name:     "Alice",
		Location: world.Location{Map: "m"},
		Stats:    world.Stats{Health: 0, HealthMax: 10},
		Inventory: []RecordItem{
			{ItemID: "gone", Fingerprint: "a"},
			{ItemID: "sword", Fingerprint: "dup", EquippedSlot: "armor"},
			{ItemID: "mail", Fingerprint: "dup", EquippedSlot: "armor"},
			{ItemID: "mail", Fingerprint: "b", EquippedSlot: "armor"},
		},
	}
	c := Materialize(rec, testItems(), zap.NewNop())

	require.Len(t, c.Inventory, 3, "unknown template dropped")
	assert.False(t, c.Inventory[0].Equipped(), "sword cannot sit in the armor slot")
	assert.NotEqual(t, c.Inventory[0].Fingerprint, c.Inventory[1].Fingerprint)
	assert.Same(t, c.Inventory[1], c.Equipped[world.SlotArmor])
	assert.False(t, c.Inventory[2].Equipped(), "slot already taken")
	assert.Equal(t, 1, c.Stats.Health)
}

func TestFactionRecord(t *testing.T) {
	f := &world.Faction{ID: "f1", Name: "Wolves", Tag: "WLF", LeaderID: "u1"}
	rec := FactionFromWorld(f)
	back := rec.Faction()
	assert.Equal(t, f.ID, back.ID)
	assert.Equal(t, f.Tag, back.Tag)
	assert.Equal(t, f.LeaderID, back.LeaderID)
}
