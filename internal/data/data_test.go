package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadItemTable(t *testing.T) {
	path := writeFile(t, "items.yaml", `
items:
  - id: apple
    name: Apple
    subtype: consumable
    stackable: true
    use_effect: "heal:5"
  - id: sword
    name: Sword
    subtype: melee
    damage_min: 3
    damage_max: 7
    durability: 50
  - id: rock
`)
	items, err := LoadItemTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, items.Count())

	apple := items.Get("apple")
	require.NotNil(t, apple)
	assert.True(t, apple.Stackable)
	assert.Equal(t, 1, apple.Durability, "stack size defaults to one")

	rock := items.Get("rock")
	assert.Equal(t, SubtypeMisc, rock.Subtype)
	assert.Equal(t, "rock", rock.Name)
	assert.Equal(t, []string{"apple", "rock", "sword"}, items.IDs())
	assert.Nil(t, items.Get("missing"))
}

func TestLoadItemTableRejectsDuplicates(t *testing.T) {
	path := writeFile(t, "items.yaml", "items:\n  - id: a\n  - id: a\n")
	_, err := LoadItemTable(path)
	assert.ErrorContains(t, err, "duplicate")
}

func TestMapTableBounds(t *testing.T) {
	path := writeFile(t, "maps.yaml", `
maps:
  - id: town
    width: 3
    height: 2
    spawn_x: 1
    spawn_y: 1
`)
	maps, err := LoadMapTable(path)
	require.NoError(t, err)

	assert.True(t, maps.InBounds("town", 0, 0))
	assert.True(t, maps.InBounds("town", 2, 1))
	assert.False(t, maps.InBounds("town", 3, 0))
	assert.False(t, maps.InBounds("town", 0, -1))
	assert.False(t, maps.InBounds("void", 0, 0))

	x, y, ok := maps.SpawnPoint("town")
	assert.True(t, ok)
	assert.Equal(t, [2]int{1, 1}, [2]int{x, y})
}

func TestMapTableRejectsSpawnOutside(t *testing.T) {
	path := writeFile(t, "maps.yaml", "maps:\n  - id: a\n    width: 1\n    height: 1\n    spawn_x: 4\n")
	_, err := LoadMapTable(path)
	assert.ErrorContains(t, err, "spawn")
}

func TestLoadNpcTable(t *testing.T) {
	path := writeFile(t, "npcs.yaml", `
npcs:
  - id: rat
    name: Rat
    health: 10
    stock:
      - item_id: tooth
        amount: 2
spawns:
  - npc_id: rat
    map_id: town
    x: 1
    y: 1
    count: 2
`)
	npcs, err := LoadNpcTable(path)
	require.NoError(t, err)
	assert.Equal(t, 1, npcs.Count())
	assert.Equal(t, "Rat", npcs.Get("rat").Name)
	require.Len(t, npcs.Spawns(), 1)
	assert.Equal(t, 2, npcs.Spawns()[0].Count)
}

func TestLoadNpcTableUnknownSpawn(t *testing.T) {
	path := writeFile(t, "npcs.yaml", "spawns:\n  - npc_id: ghost\n")
	_, err := LoadNpcTable(path)
	assert.ErrorContains(t, err, "ghost")
}

func TestLoadDropTable(t *testing.T) {
	path := writeFile(t, "drops.yaml", `
drops:
  - npc_id: rat
    items:
      - item_id: tooth
        min: 1
        max: 2
        chance: 50
`)
	drops, err := LoadDropTable(path)
	require.NoError(t, err)
	assert.Len(t, drops.Get("rat"), 1)
	assert.Nil(t, drops.Get("bat"))

	var nilTable *DropTable
	assert.Nil(t, nilTable.Get("rat"))
}
