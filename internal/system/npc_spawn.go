package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/world"
)

// SpawnNPCs places every NPC listed in the spawn table. Entries naming an
// unknown template or a cell outside its map are skipped with a warning.
// NPCs never despawn; death sends them home.
func SpawnNPCs(ws *world.State, npcs *data.NpcTable, items *data.ItemTable, log *zap.Logger) (int, error) {
	count := 0
	for _, sp := range npcs.Spawns() {
		tmpl := npcs.Get(sp.NpcID)
		if tmpl == nil {
			log.Warn("生成表引用未知 NPC", zap.String("npc", sp.NpcID))
			continue
		}
		loc := world.Location{Map: sp.MapID, X: sp.X, Y: sp.Y}
		if !ws.Grid().InBounds(loc) {
			log.Warn("NPC 生成位置超出地圖", zap.String("npc", sp.NpcID), zap.String("cell", loc.RoomKey()))
			continue
		}
		for range max(1, sp.Count) {
			if err := ws.Upsert(world.NewNPC(tmpl, items, loc)); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
