package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DropItem represents a single possible drop from an NPC.
type DropItem struct {
	ItemID string `yaml:"item_id"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
	Chance int    `yaml:"chance"` // percent, 1..100
}

type npcDropEntry struct {
	NpcID string     `yaml:"npc_id"`
	Items []DropItem `yaml:"items"`
}

type dropListFile struct {
	Drops []npcDropEntry `yaml:"drops"`
}

// DropTable holds NPC drop data indexed by NPC template id.
type DropTable struct {
	drops map[string][]DropItem
}

func NewDropTable(drops map[string][]DropItem) *DropTable {
	if drops == nil {
		drops = map[string][]DropItem{}
	}
	return &DropTable{drops: drops}
}

// Get returns the drop list for an NPC, or nil if none defined.
func (t *DropTable) Get(npcID string) []DropItem {
	if t == nil {
		return nil
	}
	return t.drops[npcID]
}

// Count returns the number of NPCs with drop entries.
func (t *DropTable) Count() int {
	return len(t.drops)
}

// LoadDropTable loads NPC drop data from a YAML file.
func LoadDropTable(path string) (*DropTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drop list: %w", err)
	}
	var f dropListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse drop list: %w", err)
	}
	t := &DropTable{drops: make(map[string][]DropItem, len(f.Drops))}
	for _, entry := range f.Drops {
		for _, d := range entry.Items {
			if d.Min <= 0 || d.Max < d.Min {
				return nil, fmt.Errorf("drop %s/%s: bad range [%d,%d]", entry.NpcID, d.ItemID, d.Min, d.Max)
			}
		}
		t.drops[entry.NpcID] = entry.Items
	}
	return t, nil
}
