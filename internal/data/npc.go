package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcStock is one item an NPC carries and is resupplied with.
type NpcStock struct {
	ItemID string `yaml:"item_id"`
	Amount int    `yaml:"amount"`
	Equip  bool   `yaml:"equip"`
}

// NpcTemplate holds static data for an NPC type loaded from YAML.
type NpcTemplate struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Health     int        `yaml:"health"`
	Accuracy   int        `yaml:"accuracy"`
	Money      int        `yaml:"money"`
	Exp        int        `yaml:"exp"`
	Aggressive bool       `yaml:"aggressive"` // attacks players on sight
	Wanders    bool       `yaml:"wanders"`
	Stock      []NpcStock `yaml:"stock"`
}

// SpawnEntry places NPCs of one template on a cell.
type SpawnEntry struct {
	NpcID string `yaml:"npc_id"`
	MapID string `yaml:"map_id"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Count int    `yaml:"count"`
}

type npcListFile struct {
	Npcs   []NpcTemplate `yaml:"npcs"`
	Spawns []SpawnEntry  `yaml:"spawns"`
}

// NpcTable holds all NPC templates indexed by id, plus the spawn list.
type NpcTable struct {
	templates map[string]*NpcTemplate
	spawns    []SpawnEntry
}

func NewNpcTable(templates []NpcTemplate, spawns []SpawnEntry) *NpcTable {
	t := &NpcTable{templates: make(map[string]*NpcTemplate, len(templates)), spawns: spawns}
	for i := range templates {
		npc := templates[i]
		t.templates[npc.ID] = &npc
	}
	return t
}

// LoadNpcTable loads NPC templates and spawns from a YAML file.
// Spawns referencing an unknown template are rejected.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc list: %w", err)
	}
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc list: %w", err)
	}
	t := NewNpcTable(f.Npcs, f.Spawns)
	for _, sp := range f.Spawns {
		if t.templates[sp.NpcID] == nil {
			return nil, fmt.Errorf("spawn references unknown npc %q", sp.NpcID)
		}
	}
	return t, nil
}

// Get returns an NPC template by id, or nil if not found.
func (t *NpcTable) Get(id string) *NpcTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *NpcTable) Count() int {
	return len(t.templates)
}

// Spawns returns the spawn list in file order.
func (t *NpcTable) Spawns() []SpawnEntry {
	return t.spawns
}
