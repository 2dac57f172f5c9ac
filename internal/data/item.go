package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Subtype decides which equip slot an item can occupy.
type Subtype string

const (
	SubtypeMelee      Subtype = "melee"
	SubtypeRanged     Subtype = "ranged"
	SubtypeAmmo       Subtype = "ammo"
	SubtypeBody       Subtype = "body"
	SubtypeConsumable Subtype = "consumable"
	SubtypeMisc       Subtype = "misc"
)

// ItemInfo is one item template from items.yaml.
type ItemInfo struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Subtype         Subtype `yaml:"subtype"`
	Description     string  `yaml:"description"`
	Price           int     `yaml:"price"`
	Stackable       bool    `yaml:"stackable"`
	Durability      int     `yaml:"durability"` // stack size for stackables
	DamageMin       int     `yaml:"damage_min"`
	DamageMax       int     `yaml:"damage_max"`
	DamageReduction int     `yaml:"damage_reduction"`
	DamageBonus     int     `yaml:"damage_bonus"`
	UseEffect       string  `yaml:"use_effect"` // e.g. "heal:10"
}

type itemListFile struct {
	Items []ItemInfo `yaml:"items"`
}

// ItemTable holds item templates indexed by id.
type ItemTable struct {
	items map[string]*ItemInfo
}

// NewItemTable builds a table from already-parsed templates.
func NewItemTable(items ...ItemInfo) *ItemTable {
	t := &ItemTable{items: make(map[string]*ItemInfo, len(items))}
	for i := range items {
		info := items[i]
		if info.Subtype == "" {
			info.Subtype = SubtypeMisc
		}
		if info.Durability <= 0 {
			info.Durability = 1
		}
		if info.Name == "" {
			info.Name = info.ID
		}
		t.items[info.ID] = &info
	}
	return t
}

// Get returns the template for id, or nil.
func (t *ItemTable) Get(id string) *ItemInfo {
	return t.items[id]
}

// Count returns the number of templates.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// IDs returns all template ids sorted.
func (t *ItemTable) IDs() []string {
	ids := make([]string, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item list %s: %w", path, err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item list: %w", err)
	}
	seen := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("item list: entry without id")
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("item list: duplicate id %q", it.ID)
		}
		seen[it.ID] = true
		if it.DamageMax < it.DamageMin {
			return nil, fmt.Errorf("item %s: damage_max < damage_min", it.ID)
		}
	}
	return NewItemTable(f.Items...), nil
}
