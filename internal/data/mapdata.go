package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapInfo holds metadata for a single map, loaded from maps.yaml.
// Valid cells are 0 <= x < Width, 0 <= y < Height.
type MapInfo struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	SpawnX int    `yaml:"spawn_x"`
	SpawnY int    `yaml:"spawn_y"`
	PvP    bool   `yaml:"pvp"`
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// MapTable provides map bounds and spawn points.
type MapTable struct {
	maps map[string]*MapInfo
}

func NewMapTable(maps ...MapInfo) *MapTable {
	t := &MapTable{maps: make(map[string]*MapInfo, len(maps))}
	for i := range maps {
		m := maps[i]
		t.maps[m.ID] = &m
	}
	return t
}

// Get returns map metadata, or nil if the map is unknown.
func (t *MapTable) Get(id string) *MapInfo {
	return t.maps[id]
}

func (t *MapTable) Count() int {
	return len(t.maps)
}

// InBounds reports whether (x, y) is a cell of map id.
func (t *MapTable) InBounds(id string, x, y int) bool {
	m := t.maps[id]
	if m == nil {
		return false
	}
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// SpawnPoint returns the respawn cell of map id.
func (t *MapTable) SpawnPoint(id string) (x, y int, ok bool) {
	m := t.maps[id]
	if m == nil {
		return 0, 0, false
	}
	return m.SpawnX, m.SpawnY, true
}

// LoadMapTable loads map metadata from YAML.
func LoadMapTable(path string) (*MapTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", path, err)
	}
	var f mapListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}
	for _, m := range f.Maps {
		if m.Width <= 0 || m.Height <= 0 {
			return nil, fmt.Errorf("map %s: non-positive size %dx%d", m.ID, m.Width, m.Height)
		}
		if m.SpawnX < 0 || m.SpawnY < 0 || m.SpawnX >= m.Width || m.SpawnY >= m.Height {
			return nil, fmt.Errorf("map %s: spawn (%d,%d) outside map", m.ID, m.SpawnX, m.SpawnY)
		}
	}
	return NewMapTable(f.Maps...), nil
}
