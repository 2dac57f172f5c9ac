package persist

import (
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/world"
)

// RecordItem is one persisted inventory entry. Modifiers carry the
// instance stats, which may differ from the template (wear, stack size).
type RecordItem struct {
	ItemID       string          `json:"item_id"`
	Fingerprint  string          `json:"fingerprint"`
	Modifiers    world.ItemStats `json:"modifiers"`
	EquippedSlot string          `json:"equipped_slot,omitempty"`
}

// Record is the stored form of a player character.
type Record struct {
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Location  world.Location `json:"location"`
	Stats     world.Stats    `json:"stats"`
	Inventory []RecordItem   `json:"inventory"`
	FactionID string         `json:"faction_id,omitempty"`
}

// FactionRecord is the stored form of a faction. Membership lives on the
// character records.
type FactionRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	LeaderID string `json:"leader_id"`
}

// FromCharacter snapshots c. The result shares nothing with c and may be
// handed to another goroutine.
func FromCharacter(c *world.Character) *Record {
	rec := &Record{
		UserID:    c.UserID,
		Name:      c.Name,
		Location:  c.Location,
		Stats:     c.Stats,
		Inventory: make([]RecordItem, 0, len(c.Inventory)),
		FactionID: c.FactionID,
	}
	for _, it := range c.Inventory {
		rec.Inventory = append(rec.Inventory, RecordItem{
			ItemID:       it.TemplateID,
			Fingerprint:  it.Fingerprint,
			Modifiers:    it.Stats,
			EquippedSlot: string(it.EquippedSlot),
		})
	}
	return rec
}

// Materialize rebuilds a character from rec. Entries whose template is no
// longer in items are dropped with a warning; an equip slot that no longer
// fits the item leaves it unequipped.
func Materialize(rec *Record, items *data.ItemTable, log *zap.Logger) *world.Character {
	c := world.NewCharacter(rec.UserID, rec.Name, rec.Location, rec.Stats)
	c.FactionID = rec.FactionID

	seen := make(map[string]bool, len(rec.Inventory))
	for _, ri := range rec.Inventory {
		info := items.Get(ri.ItemID)
		if info == nil {
			log.Warn("unknown item template in record, skipped",
				zap.String("user", rec.UserID), zap.String("item", ri.ItemID))
			continue
		}
		if len(c.Inventory) >= world.MaxInventorySize {
			log.Warn("inventory overflow in record, truncated", zap.String("user", rec.UserID))
			break
		}
		it := &world.Item{
			TemplateID:  info.ID,
			Name:        info.Name,
			Subtype:     info.Subtype,
			Fingerprint: ri.Fingerprint,
			Stats:       ri.Modifiers,
		}
		if it.Fingerprint == "" || seen[it.Fingerprint] {
			it.Fingerprint = world.NewFingerprint()
		}
		seen[it.Fingerprint] = true
		c.Inventory = append(c.Inventory, it)

		if ri.EquippedSlot == "" {
			continue
		}
		slot, ok := world.ParseSlot(ri.EquippedSlot)
		want, fits := world.SlotFor(info.Subtype)
		if !ok || !fits || slot != want || c.Equipped[slot] != nil {
			continue
		}
		it.EquippedSlot = slot
		c.Equipped[slot] = it
	}

	maxHP := max(1, c.Stats.HealthMax)
	c.Stats.HealthMax = maxHP
	c.Stats.Health = min(maxHP, max(1, c.Stats.Health))
	return c
}

// FactionFromWorld snapshots f.
func FactionFromWorld(f *world.Faction) FactionRecord {
	return FactionRecord{ID: f.ID, Name: f.Name, Tag: f.Tag, LeaderID: f.LeaderID}
}

// Faction builds the in-memory faction for a stored record.
func (r FactionRecord) Faction() *world.Faction {
	return &world.Faction{ID: r.ID, Name: r.Name, Tag: r.Tag, LeaderID: r.LeaderID}
}
