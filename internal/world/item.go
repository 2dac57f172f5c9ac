package world

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/l1jgo/gridworld/internal/data"
)

// ItemStats is the per-instance snapshot taken from the template at
// creation. For stackable items Durability is the quantity.
type ItemStats struct {
	Price           int    `json:"price"`
	Stackable       bool   `json:"stackable"`
	Durability      int    `json:"durability"`
	DurabilityMax   int    `json:"durability_max"`
	DamageMin       int    `json:"damage_min"`
	DamageMax       int    `json:"damage_max"`
	DamageReduction int    `json:"damage_reduction"`
	DamageBonus     int    `json:"damage_bonus"`
	UseEffect       string `json:"use_effect,omitempty"`
}

// Item is one item instance, in an inventory or on the ground.
type Item struct {
	TemplateID   string
	Name         string
	Subtype      data.Subtype
	Fingerprint  string
	Stats        ItemStats
	EquippedSlot Slot // SlotNone when not equipped
}

// NewFingerprint returns a fresh unique item fingerprint.
func NewFingerprint() string {
	return uuid.NewString()
}

// StatsFromTemplate snapshots a template's stats.
func StatsFromTemplate(info *data.ItemInfo) ItemStats {
	st := ItemStats{
		Price:           info.Price,
		Stackable:       info.Stackable,
		Durability:      info.Durability,
		DurabilityMax:   info.Durability,
		DamageMin:       info.DamageMin,
		DamageMax:       info.DamageMax,
		DamageReduction: info.DamageReduction,
		DamageBonus:     info.DamageBonus,
		UseEffect:       info.UseEffect,
	}
	if info.Stackable {
		st.DurabilityMax = 0 // quantity is unbounded
	}
	return st
}

// NewItem instantiates a template. amount is the stack size for stackables
// and ignored otherwise.
func NewItem(info *data.ItemInfo, amount int) *Item {
	it := &Item{
		TemplateID:  info.ID,
		Name:        info.Name,
		Subtype:     info.Subtype,
		Fingerprint: NewFingerprint(),
		Stats:       StatsFromTemplate(info),
	}
	if info.Stackable {
		it.Stats.Durability = amount
	}
	return it
}

// Count is the number of units the instance represents.
func (it *Item) Count() int {
	if it.Stats.Stackable {
		return it.Stats.Durability
	}
	return 1
}

// Equipped reports whether the item sits in an equip slot.
func (it *Item) Equipped() bool { return it.EquippedSlot != SlotNone }

// Split detaches n units of a stack into a new instance with its own
// fingerprint. The caller guarantees 0 < n <= Durability.
func (it *Item) Split(n int) *Item {
	out := *it
	out.Fingerprint = NewFingerprint()
	out.EquippedSlot = SlotNone
	out.Stats.Durability = n
	it.Stats.Durability -= n
	return &out
}

// Label renders "Apple x5" or "Sword".
func (it *Item) Label() string {
	if it.Stats.Stackable {
		return fmt.Sprintf("%s x%d", it.Name, it.Stats.Durability)
	}
	return it.Name
}
