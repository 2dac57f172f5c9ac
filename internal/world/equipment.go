package world

import (
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/errors"
)

// Slot identifies an equipment slot on a character.
type Slot string

const (
	SlotNone   Slot = ""
	SlotMelee  Slot = "melee"
	SlotRanged Slot = "ranged"
	SlotAmmo   Slot = "ammo"
	SlotArmor  Slot = "armor"
)

// Slots lists every equip slot in display order.
var Slots = [...]Slot{SlotMelee, SlotRanged, SlotAmmo, SlotArmor}

// SlotFor maps an item subtype to the slot it occupies.
func SlotFor(sub data.Subtype) (Slot, bool) {
	switch sub {
	case data.SubtypeMelee:
		return SlotMelee, true
	case data.SubtypeRanged:
		return SlotRanged, true
	case data.SubtypeAmmo:
		return SlotAmmo, true
	case data.SubtypeBody:
		return SlotArmor, true
	}
	return SlotNone, false
}

// ParseSlot accepts a slot name as typed by a player.
func ParseSlot(s string) (Slot, bool) {
	switch Fold(s) {
	case "melee", "weapon":
		return SlotMelee, true
	case "ranged", "bow", "gun":
		return SlotRanged, true
	case "ammo", "ammunition":
		return SlotAmmo, true
	case "armor", "armour", "body":
		return SlotArmor, true
	}
	return SlotNone, false
}

// Equip moves inventory[index] into its slot. A previous occupant stays in
// the inventory with its slot cleared, and is returned.
func Equip(c *Character, index int) (prev *Item, err error) {
	if index < 0 || index >= len(c.Inventory) {
		return nil, errors.NotFound("You don't have that item.")
	}
	it := c.Inventory[index]
	slot, ok := SlotFor(it.Subtype)
	if !ok {
		return nil, errors.Validationf("%s can't be equipped.", it.Name)
	}
	if it.EquippedSlot == slot {
		return nil, errors.Validationf("%s is already equipped.", it.Name)
	}
	prev = c.Equipped[slot]
	if prev != nil {
		prev.EquippedSlot = SlotNone
	}
	it.EquippedSlot = slot
	c.Equipped[slot] = it
	c.Dirty = true
	return prev, nil
}

// Unequip clears slot, leaving the item in the inventory.
func Unequip(c *Character, slot Slot) (*Item, error) {
	it := c.Equipped[slot]
	if it == nil {
		return nil, errors.Validationf("Nothing is equipped in your %s slot.", slot)
	}
	it.EquippedSlot = SlotNone
	delete(c.Equipped, slot)
	c.Dirty = true
	return it, nil
}

// UnequipAll clears every slot.
func UnequipAll(c *Character) {
	for slot, it := range c.Equipped {
		it.EquippedSlot = SlotNone
		delete(c.Equipped, slot)
	}
}
