package world

import (
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/errors"
)

const MaxInventorySize = 64

// GiveItem adds amount units of a template. Stackables merge into the
// character's single stack for that template; anything else yields amount
// separate instances, each with its own fingerprint.
func GiveItem(c *Character, info *data.ItemInfo, amount int) ([]*Item, error) {
	if amount <= 0 {
		return nil, errors.Validation("Amount must be positive.")
	}
	c.Dirty = true
	if info.Stackable {
		if stack := findStack(c.Inventory, info.ID); stack != nil {
			stack.Stats.Durability += amount
			return []*Item{stack}, nil
		}
		if len(c.Inventory) >= MaxInventorySize {
			return nil, errors.Validation("Your inventory is full.")
		}
		it := NewItem(info, amount)
		c.Inventory = append(c.Inventory, it)
		return []*Item{it}, nil
	}
	if len(c.Inventory)+amount > MaxInventorySize {
		return nil, errors.Validation("Your inventory is full.")
	}
	out := make([]*Item, 0, amount)
	for range amount {
		it := NewItem(info, 0)
		c.Inventory = append(c.Inventory, it)
		out = append(out, it)
	}
	return out, nil
}

// ReceiveItem puts an existing instance (picked up, handed over) into the
// inventory, keeping its stats. Stacks merge; the returned item is the one
// now held.
func ReceiveItem(c *Character, it *Item) (*Item, error) {
	c.Dirty = true
	it.EquippedSlot = SlotNone
	if it.Stats.Stackable {
		if stack := findStack(c.Inventory, it.TemplateID); stack != nil {
			stack.Stats.Durability += it.Stats.Durability
			return stack, nil
		}
	}
	if len(c.Inventory) >= MaxInventorySize {
		return nil, errors.Validation("Your inventory is full.")
	}
	c.Inventory = append(c.Inventory, it)
	return it, nil
}

// FindItem returns the first inventory entry whose name (or template id)
// starts with fragment, ignoring case.
func FindItem(c *Character, fragment string) (int, *Item) {
	for i, it := range c.Inventory {
		if HasFoldPrefix(it.Name, fragment) || HasFoldPrefix(it.TemplateID, fragment) {
			return i, it
		}
	}
	return -1, nil
}

// RemoveItem deletes an instance from the inventory, clearing its slot.
func RemoveItem(c *Character, it *Item) bool {
	i := slices.Index(c.Inventory, it)
	if i < 0 {
		return false
	}
	if it.EquippedSlot != SlotNone && c.Equipped[it.EquippedSlot] == it {
		delete(c.Equipped, it.EquippedSlot)
	}
	it.EquippedSlot = SlotNone
	c.Inventory = slices.Delete(c.Inventory, i, i+1)
	c.Dirty = true
	return true
}

// DropItem takes an item out of the inventory by name prefix.
//
// Non-stackables leave whole. Stackables need durability >= amount and
// leave as a new instance holding amount units; an emptied stack is
// removed. Equipped items only leave while fleeing, unequipped first.
// Fleeing also replaces amount with a random 1..durability.
func DropItem(c *Character, fragment string, amount int, fleeing bool, r dice.Roller) (*Item, error) {
	_, it := FindItem(c, fragment)
	if it == nil {
		return nil, errors.NotFoundf("You don't have any %s.", fragment)
	}
	return DropInstance(c, it, amount, fleeing, r)
}

// DropInstance is DropItem for an instance already picked out of the
// inventory.
func DropInstance(c *Character, it *Item, amount int, fleeing bool, r dice.Roller) (*Item, error) {
	if it.Equipped() {
		if !fleeing {
			return nil, errors.Validationf("You must unequip %s first.", it.Name)
		}
		_, _ = Unequip(c, it.EquippedSlot)
	}
	if !it.Stats.Stackable {
		RemoveItem(c, it)
		return it, nil
	}
	if fleeing {
		amount = RollRange(r, 1, it.Stats.Durability)
	}
	if amount <= 0 {
		return nil, errors.Validation("Amount must be positive.")
	}
	if it.Stats.Durability < amount {
		return nil, errors.Validationf("You only have %d %s.", it.Stats.Durability, it.Name)
	}
	out := it.Split(amount)
	if it.Stats.Durability == 0 {
		RemoveItem(c, it)
	}
	c.Dirty = true
	return out, nil
}

// ConsumeOne uses up one unit: stacks shrink, single items vanish.
// Returns true when the instance is gone.
func ConsumeOne(c *Character, it *Item) bool {
	c.Dirty = true
	if it.Stats.Stackable && it.Stats.Durability > 1 {
		it.Stats.Durability--
		return false
	}
	RemoveItem(c, it)
	return true
}

// UseEffect is a parsed "kind:amount" use effect.
type UseEffect struct {
	Kind   string
	Amount int
}

// ParseUseEffect parses strings like "heal:10".
func ParseUseEffect(s string) (UseEffect, bool) {
	kind, n, ok := strings.Cut(s, ":")
	if !ok || kind == "" {
		return UseEffect{}, false
	}
	amount, err := strconv.Atoi(n)
	if err != nil || amount <= 0 {
		return UseEffect{}, false
	}
	return UseEffect{Kind: kind, Amount: amount}, true
}

// UseItem applies the use effect of the first matching item and consumes
// one unit. Returns the item used and the effect applied.
func UseItem(c *Character, fragment string) (*Item, UseEffect, error) {
	_, it := FindItem(c, fragment)
	if it == nil {
		return nil, UseEffect{}, errors.NotFoundf("You don't have any %s.", fragment)
	}
	eff, ok := ParseUseEffect(it.Stats.UseEffect)
	if !ok {
		return nil, UseEffect{}, errors.Validationf("You can't use %s.", it.Name)
	}
	switch eff.Kind {
	case "heal":
		if c.Stats.Health >= c.Stats.HealthMax {
			return nil, UseEffect{}, errors.Validation("You are already at full health.")
		}
		eff.Amount = c.Heal(eff.Amount)
	default:
		return nil, UseEffect{}, errors.Validationf("You can't use %s.", it.Name)
	}
	ConsumeOne(c, it)
	return it, eff, nil
}

// StripForLoot empties the inventory and purse, unequipping everything.
// Used on death.
func StripForLoot(c *Character) ([]*Item, int) {
	UnequipAll(c)
	items := c.Inventory
	money := c.Stats.Money
	c.Inventory = make([]*Item, 0, 16)
	c.Stats.Money = 0
	c.Dirty = true
	return items, money
}
