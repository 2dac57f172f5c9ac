package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// HandleGive processes /give <name> <amount> (coins) and
// /give <name> <item...> [amount] (items). Both parties share a cell.
func HandleGive(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) < 2 {
		return nil, errors.Validation("Usage: /give <name> <amount> or /give <name> <item> [amount]")
	}
	target := d.World.FindHere(actor, args[0])
	if target == nil {
		return nil, errors.NotFoundf("There is no %s here.", args[0])
	}

	phrase, amount, hasAmount := splitAmount(args[1:])
	if !hasAmount && len(args) == 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			phrase, amount, hasAmount = "", n, true
		}
	}
	if phrase == "" || isMoneyWord(phrase) {
		return giveMoney(actor, target, amount)
	}
	return giveItem(actor, target, phrase, amount, hasAmount, d)
}

func giveMoney(actor, target *world.Character, amount int) ([]packet.Envelope, error) {
	if amount <= 0 {
		return nil, errors.Validation("Amount must be positive.")
	}
	if actor.Stats.Money < amount {
		return nil, errors.Validationf("You only have %s.", formatMoney(actor.Stats.Money))
	}
	actor.Stats.Money -= amount
	target.Stats.Money += amount
	actor.Dirty, target.Dirty = true, true

	out := []packet.Envelope{packet.Text(fmt.Sprintf("You give %s to %s.", formatMoney(amount), target.Name))}
	out = tellf(out, target, "%s gives you %s.", actor.Name, formatMoney(amount))
	out = roomf(out, actor.Location, []*world.Character{actor, target}, "%s gives some gold to %s.", actor.Name, target.Name)
	out = append(out, packet.ToSender(packet.TypeStats, statsPayload(actor)))
	return statsTo(out, target), nil
}

func giveItem(actor, target *world.Character, phrase string, amount int, hasAmount bool, d *Deps) ([]packet.Envelope, error) {
	_, it := world.FindItem(actor, phrase)
	if it == nil {
		return nil, errors.NotFoundf("You don't have any %s.", phrase)
	}
	if !hasAmount {
		amount = it.Count()
	}
	handed, err := world.DropInstance(actor, it, amount, false, d.Combat.Roller())
	if err != nil {
		return nil, err
	}
	if _, err := world.ReceiveItem(target, handed); err != nil {
		// 對方背包滿了，物品退回
		if _, back := world.ReceiveItem(actor, handed); back != nil {
			d.World.Grid().DropItems(actor.Location, handed)
		}
		return nil, errors.Validationf("%s can't carry any more.", target.Name)
	}

	out := []packet.Envelope{packet.Text(fmt.Sprintf("You give %s to %s.", handed.Label(), target.Name))}
	out = tellf(out, target, "%s gives you %s.", actor.Name, handed.Label())
	out = roomf(out, actor.Location, []*world.Character{actor, target}, "%s gives %s to %s.", actor.Name, handed.Label(), target.Name)
	return out, nil
}

// HandlePickup processes /pickup|/get <item...> [amount]. "gold" takes the
// coin pile.
func HandlePickup(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Pick up what? Usage: /pickup <item> [amount]")
	}
	grid := d.World.Grid()
	phrase, amount, hasAmount := splitAmount(args)
	if isMoneyWord(phrase) {
		n := grid.TakeMoney(actor.Location)
		if n == 0 {
			return nil, errors.NotFound("There is no gold here.")
		}
		actor.Stats.Money += n
		actor.Dirty = true
		out := []packet.Envelope{packet.Text("You pick up " + formatMoney(n) + ".")}
		out = roomf(out, actor.Location, []*world.Character{actor}, "%s picks up some gold.", actor.Name)
		return append(out, packet.ToSender(packet.TypeStats, statsPayload(actor))), nil
	}
	if hasAmount && amount <= 0 {
		return nil, errors.Validation("Amount must be positive.")
	}

	it, err := grid.TakeItem(actor.Location, phrase, amount)
	if err != nil {
		return nil, err
	}
	if _, err := world.ReceiveItem(actor, it); err != nil {
		grid.DropItems(actor.Location, it)
		return nil, err
	}
	out := []packet.Envelope{packet.Text("You pick up " + it.Label() + ".")}
	out = roomf(out, actor.Location, []*world.Character{actor}, "%s picks up %s.", actor.Name, it.Label())
	return out, nil
}

// HandleDrop processes /drop <item...> [amount] and /drop gold <amount>.
// Without an amount a whole stack is dropped.
func HandleDrop(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Drop what? Usage: /drop <item> [amount]")
	}
	grid := d.World.Grid()
	phrase, amount, hasAmount := splitAmount(args)
	if isMoneyWord(phrase) {
		if !hasAmount {
			amount = actor.Stats.Money
		}
		if amount <= 0 {
			return nil, errors.Validation("Amount must be positive.")
		}
		if actor.Stats.Money < amount {
			return nil, errors.Validationf("You only have %s.", formatMoney(actor.Stats.Money))
		}
		actor.Stats.Money -= amount
		actor.Dirty = true
		grid.DropMoney(actor.Location, amount)
		out := []packet.Envelope{packet.Text("You drop " + formatMoney(amount) + ".")}
		out = roomf(out, actor.Location, []*world.Character{actor}, "%s drops some gold.", actor.Name)
		return append(out, packet.ToSender(packet.TypeStats, statsPayload(actor))), nil
	}

	if !hasAmount {
		if _, it := world.FindItem(actor, phrase); it != nil {
			amount = it.Count()
		}
	}
	dropped, err := world.DropItem(actor, phrase, amount, false, d.Combat.Roller())
	if err != nil {
		return nil, err
	}
	grid.DropItems(actor.Location, dropped)
	out := []packet.Envelope{packet.Text("You drop " + dropped.Label() + ".")}
	out = roomf(out, actor.Location, []*world.Character{actor}, "%s drops %s.", actor.Name, dropped.Label())
	return out, nil
}

// HandleEquip processes /equip <item...>.
func HandleEquip(actor *world.Character, args []string, _ *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Equip what? Usage: /equip <item>")
	}
	phrase := strings.Join(args, " ")
	i, it := world.FindItem(actor, phrase)
	if it == nil {
		return nil, errors.NotFoundf("You don't have any %s.", phrase)
	}
	prev, err := world.Equip(actor, i)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("You equip %s (%s).", it.Name, it.EquippedSlot)
	if prev != nil {
		msg = fmt.Sprintf("You put away %s and equip %s (%s).", prev.Name, it.Name, it.EquippedSlot)
	}
	return []packet.Envelope{packet.Text(msg)}, nil
}

// HandleUnequip processes /unequip <slot|item...>.
func HandleUnequip(actor *world.Character, args []string, _ *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Unequip what? Usage: /unequip <melee|ranged|ammo|armor>")
	}
	phrase := strings.Join(args, " ")
	slot, ok := world.ParseSlot(phrase)
	if !ok {
		_, it := world.FindItem(actor, phrase)
		if it == nil || !it.Equipped() {
			return nil, errors.NotFoundf("You have no %s equipped.", phrase)
		}
		slot = it.EquippedSlot
	}
	it, err := world.Unequip(actor, slot)
	if err != nil {
		return nil, err
	}
	return []packet.Envelope{packet.Text("You put away " + it.Name + ".")}, nil
}

// HandleInventory processes /inventory|/i.
func HandleInventory(actor *world.Character, _ []string, _ *Deps) ([]packet.Envelope, error) {
	return []packet.Envelope{packet.ToSender(packet.TypeInventory, packet.InventoryPayload{
		Items: itemViews(actor.Inventory),
		Stats: statsPayload(actor),
		Money: formatMoney(actor.Stats.Money),
	})}, nil
}

// HandleUse processes /use <item...>.
func HandleUse(actor *world.Character, args []string, _ *Deps) ([]packet.Envelope, error) {
	if len(args) == 0 {
		return nil, errors.Validation("Use what? Usage: /use <item>")
	}
	it, eff, err := world.UseItem(actor, strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	out := []packet.Envelope{packet.Text(fmt.Sprintf("You use %s and recover %d health.", it.Name, eff.Amount))}
	out = roomf(out, actor.Location, []*world.Character{actor}, "%s uses %s.", actor.Name, it.Name)
	return append(out, packet.ToSender(packet.TypeStats, statsPayload(actor))), nil
}
