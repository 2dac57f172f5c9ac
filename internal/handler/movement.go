package handler

import (
	"fmt"

	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// HandleMove processes /move|/go <n|s|e|w>: one step on one axis.
func HandleMove(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) != 1 {
		return nil, errors.Validation("Which way? Usage: /move <n|s|e|w>")
	}
	dir, ok := world.ParseDirection(args[0])
	if !ok {
		return nil, errors.Validationf("%q is not a direction. Use n, s, e or w.", args[0])
	}
	if actor.Gridlocked() {
		return nil, errors.Validation("You are locked in combat. Use /release or /flee.")
	}
	from, err := d.World.Move(actor, dir)
	if err != nil {
		return nil, err
	}
	out := MoveEvents(actor, from, "walk")
	return append(out, lookAt(d.World, actor.Location)), nil
}

// HandleFlee processes /flee [n|s|e|w]. Fleeing breaks every targeting
// relation the actor takes part in, drops one random item (equipped ones
// included, stacks in a random amount) and runs one step away.
func HandleFlee(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if !actor.Gridlocked() {
		return nil, errors.Validation("You have nothing to flee from.")
	}
	to, dir, err := fleeStep(actor, args, d)
	if err != nil {
		return nil, err
	}

	from := actor.Location
	pursuers := d.World.ReleaseAll(actor)

	var dropped *world.Item
	if n := len(actor.Inventory); n > 0 {
		it := actor.Inventory[world.Pick(d.Combat.Roller(), n)]
		if dropped, err = world.DropInstance(actor, it, 0, true, d.Combat.Roller()); err == nil {
			d.World.Grid().DropItems(from, dropped)
		}
	}

	if _, err := d.World.Move(actor, dir); err != nil {
		// 目的地已先驗證過，這裡失敗代表索引不一致
		return nil, errors.Wrapf(err, "flee %s to %s", actor.Name, to)
	}

	msg := fmt.Sprintf("You flee %s!", dir)
	if dropped != nil {
		msg = fmt.Sprintf("You flee %s, dropping %s!", dir, dropped.Label())
	}
	out := []packet.Envelope{packet.Text(msg)}
	for _, p := range pursuers {
		out = tellf(out, p, "%s escapes from you!", actor.Name)
	}
	if dropped != nil {
		out = roomf(out, from, []*world.Character{actor}, "%s drops %s while fleeing.", actor.Name, dropped.Label())
	}
	out = append(out, MoveEvents(actor, from, "flee")...)
	return append(out, lookAt(d.World, actor.Location)), nil
}

// fleeStep picks the flee destination: the given direction, or a random
// in-bounds neighbour.
func fleeStep(actor *world.Character, args []string, d *Deps) (world.Location, world.Direction, error) {
	if len(args) > 0 {
		dir, ok := world.ParseDirection(args[0])
		if !ok {
			return world.Location{}, 0, errors.Validationf("%q is not a direction. Use n, s, e or w.", args[0])
		}
		to := actor.Location.Step(dir)
		if !d.World.Grid().InBounds(to) {
			return world.Location{}, 0, errors.Validation("You can't flee that way.")
		}
		return to, dir, nil
	}
	var open []world.Direction
	for _, dir := range world.Directions {
		if d.World.Grid().InBounds(actor.Location.Step(dir)) {
			open = append(open, dir)
		}
	}
	if len(open) == 0 {
		return world.Location{}, 0, errors.Validation("There is nowhere to flee!")
	}
	dir := open[world.Pick(d.Combat.Roller(), len(open))]
	return actor.Location.Step(dir), dir, nil
}

// MoveEvents tells the cell left and the cell entered. how is shown to
// onlookers ("walk" or "flee").
func MoveEvents(c *world.Character, from world.Location, how string) []packet.Envelope {
	p := packet.MovePayload{Name: c.Name, From: from.RoomKey(), To: c.Location.RoomKey(), How: how}
	ignore := userIDs(c)
	return []packet.Envelope{
		packet.ToRoom(from.RoomKey(), packet.TypeDepart, p, ignore...),
		packet.ToRoom(c.Location.RoomKey(), packet.TypeArrive, p, ignore...),
	}
}

// HandleLook processes /look|/l.
func HandleLook(actor *world.Character, _ []string, d *Deps) ([]packet.Envelope, error) {
	return []packet.Envelope{lookAt(d.World, actor.Location)}, nil
}
